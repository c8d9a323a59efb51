// Package logger provides leveled logging on top of the standard logger.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a level name to a Level. Unknown names yield InfoLevel and false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel, true
	case "info", "":
		return InfoLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	}
	return InfoLevel, false
}

type leveled struct {
	level  Level
	logger *log.Logger
}

var std = &leveled{level: InfoLevel, logger: log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)}

// Init sets the minimum level of the default logger.
func Init(level string) {
	l, _ := ParseLevel(level)
	std = &leveled{level: l, logger: log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)}
}

func output(l Level, prefix, format string, args ...interface{}) {
	if std.level > l {
		return
	}
	_ = std.logger.Output(3, fmt.Sprintf(prefix+format, args...))
}

func Debug(format string, args ...interface{}) { output(DebugLevel, "[DEBUG] ", format, args...) }
func Info(format string, args ...interface{})  { output(InfoLevel, "[INFO] ", format, args...) }
func Warn(format string, args ...interface{})  { output(WarnLevel, "[WARN] ", format, args...) }
func Error(format string, args ...interface{}) { output(ErrorLevel, "[ERROR] ", format, args...) }

// Fatal logs regardless of level and exits.
func Fatal(format string, args ...interface{}) {
	_ = std.logger.Output(2, fmt.Sprintf("[FATAL] "+format, args...))
	os.Exit(1)
}
