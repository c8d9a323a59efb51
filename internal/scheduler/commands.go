package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"BistSentinel/internal/model"
	"BistSentinel/internal/notifier"
	"BistSentinel/internal/scanner"
	"BistSentinel/internal/strategy"
	"BistSentinel/internal/symbols"
)

const (
	defaultInterval = "60m"
	defaultPeriod   = "60d"
	presetLimit     = 10
)

var presetTitles = map[string]string{
	"kisa": "Kısa Vade",
	"orta": "Orta Vade",
	"uzun": "Uzun Vade",
}

// HandleCommand processes a chat command and returns the reply. progress may
// be called with an interim note before a long-running command completes.
func (s *Scheduler) HandleCommand(ctx context.Context, text string, progress func(string)) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	switch cmd {
	case "/start":
		return "Selam! Hisse analizi için komut ver.\n\n" + notifier.HelpText
	case "/help":
		return notifier.HelpText
	case "/analiz":
		if len(args) == 0 {
			return notifier.HelpText
		}
		return s.analyze(ctx, args, progress, false)
	case "/score":
		if len(args) == 0 {
			return "Kullanım: /score TICKER [interval] [period]"
		}
		return s.analyze(ctx, args, progress, true)
	case "/top10":
		interval, period := argOr(args, 0, defaultInterval), argOr(args, 1, defaultPeriod)
		progress(fmt.Sprintf("⏳ Taramaya başlandı: %d sembol | %s/%s", len(s.Symbols), interval, period))
		return s.topReport(ctx, cmd, interval, period)
	case "/top10kisa", "/top10orta", "/top10uzun":
		key := strings.TrimPrefix(cmd, "/top10")
		return s.presetReport(ctx, key, progress)
	default:
		return "Bilinmeyen komut.\n\n" + notifier.HelpText
	}
}

func (s *Scheduler) analyze(ctx context.Context, args []string, progress func(string), compact bool) string {
	raw := strings.ToUpper(args[0])
	interval, period := argOr(args, 1, defaultInterval), argOr(args, 2, defaultPeriod)
	ticker := symbols.Normalize(raw)

	if compact {
		progress(fmt.Sprintf("⏳ Skor hesaplanıyor: %s → %s | %s/%s", raw, ticker, interval, period))
	} else {
		progress(fmt.Sprintf("⏳ Analiz: %s → %s | %s/%s", raw, ticker, interval, period))
	}

	sum, err := s.Scanner.Analyze(ctx, ticker, interval, period)
	if errors.Is(err, model.ErrNoData) {
		return "Veri bulunamadı."
	}
	if err != nil {
		return notifier.FormatError(err)
	}
	n := strategy.Normalize(*sum, interval)
	if compact {
		return notifier.FormatScore(raw, ticker, interval, period, &n)
	}
	return notifier.FormatAnalysis(raw, ticker, interval, period, &n)
}

func (s *Scheduler) presetReport(ctx context.Context, key string, progress func(string)) string {
	title := presetTitles[key]
	progress(fmt.Sprintf("⏳ %s için tarama başlıyor…", title))

	entries := s.Scanner.ScanPresets(ctx, s.Symbols, scanner.Presets[key], presetLimit)
	for i, e := range entries {
		n := strategy.Normalize(*e.Summary, e.Interval)
		entries[i].Summary = &n
	}
	return notifier.FormatPresets(title, entries)
}

func argOr(args []string, i int, def string) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}
	return def
}
