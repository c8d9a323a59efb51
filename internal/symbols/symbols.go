// Package symbols holds the instrument universe scanned by default.
package symbols

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const suffix = ".IS"

// Default is the built-in BIST universe used when no symbols file exists.
var Default = []string{
	"THYAO.IS", "ASELS.IS", "BIMAS.IS", "KCHOL.IS", "ALARK.IS", "EREGL.IS", "SISE.IS", "TUPRS.IS", "TOASO.IS", "FROTO.IS",
	"HEKTS.IS", "BRSAN.IS", "AKBNK.IS", "YKBNK.IS", "GARAN.IS", "ISCTR.IS", "SAHOL.IS", "PETKM.IS", "ENJSA.IS", "ULUSE.IS",
	"FENER.IS", "KOZAA.IS", "KRONT.IS", "QUAGR.IS", "TSKB.IS", "ATAGY.IS", "BAGFS.IS", "VESBE.IS", "VESTL.IS", "MGROS.IS",
}

// Normalize upper-cases a ticker and appends the exchange suffix if missing.
func Normalize(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" || strings.HasSuffix(t, suffix) {
		return t
	}
	return t + suffix
}

// Load reads one symbol per line from path, skipping blank lines and
// duplicates. A missing file (or empty path) yields a copy of Default.
func Load(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), Default...), nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return append([]string(nil), Default...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open symbols file: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := Normalize(sc.Text())
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read symbols file: %w", err)
	}
	return out, nil
}
