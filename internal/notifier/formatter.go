package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"BistSentinel/internal/model"
	"BistSentinel/internal/scanner"
)

// HelpText lists the chat commands.
const HelpText = "Komutlar:\n" +
	"/analiz TICKER [interval] [period]\n" +
	"/score TICKER [interval] [period]\n" +
	"/top10 [interval] [period]\n" +
	"/top10kisa  (15m/14d + 30m/30d)\n" +
	"/top10orta  (60m/60d + 90m/90d)\n" +
	"/top10uzun  (1d/180d + 1d/365d)"

// maxSkippedShown caps the skipped tickers listed under a ranking.
const maxSkippedShown = 12

// PctString renders the distance from price to target as a signed percentage
// such as "%+1.23". A non-positive price yields "%0.00".
func PctString(price, target float64) string {
	if price <= 0 {
		return "%0.00"
	}
	return fmt.Sprintf("%%%+.2f", (target-price)/price*100)
}

func targetsLine(s *model.SignalSummary, short bool) string {
	h1, h2 := "Hedef1", "Hedef2"
	if short {
		h1, h2 = "H1", "H2"
	}
	return fmt.Sprintf("%s: <b>%.2f</b> (%s) | %s: <b>%.2f</b> (%s) | ETA: %s",
		h1, s.T1, PctString(s.Price, s.T1), h2, s.T2, PctString(s.Price, s.T2), s.ETA)
}

// FormatAnalysis formats the full analysis of one instrument.
func FormatAnalysis(raw, ticker, interval, period string, s *model.SignalSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> (%s) — %s/%s\n", html.EscapeString(raw), html.EscapeString(ticker), interval, period))
	b.WriteString(fmt.Sprintf("Fiyat: <b>%.2f</b> | ATR: %.2f | Hacim: %s\n", s.Price, s.ATR, humanize.SIWithDigits(s.Volume, 1, "")))
	b.WriteString(fmt.Sprintf("Öneri: <b>%s</b> | Skor: <b>%.0f/100</b>\n", html.EscapeString(s.BiasText), s.Score))
	b.WriteString(fmt.Sprintf("Durum: %s\n", html.EscapeString(s.PatternText)))
	b.WriteString(fmt.Sprintf("Alım Bölgesi: %s | Stop: <b>%.2f</b>\n", s.BuyZone, s.Stop))
	b.WriteString(targetsLine(s, false))
	return b.String()
}

// FormatScore formats the compact score view of one instrument.
func FormatScore(raw, ticker, interval, period string, s *model.SignalSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> (%s) — %s/%s\n", html.EscapeString(raw), html.EscapeString(ticker), interval, period))
	b.WriteString(fmt.Sprintf("Skor: <b>%.0f</b> | Öneri: %s | Fiyat: %.2f\n", s.Score, html.EscapeString(s.BiasText), s.Price))
	b.WriteString(targetsLine(s, true))
	return b.String()
}

// FormatTop formats a ranked list whose summaries are already normalized.
// The cutoff is the score of the last listed entry.
func FormatTop(interval, period string, ranked []model.Ranked, skipped []string, elapsed time.Duration) string {
	if len(ranked) == 0 {
		return "Sonuç yok."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔥 <b>TOP %d</b> — %s/%s\n", len(ranked), interval, period))
	for i, r := range ranked {
		s := r.Summary
		b.WriteString(fmt.Sprintf("%02d. <b>%s</b> — Skor: <b>%.0f</b> | Öneri: %s | Fiyat: %.2f\n",
			i+1, html.EscapeString(r.Ticker), s.Score, html.EscapeString(s.BiasText), s.Price))
		b.WriteString(fmt.Sprintf("Alım: %s | Stop: %.2f | %s\n", s.BuyZone, s.Stop, targetsLine(s, true)))
	}
	cutoff := ranked[len(ranked)-1].Summary.Score
	b.WriteString(fmt.Sprintf("\n<i>Cutoff (%d. sıra) skor:</i> <b>%.0f</b>", len(ranked), cutoff))
	if len(skipped) > 0 {
		shown := skipped
		if len(shown) > maxSkippedShown {
			shown = shown[:maxSkippedShown]
		}
		b.WriteString(fmt.Sprintf("\n\n<i>Atlanan (%s):</i> %s", humanize.Comma(int64(len(skipped))), html.EscapeString(strings.Join(shown, ", "))))
	}
	if elapsed > 0 {
		b.WriteString(fmt.Sprintf("\n<i>Süre:</i> %s", elapsed.Round(time.Second)))
	}
	return b.String()
}

// FormatPresets formats a multi-horizon ranking whose summaries are already
// normalized.
func FormatPresets(title string, entries []scanner.Averaged) string {
	if len(entries) == 0 {
		return fmt.Sprintf("🔥 <b>TOP 10 %s</b>\n\nSonuç yok.", title)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔥 <b>TOP 10 %s</b>\n\n", title))
	for i, e := range entries {
		s := e.Summary
		b.WriteString(fmt.Sprintf("%02d. <b>%s</b> — Ortalama Skor: <b>%.0f</b>\n", i+1, html.EscapeString(e.Ticker), e.Score))
		b.WriteString(fmt.Sprintf("Öneri: %s | Fiyat: %.2f\n", html.EscapeString(s.BiasText), s.Price))
		b.WriteString(fmt.Sprintf("Alım: %s | Stop: %.2f\n", s.BuyZone, s.Stop))
		b.WriteString(targetsLine(s, true))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatError formats a command failure.
func FormatError(err error) string {
	return fmt.Sprintf("❌ Hata: %s", html.EscapeString(err.Error()))
}
