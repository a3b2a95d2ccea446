package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockSignals/internal/model"
	"StockSignals/internal/portfolio"
	"StockSignals/internal/strategy"

	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatAlert formats a strong signal into a Telegram message.
func FormatAlert(sig model.Signal, owned bool, loc *time.Location) string {
	var b strings.Builder
	icon := "🟢"
	if sig.Classification.IsSell() {
		icon = "🔴"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b> %s\n\n", icon, sig.Classification, html.EscapeString(sig.Symbol)))
	b.WriteString(fmt.Sprintf("Price: %.2f (Vol: %.0f)\n", sig.Price, sig.Volume))
	b.WriteString(formatFactors(sig))
	b.WriteString(fmt.Sprintf("Score: %+d\n", sig.TotalScore))
	b.WriteString(fmt.Sprintf("Time: %s\n", sig.Time.In(loc).Format(timeLayout)))
	if owned {
		b.WriteString("\nYou hold this symbol. /sell " + html.EscapeString(sig.Symbol))
	} else {
		b.WriteString(fmt.Sprintf("\n/buy %s %.2f", html.EscapeString(sig.Symbol), sig.Price))
	}
	return b.String()
}

func formatFactors(sig model.Signal) string {
	return fmt.Sprintf("RSI: %s, MACD: %s, Bollinger Bands: %s\n",
		sig.Suggestion(strategy.FactorRSI),
		sig.Suggestion(strategy.FactorMACD),
		sig.Suggestion(strategy.FactorBollinger))
}

// FormatSignals lists candidate signals, at most limit of them.
func FormatSignals(title string, signals []model.Signal, limit int, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>%s</b> (%d)\n", title, len(signals)))
	if len(signals) == 0 {
		b.WriteString("\nNo signals.")
		return b.String()
	}
	for i, sig := range signals {
		if i == limit {
			b.WriteString(fmt.Sprintf("\n… %d more", len(signals)-limit))
			break
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b> for %s at %.2f (Vol: %.0f)\n",
			sig.Classification, html.EscapeString(sig.Symbol), sig.Price, sig.Volume))
		b.WriteString(formatFactors(sig))
		b.WriteString(fmt.Sprintf("Timestamp: %s\n", sig.Time.In(loc).Format(timeLayout)))
	}
	return b.String()
}

// FormatPortfolio formats holdings with profit totals.
func FormatPortfolio(entries []portfolio.Entry, realized, unrealized decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio</b>\n\n")
	if len(entries) == 0 {
		b.WriteString("No holdings.\n")
	}
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%s: Bought at %s, Current Price: %s, P/L: %s\n",
			html.EscapeString(e.Symbol), e.BuyPrice.StringFixed(2), e.CurrentPrice.StringFixed(2), signed(e.Unrealized())))
	}
	b.WriteString(fmt.Sprintf("\nUnrealized: %s\n", signed(unrealized)))
	b.WriteString(fmt.Sprintf("Realized Profits: %s\n", signed(realized)))
	return b.String()
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(2)
	}
	return "+" + d.StringFixed(2)
}
