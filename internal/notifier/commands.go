package notifier

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"StockSignals/internal/desk"
	"StockSignals/internal/portfolio"
	"StockSignals/internal/registry"
)

const helpText = `Commands:
• /signals [buy|sell] [strong] [medium] [low]
• /portfolio
• /buy SYMBOL PRICE
• /sell SYMBOL
• /remove SYMBOL
• /clear (drop all signals)`

// Commands answers chat commands against a Desk.
type Commands struct {
	Desk  *desk.Desk
	Loc   *time.Location
	Limit int // max signals per listing
}

// NewCommands creates a command handler. A nil loc means UTC.
func NewCommands(d *desk.Desk, loc *time.Location) *Commands {
	if loc == nil {
		loc = time.UTC
	}
	return &Commands{Desk: d, Loc: loc, Limit: 15}
}

// Handle processes a user command and returns a reply.
func (c *Commands) Handle(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i] // /buy@SomeBot
	}
	args := fields[1:]

	switch name {
	case "/signals":
		return c.signals(args)
	case "/portfolio":
		return FormatPortfolio(c.Desk.Portfolio(), c.Desk.RealizedProfit(), c.Desk.UnrealizedProfit())
	case "/buy":
		if len(args) != 2 {
			return "Usage: /buy SYMBOL PRICE"
		}
		price, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "❌ Invalid price: " + html.EscapeString(args[1])
		}
		if err := c.Desk.Buy(args[0], price); err != nil {
			return rejected(err)
		}
		return fmt.Sprintf("✅ Bought %s at %.2f", html.EscapeString(args[0]), price)
	case "/sell":
		if len(args) != 1 {
			return "Usage: /sell SYMBOL"
		}
		profit, err := c.Desk.Sell(args[0])
		if err != nil {
			return rejected(err)
		}
		return fmt.Sprintf("✅ Sold %s, P/L %s\nRealized Profits: %s",
			html.EscapeString(args[0]), signed(profit), signed(c.Desk.RealizedProfit()))
	case "/remove":
		if len(args) != 1 {
			return "Usage: /remove SYMBOL"
		}
		if err := c.Desk.Remove(args[0]); err != nil {
			return rejected(err)
		}
		return fmt.Sprintf("✅ Removed %s from portfolio", html.EscapeString(args[0]))
	case "/clear":
		c.Desk.ClearSignals()
		return "🧹 Signals cleared"
	default:
		return helpText
	}
}

func (c *Commands) signals(args []string) string {
	side := "buy"
	var f registry.Filter
	for _, a := range args {
		switch strings.ToLower(a) {
		case "buy", "sell":
			side = strings.ToLower(a)
		case "strong":
			f.Strong = true
		case "medium":
			f.Medium = true
		case "low":
			f.Low = true
		default:
			return "Usage: /signals [buy|sell] [strong] [medium] [low]"
		}
	}
	if f == (registry.Filter{}) {
		f = registry.AllStrengths
	}
	if side == "sell" {
		return FormatSignals("Sell Signals", c.Desk.SellCandidates(f), c.Limit, c.Loc)
	}
	return FormatSignals("Buy Signals", c.Desk.BuyCandidates(f), c.Limit, c.Loc)
}

func rejected(err error) string {
	if errors.Is(err, portfolio.ErrInvalidOperation) {
		return "⚠️ " + html.EscapeString(err.Error())
	}
	return "❌ " + html.EscapeString(err.Error())
}
