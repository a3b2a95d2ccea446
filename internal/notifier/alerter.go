package notifier

import (
	"context"
	"time"

	"StockSignals/internal/model"
)

// SignalAlerter pushes strong signals to the Telegram chat.
type SignalAlerter struct {
	Notifier   *TelegramNotifier
	Loc        *time.Location
	MaxRetries int
}

func (a *SignalAlerter) Alert(ctx context.Context, sig model.Signal, owned bool) error {
	loc := a.Loc
	if loc == nil {
		loc = time.UTC
	}
	return a.Notifier.SendWithRetry(ctx, FormatAlert(sig, owned, loc), a.MaxRetries)
}
