package recorder

import "StockSignals/internal/model"

// Recorder journals signals and trades for later analysis. It is write-only;
// nothing is read back on startup.
type Recorder interface {
	RecordSignal(sig *model.Signal) error
	RecordTrade(tr *model.Trade) error
	Close() error
}
