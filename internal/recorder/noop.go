package recorder

import "StockSignals/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ *model.Signal) error { return nil }
func (n *NoopRecorder) RecordTrade(_ *model.Trade) error   { return nil }
func (n *NoopRecorder) Close() error                       { return nil }
