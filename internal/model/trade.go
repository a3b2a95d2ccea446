package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeAction is a ledger command accepted from an operator.
type TradeAction string

const (
	ActionBuy    TradeAction = "BUY"
	ActionSell   TradeAction = "SELL"
	ActionRemove TradeAction = "REMOVE"
)

// Trade is one accepted ledger command. Realized is only set for SELL.
type Trade struct {
	Action   TradeAction     `json:"action"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Realized decimal.Decimal `json:"realized"`
	Time     time.Time       `json:"time"`
}
