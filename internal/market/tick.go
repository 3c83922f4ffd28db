package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is one rung of a bid/ask ladder.
type PriceLevel struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// Tick 是一条标准化的行情快照。盘口深度由品种决定（期货5档，期权/股票1档）。
type Tick struct {
	Instrument InstrumentKey
	Timestamp  time.Time
	Name       string

	LastPrice decimal.Decimal
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Volume    decimal.Decimal
	Turnover  decimal.Decimal

	OpenInterest *decimal.Decimal

	Bids []PriceLevel
	Asks []PriceLevel
}
