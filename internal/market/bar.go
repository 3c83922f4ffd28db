package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar 是一根标准化K线。Timestamp 为该K线的收盘时间（Asia/Shanghai）。
//
// OpenInterest and Settlement are nil for instruments that do not carry
// them (stock/ETF options); nil means "not applicable" and must never be
// read as a real zero.
type Bar struct {
	Instrument InstrumentKey
	Interval   Interval
	Timestamp  time.Time

	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
	Turnover decimal.Decimal

	OpenInterest *decimal.Decimal
	Settlement   *decimal.Decimal
}
