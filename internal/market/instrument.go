// Package market defines the platform-normalized market data model shared
// by datafeed implementations and their callers.
package market

import "fmt"

// Exchange 标识支持的交易所。
type Exchange string

const (
	ExchangeCFFEX Exchange = "CFFEX" // 中国金融期货交易所
	ExchangeSHFE  Exchange = "SHFE"  // 上海期货交易所
	ExchangeDCE   Exchange = "DCE"   // 大连商品交易所
	ExchangeCZCE  Exchange = "CZCE"  // 郑州商品交易所
	ExchangeINE   Exchange = "INE"   // 上海国际能源交易中心
	ExchangeSSE   Exchange = "SSE"   // 上海证券交易所
	ExchangeSZSE  Exchange = "SZSE"  // 深圳证券交易所
)

// ProductClass distinguishes the instrument families the feed understands.
type ProductClass string

const (
	ClassFuture       ProductClass = "future"
	ClassFutureOption ProductClass = "future_option"
	ClassStockOption  ProductClass = "stock_option"
)

// DataKind selects between candlestick and tick history.
type DataKind string

const (
	KindBar  DataKind = "bar"
	KindTick DataKind = "tick"
)

// InstrumentKey identifies one instrument as the platform names it. It is a
// request-scoped value; vendor-specific codes are derived from it and never
// stored.
type InstrumentKey struct {
	Exchange Exchange
	Symbol   string
	Class    ProductClass
}

func (k InstrumentKey) String() string {
	return fmt.Sprintf("%s.%s", k.Symbol, k.Exchange)
}
