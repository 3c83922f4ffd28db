package tinysoft

import (
	"fmt"
	"regexp"
	"strings"

	"tslfeed/internal/market"
)

// marketPrefix 是交易所到天软市场前缀的固定映射。期货类交易所在天软中
// 直接使用合约代码寻址，前缀为空；证券交易所使用 SH/SZ 前缀。
// The table deliberately lists every supported venue so an unknown
// exchange fails loudly instead of being approximated.
var marketPrefix = map[market.Exchange]string{
	market.ExchangeCFFEX: "",
	market.ExchangeSHFE:  "",
	market.ExchangeDCE:   "",
	market.ExchangeCZCE:  "",
	market.ExchangeINE:   "",
	market.ExchangeSSE:   "SH",
	market.ExchangeSZSE:  "SZ",
}

var futuresVenues = map[market.Exchange]bool{
	market.ExchangeCFFEX: true,
	market.ExchangeSHFE:  true,
	market.ExchangeDCE:   true,
	market.ExchangeCZCE:  true,
	market.ExchangeINE:   true,
}

var (
	// rb2410, IF2406, TA409
	futureSymbolPattern = regexp.MustCompile(`^[A-Za-z]{1,2}[0-9]{3,4}$`)
	// m2105-C-2700, SR105C5200, io2104-P-4000
	futureOptionSymbolPattern = regexp.MustCompile(`^[A-Za-z]{1,2}[0-9]{3,4}-?[CPcp]-?[0-9]+$`)
	// 10002600
	stockOptionSymbolPattern = regexp.MustCompile(`^[0-9]{8}$`)
)

// vendorCode derives the TSL instrument code for one platform instrument.
// Pure and deterministic; never touches the network.
func vendorCode(inst market.InstrumentKey) (string, error) {
	prefix, ok := marketPrefix[inst.Exchange]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExchange, inst.Exchange)
	}
	symbol := strings.TrimSpace(inst.Symbol)

	switch inst.Class {
	case market.ClassFuture:
		if !futuresVenues[inst.Exchange] {
			return "", fmt.Errorf("%w: %q does not list futures", ErrUnsupportedExchange, inst.Exchange)
		}
		if !futureSymbolPattern.MatchString(symbol) {
			return "", fmt.Errorf("%w: %q is not a futures contract code", ErrMalformedSymbol, inst.Symbol)
		}
		return prefix + strings.ToUpper(symbol), nil

	case market.ClassFutureOption:
		if !futuresVenues[inst.Exchange] {
			return "", fmt.Errorf("%w: %q does not list futures options", ErrUnsupportedExchange, inst.Exchange)
		}
		if !futureOptionSymbolPattern.MatchString(symbol) {
			return "", fmt.Errorf("%w: %q is not a futures option code", ErrMalformedSymbol, inst.Symbol)
		}
		return prefix + strings.ToUpper(symbol), nil

	case market.ClassStockOption:
		if futuresVenues[inst.Exchange] {
			return "", fmt.Errorf("%w: %q does not list stock options", ErrUnsupportedExchange, inst.Exchange)
		}
		if !stockOptionSymbolPattern.MatchString(symbol) {
			return "", fmt.Errorf("%w: %q is not a stock option code", ErrMalformedSymbol, inst.Symbol)
		}
		return prefix + symbol, nil

	default:
		return "", fmt.Errorf("%w: unknown product class %q", ErrMalformedSymbol, inst.Class)
	}
}
