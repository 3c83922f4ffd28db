package tinysoft

import (
	"fmt"
	"time"

	"tslfeed/internal/market"
)

// intervalTokens 是平台周期到天软 pn_cycle 周期函数名的闭集映射。
var intervalTokens = map[market.Interval]string{
	market.Interval1m: "cy_1m",
	market.Interval5m: "cy_5m",
	market.Interval1h: "cy_60m",
	market.Interval1d: "cy_day",
}

// Per-call time-span ceilings tolerated by the vendor. Coarser intervals
// tolerate longer spans; tick queries the shortest. These are
// vendor-documented constants, not tunables.
var barSpanCeilings = map[market.Interval]time.Duration{
	market.Interval1m: 5 * 24 * time.Hour,
	market.Interval5m: 20 * 24 * time.Hour,
	market.Interval1h: 60 * 24 * time.Hour,
	market.Interval1d: 100 * 24 * time.Hour,
}

const tickSpanCeiling = 24 * time.Hour

// resolveInterval maps a platform interval onto the vendor token. An
// unsupported interval fails instead of silently rounding to a neighbor.
func resolveInterval(iv market.Interval) (string, error) {
	token, ok := intervalTokens[iv]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedInterval, iv)
	}
	return token, nil
}

func spanCeiling(kind market.DataKind, iv market.Interval) time.Duration {
	if kind == market.KindTick {
		return tickSpanCeiling
	}
	if c, ok := barSpanCeilings[iv]; ok {
		return c
	}
	return tickSpanCeiling
}
