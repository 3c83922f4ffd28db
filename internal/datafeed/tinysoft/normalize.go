package tinysoft

import (
	"fmt"
	"math"
	"time"

	"tslfeed/internal/market"
	"tslfeed/internal/pkg/convert"

	"github.com/shopspring/decimal"
)

// 天软行字段名。K线行来自 markettable，逐笔行来自 tradetable。
const (
	fieldDate     = "date"
	fieldTime     = "time"
	fieldOpen     = "open"
	fieldHigh     = "high"
	fieldLow      = "low"
	fieldClose    = "close"
	fieldVolume   = "vol"
	fieldTurnover = "amount"
	// 期货专有
	fieldOpenInterest = "sectional_cjbs"
	fieldSettlement   = "settlement"
	// tradetable 专有
	fieldName            = "StockName"
	fieldPrice           = "price"
	fieldSessionOpen     = "sectional_open"
	fieldSessionHigh     = "sectional_high"
	fieldSessionLow      = "sectional_low"
	fieldSessionVolume   = "sectional_vol"
	fieldSessionTurnover = "sectional_amount"
)

var (
	bidPriceFields  = [5]string{"buy1", "buy2", "buy3", "buy4", "buy5"}
	bidVolumeFields = [5]string{"bc1", "bc2", "bc3", "bc4", "bc5"}
	askPriceFields  = [5]string{"sale1", "sale2", "sale3", "sale4", "sale5"}
	askVolumeFields = [5]string{"sc1", "sc2", "sc3", "sc4", "sc5"}
)

// 天软时间戳基于 Asia/Shanghai；用固定时区避免依赖系统 tzdata。
var chinaTZ = time.FixedZone("CST", 8*60*60)

// serialEpoch is the zero point of the vendor's serial date doubles
// (days since 1899-12-30, OLE automation convention).
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, chinaTZ)

// serialToTime converts a vendor serial date double into wall time,
// rounded to the millisecond to absorb float noise.
func serialToTime(serial float64) time.Time {
	ms := math.Round(serial * 24 * 60 * 60 * 1000)
	return serialEpoch.Add(time.Duration(ms) * time.Millisecond)
}

// rowTimestamp extracts the timestamp of one vendor row. Rows normally
// carry a single serial-double "date"; some gateway versions split it into
// yyyymmdd "date" + hhmmss "time", which are combined deterministically.
func rowTimestamp(row Row) (time.Time, error) {
	raw, ok := row[fieldDate]
	if !ok || raw == nil {
		return time.Time{}, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, fieldDate)
	}
	if tv, ok := row[fieldTime]; ok && tv != nil {
		return combineDateTime(convert.ToInt64(raw), convert.ToInt64(tv))
	}
	serial := convert.ToFloat64(raw)
	if serial <= 0 {
		return time.Time{}, fmt.Errorf("%w: invalid date value %v", ErrMalformedRecord, raw)
	}
	return serialToTime(serial), nil
}

func combineDateTime(yyyymmdd, hhmmss int64) (time.Time, error) {
	year := int(yyyymmdd / 10000)
	month := int(yyyymmdd / 100 % 100)
	day := int(yyyymmdd % 100)
	if year < 1990 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: invalid date %d", ErrMalformedRecord, yyyymmdd)
	}
	hour := int(hhmmss / 10000)
	minute := int(hhmmss / 100 % 100)
	sec := int(hhmmss % 100)
	if hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, fmt.Errorf("%w: invalid time %d", ErrMalformedRecord, hhmmss)
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, chinaTZ), nil
}

// requireDecimal reads a schema-required numeric field. Absence is a
// vendor/integration bug and is propagated, never defaulted.
func requireDecimal(row Row, field string) (decimal.Decimal, error) {
	raw, ok := row[field]
	if !ok || raw == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, field)
	}
	d, err := convert.ToDecimal(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: field %q: %v", ErrMalformedRecord, field, err)
	}
	return d, nil
}

// optionalDecimal reads a field that may be absent, returning zero.
func optionalDecimal(row Row, field string) decimal.Decimal {
	raw, ok := row[field]
	if !ok || raw == nil {
		return decimal.Decimal{}
	}
	d, err := convert.ToDecimal(raw)
	if err != nil {
		return decimal.Decimal{}
	}
	return d
}

// normalizeBar converts one vendor markettable row into a platform bar.
// Field extraction is schema-driven: optional fields outside the schema
// are never read, so a non-futures bar gets a nil (not zero) open
// interest.
func normalizeBar(row Row, schema Schema, inst market.InstrumentKey, iv market.Interval) (market.Bar, error) {
	ts, err := rowTimestamp(row)
	if err != nil {
		return market.Bar{}, err
	}
	bar := market.Bar{
		Instrument: inst,
		Interval:   iv,
		Timestamp:  ts,
	}
	if bar.Open, err = requireDecimal(row, fieldOpen); err != nil {
		return market.Bar{}, err
	}
	if bar.High, err = requireDecimal(row, fieldHigh); err != nil {
		return market.Bar{}, err
	}
	if bar.Low, err = requireDecimal(row, fieldLow); err != nil {
		return market.Bar{}, err
	}
	if bar.Close, err = requireDecimal(row, fieldClose); err != nil {
		return market.Bar{}, err
	}
	if bar.Volume, err = requireDecimal(row, fieldVolume); err != nil {
		return market.Bar{}, err
	}
	bar.Turnover = optionalDecimal(row, fieldTurnover)
	if schema.HasOpenInterest {
		oi, err := requireDecimal(row, fieldOpenInterest)
		if err != nil {
			return market.Bar{}, err
		}
		bar.OpenInterest = &oi
	}
	if schema.HasSettlement {
		settle, err := requireDecimal(row, fieldSettlement)
		if err != nil {
			return market.Bar{}, err
		}
		bar.Settlement = &settle
	}
	return bar, nil
}

// normalizeTick converts one vendor tradetable row into a platform tick.
// Ladder depth comes from the schema (futures are quoted deeper than
// options/stocks); missing rungs read as zero levels, which is how the
// vendor reports an empty book side.
func normalizeTick(row Row, schema Schema, inst market.InstrumentKey) (market.Tick, error) {
	ts, err := rowTimestamp(row)
	if err != nil {
		return market.Tick{}, err
	}
	tick := market.Tick{
		Instrument: inst,
		Timestamp:  ts,
	}
	if name, ok := row[fieldName].(string); ok {
		tick.Name = name
	}
	if tick.LastPrice, err = requireDecimal(row, fieldPrice); err != nil {
		return market.Tick{}, err
	}
	if tick.Volume, err = requireDecimal(row, fieldSessionVolume); err != nil {
		return market.Tick{}, err
	}
	tick.Open = optionalDecimal(row, fieldSessionOpen)
	tick.High = optionalDecimal(row, fieldSessionHigh)
	tick.Low = optionalDecimal(row, fieldSessionLow)
	tick.Turnover = optionalDecimal(row, fieldSessionTurnover)
	if schema.HasOpenInterest {
		oi, err := requireDecimal(row, fieldOpenInterest)
		if err != nil {
			return market.Tick{}, err
		}
		tick.OpenInterest = &oi
	}
	depth := schema.Depth
	if depth > len(bidPriceFields) {
		depth = len(bidPriceFields)
	}
	tick.Bids = make([]market.PriceLevel, 0, depth)
	tick.Asks = make([]market.PriceLevel, 0, depth)
	for i := 0; i < depth; i++ {
		tick.Bids = append(tick.Bids, market.PriceLevel{
			Price:  optionalDecimal(row, bidPriceFields[i]),
			Volume: optionalDecimal(row, bidVolumeFields[i]),
		})
		tick.Asks = append(tick.Asks, market.PriceLevel{
			Price:  optionalDecimal(row, askPriceFields[i]),
			Volume: optionalDecimal(row, askVolumeFields[i]),
		})
	}
	return tick, nil
}
