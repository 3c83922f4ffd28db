package tinysoft

import (
	"testing"
	"time"

	"tslfeed/internal/market"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialToTime(t *testing.T) {
	// 1899-12-30 为序列日期零点
	assert.True(t, serialToTime(0).Equal(serialEpoch))

	// 整数序列值落在当日零点
	got := serialToTime(45000)
	want := serialEpoch.Add(45000 * 24 * time.Hour)
	assert.True(t, got.Equal(want))

	// 小数部分表示日内时间
	got = serialToTime(45000.5)
	assert.True(t, got.Equal(want.Add(12*time.Hour)))
}

func TestSerialRoundTrip(t *testing.T) {
	ts := time.Date(2024, 6, 3, 14, 35, 21, 0, chinaTZ)
	assert.True(t, serialToTime(serialOf(ts)).Equal(ts))
}

func TestRowTimestampSplitDateTime(t *testing.T) {
	row := Row{"date": 20240105.0, "time": 93000.0}
	got, err := rowTimestamp(row)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 1, 5, 9, 30, 0, 0, chinaTZ)))
}

func TestRowTimestampErrors(t *testing.T) {
	_, err := rowTimestamp(Row{})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = rowTimestamp(Row{"date": -1.0})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = rowTimestamp(Row{"date": 20241301.0, "time": 93000.0})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = rowTimestamp(Row{"date": 20240105.0, "time": 250000.0})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalizeBarFuture(t *testing.T) {
	ts := time.Date(2024, 5, 10, 15, 0, 0, 0, chinaTZ)
	inst := market.InstrumentKey{Exchange: market.ExchangeSHFE, Symbol: "rb2410", Class: market.ClassFuture}
	schema := resolveSchema(market.KindBar, market.ClassFuture)

	bar, err := normalizeBar(futureBarRow(ts, 3650), schema, inst, market.Interval1d)
	require.NoError(t, err)
	assert.True(t, bar.Timestamp.Equal(ts))
	assert.Equal(t, inst, bar.Instrument)
	assert.Equal(t, market.Interval1d, bar.Interval)
	assert.True(t, bar.Close.Equal(decimal.NewFromInt(3650)))
	assert.True(t, bar.Volume.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, bar.OpenInterest)
	assert.True(t, bar.OpenInterest.Equal(decimal.NewFromInt(5000)))
	require.NotNil(t, bar.Settlement)
}

func TestNormalizeBarStockOptionOmitsOpenInterest(t *testing.T) {
	ts := time.Date(2024, 5, 10, 15, 0, 0, 0, chinaTZ)
	inst := market.InstrumentKey{Exchange: market.ExchangeSSE, Symbol: "10002600", Class: market.ClassStockOption}
	schema := resolveSchema(market.KindBar, market.ClassStockOption)

	// 股票期权行没有持仓量与结算价字段
	row := Row{
		"date": serialOf(ts), "open": 0.25, "high": 0.27, "low": 0.24,
		"close": 0.26, "vol": 1200.0, "amount": 312.0,
	}
	bar, err := normalizeBar(row, schema, inst, market.Interval1m)
	require.NoError(t, err)
	// 缺席字段标记为"不适用"，绝不能当作真实的零
	assert.Nil(t, bar.OpenInterest)
	assert.Nil(t, bar.Settlement)
}

func TestNormalizeBarMissingRequiredField(t *testing.T) {
	ts := time.Date(2024, 5, 10, 15, 0, 0, 0, chinaTZ)
	inst := market.InstrumentKey{Exchange: market.ExchangeSHFE, Symbol: "rb2410", Class: market.ClassFuture}
	schema := resolveSchema(market.KindBar, market.ClassFuture)

	row := futureBarRow(ts, 3650)
	delete(row, "close")
	_, err := normalizeBar(row, schema, inst, market.Interval1d)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	// 期货 schema 声明了持仓量，缺失同样是集成级错误
	row = futureBarRow(ts, 3650)
	delete(row, "sectional_cjbs")
	_, err = normalizeBar(row, schema, inst, market.Interval1d)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalizeBarCoercesStringNumbers(t *testing.T) {
	ts := time.Date(2024, 5, 10, 15, 0, 0, 0, chinaTZ)
	inst := market.InstrumentKey{Exchange: market.ExchangeDCE, Symbol: "m2409", Class: market.ClassFutureOption}
	schema := resolveSchema(market.KindBar, market.ClassFutureOption)

	row := Row{
		"date": serialOf(ts), "open": "3500.5", "high": "3502", "low": "3499.5",
		"close": "3501.25", "vol": "88", "amount": "308110",
	}
	bar, err := normalizeBar(row, schema, inst, market.Interval1h)
	require.NoError(t, err)
	want, _ := decimal.NewFromString("3501.25")
	assert.True(t, bar.Close.Equal(want))
}

func TestNormalizeTickStockOption(t *testing.T) {
	ts := time.Date(2024, 5, 10, 10, 15, 30, 0, chinaTZ)
	inst := market.InstrumentKey{Exchange: market.ExchangeSSE, Symbol: "10002600", Class: market.ClassStockOption}
	schema := resolveSchema(market.KindTick, market.ClassStockOption)

	row := Row{
		"date":             serialOf(ts),
		"StockName":        "50ETF购6月2600",
		"price":            0.26,
		"sectional_vol":    1500.0,
		"sectional_amount": 390.0,
		"sectional_open":   0.25,
		"sectional_high":   0.27,
		"sectional_low":    0.24,
		"buy1":             0.259,
		"bc1":              20.0,
		"sale1":            0.261,
		"sc1":              18.0,
	}
	tick, err := normalizeTick(row, schema, inst)
	require.NoError(t, err)
	assert.True(t, tick.Timestamp.Equal(ts))
	assert.Equal(t, "50ETF购6月2600", tick.Name)
	assert.Nil(t, tick.OpenInterest)
	require.Len(t, tick.Bids, 1)
	require.Len(t, tick.Asks, 1)
	assert.True(t, tick.Bids[0].Price.Equal(decimal.NewFromFloat(0.259)))
}

func TestNormalizeTickMissingPrice(t *testing.T) {
	ts := time.Date(2024, 5, 10, 10, 15, 30, 0, chinaTZ)
	inst := market.InstrumentKey{Exchange: market.ExchangeSHFE, Symbol: "rb2410", Class: market.ClassFuture}
	schema := resolveSchema(market.KindTick, market.ClassFuture)

	row := futureTickRow(ts, 3600)
	delete(row, "price")
	_, err := normalizeTick(row, schema, inst)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestFormatDateKey(t *testing.T) {
	midnight := time.Date(2024, 1, 5, 0, 0, 0, 0, chinaTZ)
	assert.Equal(t, "20240105T", formatDateKey(midnight))

	fourPM := time.Date(2024, 1, 5, 16, 0, 0, 0, chinaTZ)
	assert.Equal(t, "20240105T+57600/86400", formatDateKey(fourPM))
}

func TestBuildQueries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, chinaTZ)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, chinaTZ)

	bar := buildBarQuery("RB2410", "cy_day", start, end)
	assert.Equal(t,
		"setsysparam(pn_cycle(),cy_day());return select * from markettable datekey 20240101T to 20240201T of 'RB2410' end;",
		bar)

	tick := buildTickQuery("SH10002600", start, end)
	assert.Equal(t,
		"return select * from tradetable datekey 20240101T to 20240201T of 'SH10002600' end;",
		tick)
}
