// Package tinysoft adapts the TinySoft (TSL) data service to the platform
// datafeed surface: it translates normalized history requests into TSL
// queries, walks the vendor's paginated results, and converts raw rows into
// platform bars and ticks.
package tinysoft

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tslfeed/internal/logger"
	"tslfeed/internal/market"

	"github.com/google/uuid"
)

// Options 控制分页驱动器的重试行为。
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 500 * time.Millisecond
	}
	return o
}

// Datafeed implements market.Datafeed against one vendor session. The
// session is a single shared, stateful resource; a mutex keeps at most one
// query in flight across the whole process.
type Datafeed struct {
	session      Session
	maxRetries   int
	retryBackoff time.Duration

	mu sync.Mutex
}

func New(session Session, opts Options) *Datafeed {
	final := opts.withDefaults()
	return &Datafeed{
		session:      session,
		maxRetries:   final.MaxRetries,
		retryBackoff: final.RetryBackoff,
	}
}

// QueryBarHistory 查询K线历史。返回序列严格按时间递增且无重复时间戳。
func (f *Datafeed) QueryBarHistory(ctx context.Context, req market.HistoryRequest) ([]market.Bar, error) {
	req.Kind = market.KindBar
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("tinysoft: invalid request: %w", err)
	}
	code, err := vendorCode(req.Instrument)
	if err != nil {
		return nil, err
	}
	token, err := resolveInterval(req.Interval)
	if err != nil {
		return nil, err
	}
	schema := resolveSchema(market.KindBar, req.Instrument.Class)

	f.mu.Lock()
	defer f.mu.Unlock()

	qid := shortID()
	logger.Infof("[tinysoft:%s] bars %s %s [%s, %s]", qid, code, req.Interval,
		req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))

	rows, err := f.fetchRows(ctx, qid, querySpec{
		kind:    market.KindBar,
		code:    code,
		token:   token,
		start:   req.Start,
		end:     req.End,
		ceiling: spanCeiling(market.KindBar, req.Interval),
	})
	if err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(rows))
	for _, row := range rows {
		bar, err := normalizeBar(row, schema, req.Instrument, req.Interval)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	logger.Infof("[tinysoft:%s] bars %s done, %d record(s)", qid, code, len(bars))
	return bars, nil
}

// QueryTickHistory 查询逐笔历史。请求不得携带 Interval。期货缺少毫秒
// 时间戳，重复时间戳按原始顺序补 500ms 保证严格递增。
func (f *Datafeed) QueryTickHistory(ctx context.Context, req market.HistoryRequest) ([]market.Tick, error) {
	req.Kind = market.KindTick
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("tinysoft: invalid request: %w", err)
	}
	code, err := vendorCode(req.Instrument)
	if err != nil {
		return nil, err
	}
	schema := resolveSchema(market.KindTick, req.Instrument.Class)

	f.mu.Lock()
	defer f.mu.Unlock()

	qid := shortID()
	logger.Infof("[tinysoft:%s] ticks %s [%s, %s]", qid, code,
		req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))

	rows, err := f.fetchRows(ctx, qid, querySpec{
		kind:    market.KindTick,
		code:    code,
		start:   req.Start,
		end:     req.End,
		ceiling: spanCeiling(market.KindTick, ""),
	})
	if err != nil {
		return nil, err
	}

	ticks := make([]market.Tick, 0, len(rows))
	var prev time.Time
	for _, row := range rows {
		tick, err := normalizeTick(row, schema, req.Instrument)
		if err != nil {
			return nil, err
		}
		if !prev.IsZero() && !tick.Timestamp.After(prev) {
			tick.Timestamp = prev.Add(500 * time.Millisecond)
		}
		prev = tick.Timestamp
		ticks = append(ticks, tick)
	}
	logger.Infof("[tinysoft:%s] ticks %s done, %d record(s)", qid, code, len(ticks))
	return ticks, nil
}

// Close releases the underlying session.
func (f *Datafeed) Close() error {
	return f.session.Close()
}

func shortID() string {
	return uuid.NewString()[:8]
}
