package tinysoft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tslfeed/internal/logger"
	"tslfeed/internal/market"

	"github.com/cenkalti/backoff/v4"
)

// querySpec 是驱动器执行一次历史查询所需的全部已解析参数。
type querySpec struct {
	kind    market.DataKind
	code    string
	token   string // 仅 bar 查询使用
	start   time.Time
	end     time.Time
	ceiling time.Duration
}

type timeRange struct {
	start, end time.Time
}

// partitionRange splits [start, end] into consecutive sub-ranges no longer
// than ceiling. Adjacent sub-ranges share their boundary instant because
// the vendor treats datekey bounds as inclusive; the duplicate boundary
// rows are dropped during accumulation. start == end yields one trivial
// sub-range.
func partitionRange(start, end time.Time, ceiling time.Duration) []timeRange {
	if !start.Before(end) {
		return []timeRange{{start: start, end: end}}
	}
	var out []timeRange
	cur := start
	for cur.Before(end) {
		next := cur.Add(ceiling)
		if next.After(end) {
			next = end
		}
		out = append(out, timeRange{start: cur, end: next})
		cur = next
	}
	return out
}

// fetchRows walks every sub-range in ascending order, strictly
// sequentially, and returns the concatenated chronological row sequence.
// Any permanent failure discards rows already gathered: a partial history
// silently returned as complete would be worse than an explicit error.
func (f *Datafeed) fetchRows(ctx context.Context, qid string, spec querySpec) ([]Row, error) {
	ranges := partitionRange(spec.start, spec.end, spec.ceiling)
	logger.Debugf("[tinysoft:%s] %s %s split into %d sub-range(s)", qid, spec.kind, spec.code, len(ranges))

	var (
		rows     []Row
		last     time.Time
		haveLast bool
	)
	for i, r := range ranges {
		page, err := f.execSubRange(ctx, qid, spec, r)
		if err != nil {
			return nil, err
		}
		appended := 0
		for _, row := range page {
			ts, err := rowTimestamp(row)
			if err != nil {
				return nil, err
			}
			if haveLast {
				if ts.Before(last) {
					return nil, fmt.Errorf("%w: %s precedes %s in sub-range %d/%d",
						ErrOutOfOrderData, ts, last, i+1, len(ranges))
				}
				if ts.Equal(last) {
					// 子区间边界是闭区间，边界行会重复返回一次。
					// K线时间戳不会合法重复，整段去重；tick 同秒多笔
					// 合法，只丢弃跨页边界上的重复行。
					if spec.kind == market.KindBar || appended == 0 {
						continue
					}
				}
			}
			rows = append(rows, row)
			last = ts
			haveLast = true
			appended++
		}
	}
	return rows, nil
}

// execSubRange issues one vendor call with bounded retries. Transient
// codes and transport errors are retried with exponential backoff;
// the vendor's "no data in range" code is a legitimate empty page;
// everything else aborts immediately.
func (f *Datafeed) execSubRange(ctx context.Context, qid string, spec querySpec, r timeRange) ([]Row, error) {
	var cmd string
	if spec.kind == market.KindTick {
		cmd = buildTickQuery(spec.code, r.start, r.end)
	} else {
		cmd = buildBarQuery(spec.code, spec.token, r.start, r.end)
	}

	var rows []Row
	attempt := 0
	op := func() error {
		attempt++
		page, err := f.session.Exec(ctx, cmd)
		if err != nil {
			// 会话自身也可能返回带错误码的失败（如登录被拒），
			// 永久类错误码同样不重试。
			var qe *QueryError
			if errors.As(err, &qe) && classifyCode(qe.Code) == classPermanent {
				return backoff.Permanent(err)
			}
			logger.Warnf("[tinysoft:%s] exec attempt %d failed: %v", qid, attempt, err)
			return err
		}
		if !page.OK {
			switch classifyCode(page.ErrCode) {
			case classNoData:
				rows = nil
				return nil
			case classTransient:
				logger.Warnf("[tinysoft:%s] transient vendor code %d on attempt %d", qid, page.ErrCode, attempt)
				return &QueryError{Code: page.ErrCode, Message: page.Message}
			default:
				return backoff.Permanent(&QueryError{Code: page.ErrCode, Message: page.Message})
			}
		}
		rows = page.Rows
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.retryBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(f.maxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return rows, nil
}
