package market

import (
	"fmt"
	"strings"
	"time"
)

// Interval 是平台支持的K线周期（闭集）。
type Interval string

const (
	Interval1m Interval = "1m"
	Interval5m Interval = "5m"
	Interval1h Interval = "1h"
	Interval1d Interval = "1d"
)

// ParseInterval normalizes a user-supplied interval string.
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToLower(strings.TrimSpace(s))) {
	case Interval1m:
		return Interval1m, nil
	case Interval5m:
		return Interval5m, nil
	case Interval1h:
		return Interval1h, nil
	case Interval1d:
		return Interval1d, nil
	default:
		return "", fmt.Errorf("unknown interval %q", s)
	}
}

// HistoryRequest describes one history query as issued by the host
// platform. Interval is meaningful only for bar requests.
type HistoryRequest struct {
	Instrument InstrumentKey
	Kind       DataKind
	Interval   Interval
	Start      time.Time
	End        time.Time
}

// Validate rejects structurally invalid requests before any vendor call.
func (r HistoryRequest) Validate() error {
	if strings.TrimSpace(r.Instrument.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("start %s is after end %s", r.Start, r.End)
	}
	switch r.Kind {
	case KindBar:
		if r.Interval == "" {
			return fmt.Errorf("interval is required for bar requests")
		}
	case KindTick:
		if r.Interval != "" {
			return fmt.Errorf("interval must be empty for tick requests")
		}
	default:
		return fmt.Errorf("unknown data kind %q", r.Kind)
	}
	return nil
}
