package market

import "context"

// Datafeed is the inbound surface the host platform calls. Both methods are
// synchronous and return the full, time-ordered series or a classified
// error; partial results are never returned.
type Datafeed interface {
	QueryBarHistory(ctx context.Context, req HistoryRequest) ([]Bar, error)
	QueryTickHistory(ctx context.Context, req HistoryRequest) ([]Tick, error)
}
