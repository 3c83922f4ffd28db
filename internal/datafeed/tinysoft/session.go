package tinysoft

import "context"

// Row 是网关返回的一行原始数据（按列名取值的松散元组）。
type Row map[string]any

// Page is the vendor's response envelope for one sub-range query.
type Page struct {
	OK      bool
	ErrCode int
	Message string
	Rows    []Row
}

// Session is the single capability the adapter needs from the vendor
// connection: execute one TSL command and return the raw page. The session
// owns its own login lifecycle; implementations are not safe for
// concurrent Exec calls and the feed serializes access.
type Session interface {
	Exec(ctx context.Context, cmd string) (Page, error)
	Close() error
}
