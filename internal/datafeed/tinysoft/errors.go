package tinysoft

import (
	"errors"
	"fmt"
)

// 请求校验与数据完整性错误，调用方可用 errors.Is 识别。
var (
	ErrUnsupportedExchange = errors.New("tinysoft: unsupported exchange")
	ErrMalformedSymbol     = errors.New("tinysoft: malformed symbol")
	ErrUnsupportedInterval = errors.New("tinysoft: unsupported interval")
	ErrOutOfOrderData      = errors.New("tinysoft: out-of-order data from vendor")
	ErrMalformedRecord     = errors.New("tinysoft: malformed vendor record")
)

// Vendor response codes, from the TSL gateway interface documentation.
const (
	codeOK          = 0
	codeSessionLost = 1
	codeTimeout     = 2
	codeBusy        = 3
	codeNoData      = 10
	codeBadRequest  = 20
	codeForbidden   = 21
	codeNoContract  = 22
)

type errClass int

const (
	classPermanent errClass = iota
	classTransient
	classNoData
)

// classifyCode maps raw vendor codes onto the retry taxonomy. Unknown codes
// are treated as permanent: retrying an unclassified failure against a
// stateful session does more harm than good.
func classifyCode(code int) errClass {
	switch code {
	case codeSessionLost, codeTimeout, codeBusy:
		return classTransient
	case codeNoData:
		return classNoData
	default:
		return classPermanent
	}
}

// QueryError reports a vendor-side query failure with its raw code.
type QueryError struct {
	Code    int
	Message string
}

func (e *QueryError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tinysoft: vendor query failed (code=%d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("tinysoft: vendor query failed (code=%d)", e.Code)
}
