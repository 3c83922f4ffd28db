package tinysoft

import (
	"fmt"
	"time"
)

// TSL 查询语句模板，来自天软的查询方言：K线走 markettable，
// 逐笔走 tradetable，时间范围用 datekey 表达。
const (
	barQueryTemplate  = "setsysparam(pn_cycle(),%s());return select * from markettable datekey %s to %s of '%s' end;"
	tickQueryTemplate = "return select * from tradetable datekey %s to %s of '%s' end;"
)

func buildBarQuery(code, token string, start, end time.Time) string {
	return fmt.Sprintf(barQueryTemplate, token, formatDateKey(start), formatDateKey(end), code)
}

func buildTickQuery(code string, start, end time.Time) string {
	return fmt.Sprintf(tickQueryTemplate, formatDateKey(start), formatDateKey(end), code)
}

// formatDateKey renders a timestamp in TSL datekey notation: the calendar
// date suffixed with "T", plus an intraday offset expressed as a fraction
// of the day when the instant is not midnight.
func formatDateKey(t time.Time) string {
	t = t.In(chinaTZ)
	date := t.Format("20060102")
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	if secs == 0 {
		return date + "T"
	}
	return fmt.Sprintf("%sT+%d/86400", date, secs)
}
