package tinysoft

import "tslfeed/internal/market"

// Schema 描述某次查询期望的字段集合，是归一化阶段的唯一依据：
// Normalizer 只读取 schema 声明存在的字段，绝不按行猜测。
type Schema struct {
	// 期货品种携带持仓量与结算价；期权与股票没有。
	HasOpenInterest bool
	HasSettlement   bool

	// 盘口档位数，仅对 tick 有意义。
	Depth int
}

// resolveSchema returns the exact optional-field set for one product class.
func resolveSchema(kind market.DataKind, class market.ProductClass) Schema {
	var s Schema
	if class == market.ClassFuture {
		s.HasOpenInterest = true
		s.HasSettlement = kind == market.KindBar
	}
	if kind == market.KindTick {
		if class == market.ClassFuture {
			s.Depth = 5
		} else {
			s.Depth = 1
		}
	}
	return s
}
