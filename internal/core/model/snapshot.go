package model

// MarketSnapshot 单一权证的即时行情快照
// 每次筛选请求重新获取，不跨请求缓存
type MarketSnapshot struct {
	// Code 权证代号
	Code string
	// LastPrice 最新成交价；盘后或无量时可能为 0
	LastPrice float64
	// BestBidPrice 最优买价（买一价）
	BestBidPrice float64
	// BestBidVolume 最优买量（买一量）
	BestBidVolume int64
	// BestAskPrice 最优卖价（卖一价）
	BestAskPrice float64
	// BestAskVolume 最优卖量（卖一量）
	BestAskVolume int64
	// TotalVolume 当日累计成交量
	TotalVolume int64
	// ReferencePrice 参考价（昨收），可缺省为 0
	ReferencePrice float64
	// LimitUp 涨停价，可缺省为 0
	LimitUp float64
	// LimitDown 跌停价，可缺省为 0
	LimitDown float64
}

// EffectivePrice 计算有效市场价格
// 优先级: 卖一价 > 最新成交价 > 买一价 > 参考价 > 涨跌停中点
// 全部不可用时返回 (0, false)，调用方应剔除该候选
func (s *MarketSnapshot) EffectivePrice() (float64, bool) {
	switch {
	case s.BestAskPrice > 0:
		return s.BestAskPrice, true
	case s.LastPrice > 0:
		return s.LastPrice, true
	case s.BestBidPrice > 0:
		return s.BestBidPrice, true
	case s.ReferencePrice > 0:
		return s.ReferencePrice, true
	case s.LimitUp > 0 && s.LimitDown > 0:
		return (s.LimitUp + s.LimitDown) / 2, true
	}
	return 0, false
}

// Spread 计算买卖绝对价差
// 买一或卖一缺省时返回 (0, false)，表示价差不可计算
func (s *MarketSnapshot) Spread() (float64, bool) {
	if s.BestBidPrice <= 0 || s.BestAskPrice <= 0 {
		return 0, false
	}
	return s.BestAskPrice - s.BestBidPrice, true
}

// SpreadPct 计算买卖价差百分比（以买一价为分母）
// 买一或卖一缺省时返回 (0, false)
func (s *MarketSnapshot) SpreadPct() (float64, bool) {
	spread, ok := s.Spread()
	if !ok {
		return 0, false
	}
	return spread / s.BestBidPrice * 100, true
}
