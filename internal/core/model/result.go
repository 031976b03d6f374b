package model

import "time"

// ScreeningResult 单一合格权证的筛选结果
// 字段与行情快照、规格表及定价引擎的输出一一对应
type ScreeningResult struct {
	// Code 权证代号
	Code string `json:"code"`
	// DisplayName 权证简称
	DisplayName string `json:"name"`
	// EffectivePrice 有效市场价格（后续计算统一使用）
	EffectivePrice float64 `json:"price"`
	// BestBid 最优买价
	BestBid float64 `json:"best_bid"`
	// BestAsk 最优卖价
	BestAsk float64 `json:"best_ask"`
	// BestBidVolume 最优买量
	BestBidVolume int64 `json:"best_bid_volume"`
	// BestAskVolume 最优卖量
	BestAskVolume int64 `json:"best_ask_volume"`
	// TotalVolume 当日累计成交量（排序键，降序）
	TotalVolume int64 `json:"total_volume"`
	// DaysToMaturity 距到期日天数
	DaysToMaturity int `json:"days_to_maturity"`
	// StrikePrice 履约价格
	StrikePrice float64 `json:"strike_price"`
	// ImpliedVolPct 隐含波动率（百分比）
	ImpliedVolPct float64 `json:"implied_vol_pct"`
	// EffectiveLeverage 实质杠杆
	EffectiveLeverage float64 `json:"effective_leverage"`
	// DailyDecayPct 每日时间价值损耗（百分比，通常为负）
	DailyDecayPct float64 `json:"daily_decay_pct"`
	// Broker 发行券商标签，未匹配时为「其他」
	Broker string `json:"broker"`
}

// ResultEnvelope 一次筛选请求的完整回传
// 发布到结果通道并追加到本地 JSONL 日志
type ResultEnvelope struct {
	// RequestID 请求标识
	RequestID string `json:"request_id"`
	// Query 原始查询文字
	Query string `json:"query"`
	// Count 合格结果数
	Count int `json:"count"`
	// UpdatedAt 处理完成时间
	UpdatedAt time.Time `json:"updated_at"`
	// Results 按成交量降序排列的结果集，可能为空
	Results []ScreeningResult `json:"results"`
}
