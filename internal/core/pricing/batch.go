package pricing

import (
	"warrant-screener/internal/core/model"
)

// BatchItem 批量定价的一笔输入
type BatchItem struct {
	// Strike 履约价
	Strike float64
	// TimeYears 剩余期限（年）
	TimeYears float64
	// UnitPrice 市场单位价（权证价 / 行使比例）
	UnitPrice float64
	// Type 认购或认售
	Type model.OptionType
}

// Outcome 批量定价的一笔输出
type Outcome struct {
	// Sigma 隐含波动率（年化）
	Sigma float64
	// Delta 对标的现价的一阶敏感度
	Delta float64
	// Theta 时间价值流逝（年化）
	Theta float64
	// Solved 隐含波动率是否解出；false 时其余字段无意义
	Solved bool
}

// Evaluate 对同一标的现价下的一批合约求隐含波动率与希腊值
// 参数 spot: 标的现价（整批共享）
// 参数 items: 待估合约
// 返回: 与输入等长且顺序对应的结果序列
//
// 单笔无解不影响整批；Delta/Theta 以解出的波动率计算
func (s *Solver) Evaluate(spot float64, items []BatchItem) []Outcome {
	outs := make([]Outcome, len(items))
	for i, it := range items {
		sigma, ok := s.ImpliedVol(spot, it.Strike, it.TimeYears, it.UnitPrice, it.Type)
		if !ok {
			continue
		}
		outs[i] = Outcome{
			Sigma:  sigma,
			Delta:  Delta(spot, it.Strike, s.rate, sigma, it.TimeYears, it.Type),
			Theta:  Theta(spot, it.Strike, s.rate, sigma, it.TimeYears, it.Type),
			Solved: true,
		}
	}
	return outs
}
