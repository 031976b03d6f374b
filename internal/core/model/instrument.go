// Package model 定义筛选引擎中使用的核心数据结构。
// 包含权证规格、行情快照、筛选结果等核心类型。
package model

import (
	"time"

	"warrant-screener/internal/util/dateutil"
)

// OptionType 权证类型
type OptionType string

const (
	// OptionCall 认购权证（名称含「購」）
	OptionCall OptionType = "call"
	// OptionPut 认售权证（名称含「售」）
	OptionPut OptionType = "put"
)

// IndexUnderlyingCode 大盘指数的哨兵标的代号（加权指数）
const IndexUnderlyingCode = "001"

// InstrumentSpec 权证静态规格
// 启动时从规格表构建一次，之后只读，进程重启前不变更
type InstrumentSpec struct {
	// Code 权证代号，已正规化为定宽形式（纯数字补零到 6 位）
	Code string
	// DisplayName 权证简称，可能内嵌发行券商名
	DisplayName string
	// UnderlyingCode 标的代号，可能缺省（由名称推断标的）
	UnderlyingCode string
	// StrikePrice 履约价格，必须为正
	StrikePrice float64
	// Multiplier 行使比例；0 表示规格表未提供可靠值，禁止直接用于除法
	Multiplier float64
	// MaturityDate 到期日，已统一为西元（Gregorian）形式
	MaturityDate time.Time
	// OptionType 权证类型: call（購）或 put（售）
	OptionType OptionType
}

// DaysToMaturity 计算距到期日的剩余日历天数
// 已到期返回 0
func (s *InstrumentSpec) DaysToMaturity(today time.Time) int {
	return dateutil.DaysUntil(today, s.MaturityDate)
}

// HasMultiplier 判断是否存在可靠的行使比例
func (s *InstrumentSpec) HasMultiplier() bool {
	return s.Multiplier > 0
}

// IsCall 判断是否为认购权证
func (s *InstrumentSpec) IsCall() bool {
	return s.OptionType == OptionCall
}
