// Package pricing 欧式期权定价引擎
// 提供 Black-Scholes 闭式定价、隐含波动率反解与希腊值计算，
// 所有数值均以 float64 表达，时间以年化分数计
package pricing

import (
	"math"

	"warrant-screener/internal/core/model"
)

// sigmaFloor 波动率下限
// 低于该值视为退化情形，按内在价值定价以避免数值不稳定
const sigmaFloor = 1e-4

// normCDF 标准正态分布累积函数
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF 标准正态分布密度函数
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// d1d2 计算 Black-Scholes 的两个标准化距离
// 调用方需保证 t > 0 且 sigma >= sigmaFloor
func d1d2(spot, strike, rate, sigma, t float64) (float64, float64) {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

// Intrinsic 内在价值
func Intrinsic(spot, strike float64, typ model.OptionType) float64 {
	if typ == model.OptionCall {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// Value Black-Scholes 理论价
// 参数 spot: 标的现价
// 参数 strike: 履约价
// 参数 rate: 无风险利率（年化）
// 参数 sigma: 波动率（年化）
// 参数 t: 剩余期限（年）
// 退化情形（t <= 0 或 sigma < 下限）返回内在价值，保证函数全定义
func Value(spot, strike, rate, sigma, t float64, typ model.OptionType) float64 {
	if t <= 0 || sigma < sigmaFloor {
		return Intrinsic(spot, strike, typ)
	}

	d1, d2 := d1d2(spot, strike, rate, sigma, t)
	disc := strike * math.Exp(-rate*t)
	if typ == model.OptionCall {
		return spot*normCDF(d1) - disc*normCDF(d2)
	}
	return disc*normCDF(-d2) - spot*normCDF(-d1)
}

// Delta 理论价对标的现价的一阶敏感度
// 认购在 (0, 1) 区间，认售在 (-1, 0) 区间；
// 退化情形按价内与否取区间端点
func Delta(spot, strike, rate, sigma, t float64, typ model.OptionType) float64 {
	if t <= 0 || sigma < sigmaFloor {
		if typ == model.OptionCall {
			if spot > strike {
				return 1
			}
			return 0
		}
		if spot < strike {
			return -1
		}
		return 0
	}

	d1, _ := d1d2(spot, strike, rate, sigma, t)
	if typ == model.OptionCall {
		return normCDF(d1)
	}
	return normCDF(d1) - 1
}

// Theta 理论价对时间流逝的敏感度（年化，数值通常为负）
// 退化情形返回 0
func Theta(spot, strike, rate, sigma, t float64, typ model.OptionType) float64 {
	if t <= 0 || sigma < sigmaFloor {
		return 0
	}

	d1, d2 := d1d2(spot, strike, rate, sigma, t)
	decay := -spot * sigma * normPDF(d1) / (2 * math.Sqrt(t))
	disc := rate * strike * math.Exp(-rate*t)
	if typ == model.OptionCall {
		return decay - disc*normCDF(d2)
	}
	return decay + disc*normCDF(-d2)
}
