package pricing

import (
	"warrant-screener/internal/core/model"
)

// TimeValueEpsilon 时间价值门槛（价格空间）
// 市场价与内在价值之差低于该值时无可反解的时间价值
const TimeValueEpsilon = 1e-6

// ivSigmaTolerance 二分法收敛容差（波动率空间）
// 在价格空间收敛会在深度价外、vega 极小的区域提前停在误差很大的 σ 上
const ivSigmaTolerance = 1e-9

// ivMaxIterations 二分法迭代上限
// 区间 [0.01, 5.0] 约 33 次迭代即达 1e-9 精度，64 为安全余量
const ivMaxIterations = 64

// Solver 隐含波动率求解器
// 在可配置的波动率区间内做括号二分，保证结果落于区间内且单调收敛
type Solver struct {
	// rate 无风险利率（年化）
	rate float64
	// sigmaLo 波动率搜索下界
	sigmaLo float64
	// sigmaHi 波动率搜索上界
	sigmaHi float64
}

// NewSolver 创建隐含波动率求解器
// 参数 rate: 无风险利率
// 参数 sigmaLo, sigmaHi: 波动率搜索区间，须满足 0 < lo < hi
func NewSolver(rate, sigmaLo, sigmaHi float64) *Solver {
	return &Solver{rate: rate, sigmaLo: sigmaLo, sigmaHi: sigmaHi}
}

// ImpliedVol 由市场单位价反解隐含波动率
// 参数 spot: 标的现价
// 参数 strike: 履约价
// 参数 t: 剩余期限（年）
// 参数 market: 市场单位价（权证价 / 行使比例）
// 返回: 波动率与是否解出
//
// 前置条件: 市场价须高于内在价值（加容差），否则无时间价值可反解；
// 区间端点的理论价若未能夹住市场价则视为无解，不做外推
func (s *Solver) ImpliedVol(spot, strike, t, market float64, typ model.OptionType) (float64, bool) {
	if t <= 0 || spot <= 0 || strike <= 0 || market <= 0 {
		return 0, false
	}
	if market <= Intrinsic(spot, strike, typ)+TimeValueEpsilon {
		return 0, false
	}

	lo, hi := s.sigmaLo, s.sigmaHi
	fLo := Value(spot, strike, s.rate, lo, t, typ) - market
	fHi := Value(spot, strike, s.rate, hi, t, typ) - market
	if fLo*fHi > 0 {
		return 0, false
	}

	for i := 0; i < ivMaxIterations && hi-lo > ivSigmaTolerance; i++ {
		mid := 0.5 * (lo + hi)
		fMid := Value(spot, strike, s.rate, mid, t, typ) - market
		if fLo*fMid <= 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return 0.5 * (lo + hi), true
}
