package pricing

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"warrant-screener/internal/core/model"
)

func TestImpliedVol_KnownValue(t *testing.T) {
	s := NewSolver(0.05, 0.01, 5.0)

	// σ=0.2 的理论价反解应还原 σ
	market := Value(100, 100, 0.05, 0.2, 1, model.OptionCall)
	sigma, ok := s.ImpliedVol(100, 100, 1, market, model.OptionCall)
	if !ok {
		t.Fatal("已知理论价反解失败")
	}
	if math.Abs(sigma-0.2) > 1e-4 {
		t.Fatalf("隐含波动率 = %v, 期望 0.2", sigma)
	}
}

func TestImpliedVol_Unsolvable(t *testing.T) {
	s := NewSolver(0.015, 0.01, 5.0)

	cases := []struct {
		name   string
		spot   float64
		strike float64
		years  float64
		market float64
		typ    model.OptionType
	}{
		{"市价低于内在价值", 110, 100, 0.5, 9.0, model.OptionCall},
		{"市价恰为内在价值", 110, 100, 0.5, 10.0, model.OptionCall},
		{"市价超出上界理论价", 100, 100, 0.1, 95.0, model.OptionCall},
		{"已到期", 110, 100, 0, 12.0, model.OptionCall},
		{"市价非正", 100, 100, 0.5, 0, model.OptionCall},
		{"现价非正", 0, 100, 0.5, 5.0, model.OptionCall},
	}
	for _, c := range cases {
		if _, ok := s.ImpliedVol(c.spot, c.strike, c.years, c.market, c.typ); ok {
			t.Fatalf("%s: 期望无解", c.name)
		}
	}
}

// TestImpliedVol_RoundTrip 定价与反解的往返一致性
func TestImpliedVol_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	s := NewSolver(0.015, 0.01, 5.0)

	roundTrip := func(typ model.OptionType) func(float64, float64, float64, float64) bool {
		return func(spot, strike, sigma, years float64) bool {
			market := Value(spot, strike, 0.015, sigma, years, typ)
			if market <= Intrinsic(spot, strike, typ)+TimeValueEpsilon {
				return true // 无时间价值，反解前置条件不成立
			}
			got, ok := s.ImpliedVol(spot, strike, years, market, typ)
			return ok && math.Abs(got-sigma) < 1e-4
		}
	}

	properties.Property("认购往返 |σ'-σ| < 1e-4", prop.ForAll(
		roundTrip(model.OptionCall),
		gen.Float64Range(20, 300),
		gen.Float64Range(20, 300),
		gen.Float64Range(0.05, 3.0),
		gen.Float64Range(0.02, 2.0),
	))
	properties.Property("认售往返 |σ'-σ| < 1e-4", prop.ForAll(
		roundTrip(model.OptionPut),
		gen.Float64Range(20, 300),
		gen.Float64Range(20, 300),
		gen.Float64Range(0.05, 3.0),
		gen.Float64Range(0.02, 2.0),
	))

	properties.TestingRun(t)
}

func TestEvaluate_MatchesScalar(t *testing.T) {
	s := NewSolver(0.015, 0.01, 5.0)
	spot := 105.0

	items := []BatchItem{
		{Strike: 100, TimeYears: 120.0 / 365, UnitPrice: Value(spot, 100, 0.015, 0.4, 120.0/365, model.OptionCall), Type: model.OptionCall},
		{Strike: 110, TimeYears: 0.5, UnitPrice: Value(spot, 110, 0.015, 0.6, 0.5, model.OptionPut), Type: model.OptionPut},
		{Strike: 100, TimeYears: 0.5, UnitPrice: 4.0, Type: model.OptionCall}, // 低于内在价值，无解
	}

	outs := s.Evaluate(spot, items)
	if len(outs) != len(items) {
		t.Fatalf("结果数 = %d, 期望 %d", len(outs), len(items))
	}

	for i, it := range items[:2] {
		if !outs[i].Solved {
			t.Fatalf("第 %d 笔期望解出", i)
		}
		sigma, _ := s.ImpliedVol(spot, it.Strike, it.TimeYears, it.UnitPrice, it.Type)
		if math.Abs(outs[i].Sigma-sigma) > 1e-12 {
			t.Fatalf("第 %d 笔批量 σ = %v 与标量 %v 不一致", i, outs[i].Sigma, sigma)
		}
		if outs[i].Delta == 0 || outs[i].Theta == 0 {
			t.Fatalf("第 %d 笔希腊值未计算", i)
		}
	}

	if outs[2].Solved {
		t.Fatal("低于内在价值的市价不应解出")
	}
	if outs[2].Sigma != 0 || outs[2].Delta != 0 {
		t.Fatal("无解结果的字段应为零值")
	}
}
