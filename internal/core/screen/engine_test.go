package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"warrant-screener/internal/config"
	"warrant-screener/internal/core/model"
	"warrant-screener/internal/core/pricing"
	"warrant-screener/internal/core/store"
)

// fakeQuoter 内存行情假实现
type fakeQuoter struct {
	// snaps 按代号索引的快照集
	snaps map[string]model.MarketSnapshot
	// spots 标的现价
	spots map[string]float64
	// failCodes 批次中含任一此类代号时整批失败
	failCodes map[string]bool
	// spotErr 标的现价查询错误
	spotErr error
}

func (q *fakeQuoter) Snapshots(_ context.Context, codes []string) (map[string]model.MarketSnapshot, error) {
	out := make(map[string]model.MarketSnapshot)
	for _, code := range codes {
		if q.failCodes[code] {
			return nil, errors.New("行情接口故障")
		}
		if snap, ok := q.snaps[code]; ok {
			out[code] = snap
		}
	}
	return out, nil
}

func (q *fakeQuoter) LastPrice(_ context.Context, code string) (float64, bool, error) {
	if q.spotErr != nil {
		return 0, false, q.spotErr
	}
	price, ok := q.spots[code]
	return price, ok, nil
}

// fixedNow 测试用的固定当前时间
var fixedNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// maturityInDays 距固定当前时间 n 天的到期日
func maturityInDays(n int) time.Time {
	return fixedNow.AddDate(0, 0, n)
}

func baseConfig() *config.Config {
	return &config.Config{
		Gateway: config.GatewayConfig{SnapshotBatchSize: 200},
		Strategy: config.StrategyConfig{
			MinDaysToMaturity: 30,
			MinLeverage:       1,
			MaxLeverage:       20,
			MinVolume:         0,
			MinPrice:          0.1,
			MaxPrice:          50,
		},
		Pricing: config.PricingConfig{
			RiskFreeRate: 0.015,
			SigmaLo:      0.01,
			SigmaHi:      5.0,
			DayCount:     365,
		},
	}
}

func callSpec(code, name string, strike, mult float64, days int) model.InstrumentSpec {
	return model.InstrumentSpec{
		Code:           code,
		DisplayName:    name,
		UnderlyingCode: "2330",
		StrikePrice:    strike,
		Multiplier:     mult,
		MaturityDate:   maturityInDays(days),
		OptionType:     model.OptionCall,
	}
}

// newTestEngine 以给定规格与行情构建完整引擎
func newTestEngine(t *testing.T, cfg *config.Config, specs []model.InstrumentSpec, quoter Quoter) *Engine {
	t.Helper()

	warrants := make([]store.ListedContract, len(specs))
	for i, s := range specs {
		warrants[i] = store.ListedContract{Code: s.Code, Name: s.DisplayName}
	}

	ix := store.NewContractIndex(store.NewSpecStore(specs), map[string]string{"2330": "台積電"}, zap.NewNop())
	ix.Rebuild(&store.Listing{
		Stocks:   []store.ListedContract{{Code: "2330", Name: "台積電"}},
		Warrants: warrants,
	}, nil)

	e := New(ix, quoter, cfg, zap.NewNop())
	e.now = func() time.Time { return fixedNow }
	return e
}

// TestScreen_IntrinsicPricedCandidate 市价恰为内在价值的价内权证
// 隐含波动率无解，但合约按内在价值口径保留并计算杠杆
func TestScreen_IntrinsicPricedCandidate(t *testing.T) {
	spec := callSpec("031001", "台積電元大45購01", 100, 1, 120)
	quoter := &fakeQuoter{
		snaps: map[string]model.MarketSnapshot{
			"031001": {Code: "031001", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 500},
		},
		spots: map[string]float64{"2330": 105},
	}

	e := newTestEngine(t, baseConfig(), []model.InstrumentSpec{spec}, quoter)
	results := e.Screen(context.Background(), "2330")

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "031001", r.Code)
	assert.InDelta(t, 5.0, r.EffectivePrice, 1e-12, "有效价格取卖一价")
	assert.Equal(t, 120, r.DaysToMaturity)
	assert.Greater(t, r.EffectiveLeverage, 0.0)
	assert.InDelta(t, 20.0, r.EffectiveLeverage, 1e-9, "退化杠杆 = 履约价 x 比例 / 权证价")
	assert.Zero(t, r.ImpliedVolPct, "无时间价值时不报隐含波动率")
	assert.Zero(t, r.DailyDecayPct)
	assert.Equal(t, "元大", r.Broker)
}

// TestScreen_SolvedCandidate 含时间价值的价外权证走完整定价路径
func TestScreen_SolvedCandidate(t *testing.T) {
	spec := callSpec("031002", "台積電凱基88購05", 110, 0.05, 120)
	quoter := &fakeQuoter{
		snaps: map[string]model.MarketSnapshot{
			"031002": {Code: "031002", BestAskPrice: 0.8, BestBidPrice: 0.78, TotalVolume: 300},
		},
		spots: map[string]float64{"2330": 105},
	}

	e := newTestEngine(t, baseConfig(), []model.InstrumentSpec{spec}, quoter)
	results := e.Screen(context.Background(), "台積電")

	require.Len(t, results, 1)
	r := results[0]
	assert.Greater(t, r.ImpliedVolPct, 0.0, "价外权证应解出隐含波动率")
	assert.Greater(t, r.EffectiveLeverage, 0.0)
	assert.Less(t, r.DailyDecayPct, 0.0, "时间价值损耗应为负")
	assert.Equal(t, "凱基", r.Broker)
}

// TestScreen_ExcludedBrokerNeverPresent 排除券商的权证无论指标如何都不出现
func TestScreen_ExcludedBrokerNeverPresent(t *testing.T) {
	specs := []model.InstrumentSpec{
		callSpec("031001", "台積電元大45購01", 100, 1, 120),
		callSpec("031003", "台積電富邦77購02", 100, 1, 120),
	}
	quoter := &fakeQuoter{
		snaps: map[string]model.MarketSnapshot{
			"031001": {Code: "031001", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 99999},
			"031003": {Code: "031003", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 100},
		},
		spots: map[string]float64{"2330": 105},
	}

	cfg := baseConfig()
	cfg.Strategy.ExcludeBroker = "元大"
	e := newTestEngine(t, cfg, specs, quoter)
	results := e.Screen(context.Background(), "2330")

	require.Len(t, results, 1)
	assert.Equal(t, "031003", results[0].Code)
	for _, r := range results {
		assert.NotContains(t, r.DisplayName, "元大")
	}
}

// TestScreen_UnresolvedQuery 无法解析的查询返回空结果而非错误
func TestScreen_UnresolvedQuery(t *testing.T) {
	e := newTestEngine(t, baseConfig(), nil, &fakeQuoter{})

	results := e.Screen(context.Background(), "不存在的标的")
	require.NotNil(t, results)
	assert.Empty(t, results)

	results = e.Screen(context.Background(), "")
	assert.Empty(t, results)
}

// TestScreen_SpotUnavailable 标的现价不可用时整体降级为空结果
func TestScreen_SpotUnavailable(t *testing.T) {
	spec := callSpec("031001", "台積電元大45購01", 100, 1, 120)
	snaps := map[string]model.MarketSnapshot{
		"031001": {Code: "031001", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 500},
	}

	// 查询出错
	e := newTestEngine(t, baseConfig(), []model.InstrumentSpec{spec},
		&fakeQuoter{snaps: snaps, spotErr: errors.New("网关超时")})
	assert.Empty(t, e.Screen(context.Background(), "2330"))

	// 查询成功但无价格
	e = newTestEngine(t, baseConfig(), []model.InstrumentSpec{spec},
		&fakeQuoter{snaps: snaps, spots: map[string]float64{}})
	assert.Empty(t, e.Screen(context.Background(), "2330"))
}

// TestScreen_MarketReadinessFilters 市场就绪各维度的剔除
func TestScreen_MarketReadinessFilters(t *testing.T) {
	cases := []struct {
		name   string
		snap   model.MarketSnapshot
		mutate func(*config.Config)
	}{
		{
			"成交量不足",
			model.MarketSnapshot{BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 10},
			func(c *config.Config) { c.Strategy.MinVolume = 50 },
		},
		{
			"价格低于下限",
			model.MarketSnapshot{BestAskPrice: 0.05, BestBidPrice: 0.04, TotalVolume: 500},
			nil,
		},
		{
			"价格高于上限",
			model.MarketSnapshot{BestAskPrice: 99, BestBidPrice: 98, TotalVolume: 500},
			nil,
		},
		{
			"价差比例过大",
			model.MarketSnapshot{BestAskPrice: 5.0, BestBidPrice: 4.0, TotalVolume: 500},
			func(c *config.Config) { c.Strategy.MaxSpreadPct = 5 },
		},
		{
			"绝对价差过大",
			model.MarketSnapshot{BestAskPrice: 5.0, BestBidPrice: 4.5, TotalVolume: 500},
			func(c *config.Config) { c.Strategy.MaxSpread = 0.2 },
		},
		{
			"无任何可用价格",
			model.MarketSnapshot{TotalVolume: 500},
			nil,
		},
	}

	for _, c := range cases {
		spec := callSpec("031001", "台積電元大45購01", 100, 1, 120)
		snap := c.snap
		snap.Code = spec.Code
		cfg := baseConfig()
		if c.mutate != nil {
			c.mutate(cfg)
		}
		e := newTestEngine(t, cfg, []model.InstrumentSpec{spec},
			&fakeQuoter{
				snaps: map[string]model.MarketSnapshot{spec.Code: snap},
				spots: map[string]float64{"2330": 105},
			})
		assert.Empty(t, e.Screen(context.Background(), "2330"), c.name)
	}
}

// TestScreen_MaturityFilter 剩余天数不足的权证在结构阶段剔除
func TestScreen_MaturityFilter(t *testing.T) {
	specs := []model.InstrumentSpec{
		callSpec("031001", "台積電元大45購01", 100, 1, 20),  // 20 天 < 30
		callSpec("031002", "台積電凱基88購05", 100, 1, 120), // 保留
	}
	quoter := &fakeQuoter{
		snaps: map[string]model.MarketSnapshot{
			"031001": {Code: "031001", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 500},
			"031002": {Code: "031002", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 500},
		},
		spots: map[string]float64{"2330": 105},
	}

	e := newTestEngine(t, baseConfig(), specs, quoter)
	results := e.Screen(context.Background(), "2330")

	require.Len(t, results, 1)
	assert.Equal(t, "031002", results[0].Code)
}

// TestScreen_SnapshotBatchFailure 单批快照失败只丢弃该批，其余照常
func TestScreen_SnapshotBatchFailure(t *testing.T) {
	specs := []model.InstrumentSpec{
		callSpec("031001", "台積電元大45購01", 100, 1, 120),
		callSpec("031002", "台積電凱基88購05", 100, 1, 120),
	}
	quoter := &fakeQuoter{
		snaps: map[string]model.MarketSnapshot{
			"031002": {Code: "031002", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 500},
		},
		failCodes: map[string]bool{"031001": true},
		spots:     map[string]float64{"2330": 105},
	}

	cfg := baseConfig()
	cfg.Gateway.SnapshotBatchSize = 1 // 每笔独立成批
	e := newTestEngine(t, cfg, specs, quoter)
	results := e.Screen(context.Background(), "2330")

	require.Len(t, results, 1)
	assert.Equal(t, "031002", results[0].Code)
}

// TestScreen_VolumeDescendingOrder 结果按成交量降序
func TestScreen_VolumeDescendingOrder(t *testing.T) {
	specs := []model.InstrumentSpec{
		callSpec("031001", "台積電元大45購01", 100, 1, 120),
		callSpec("031002", "台積電凱基88購05", 100, 1, 120),
		callSpec("031003", "台積電富邦77購02", 100, 1, 120),
	}
	quoter := &fakeQuoter{
		snaps: map[string]model.MarketSnapshot{
			"031001": {Code: "031001", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 100},
			"031002": {Code: "031002", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 900},
			"031003": {Code: "031003", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 500},
		},
		spots: map[string]float64{"2330": 105},
	}

	e := newTestEngine(t, baseConfig(), specs, quoter)
	results := e.Screen(context.Background(), "2330")

	require.Len(t, results, 3)
	assert.Equal(t, []string{"031002", "031003", "031001"},
		[]string{results[0].Code, results[1].Code, results[2].Code})
}

// TestScreen_ZeroMultiplierSafe 行使比例缺省不得引发除零
func TestScreen_ZeroMultiplierSafe(t *testing.T) {
	spec := callSpec("031001", "台積電元大45購01", 100, 0, 120)
	quoter := &fakeQuoter{
		snaps: map[string]model.MarketSnapshot{
			"031001": {Code: "031001", BestAskPrice: 5.0, BestBidPrice: 4.8, TotalVolume: 500},
		},
		spots: map[string]float64{"2330": 105},
	}

	e := newTestEngine(t, baseConfig(), []model.InstrumentSpec{spec}, quoter)
	results := e.Screen(context.Background(), "2330")

	// 比例按替代值 1 处理，与比例为 1 的情形一致
	require.Len(t, results, 1)
	assert.Greater(t, results[0].EffectiveLeverage, 0.0)
}

// TestRiskFilter_Idempotent 风险过滤对已过滤集合重复应用不再剔除
func TestRiskFilter_Idempotent(t *testing.T) {
	strategy := config.StrategyConfig{MinLeverage: 1, MaxLeverage: 20, MaxThetaPct: 2}
	spot := 105.0

	cands := []*candidate{
		{
			spec:     callSpec("031001", "台積電元大45購01", 100, 1, 120),
			snap:     model.MarketSnapshot{BestBidPrice: 4.8},
			effPrice: 5.0, days: 120,
			degenerate: true,
		},
		{
			spec:     callSpec("031002", "台積電凱基88購05", 110, 0.05, 120),
			snap:     model.MarketSnapshot{BestBidPrice: 0.78},
			effPrice: 0.8, days: 120,
			outcome: pricing.Outcome{Sigma: 0.75, Delta: 0.55, Theta: -25, Solved: true},
		},
		{
			// 隐含波动率未解且非退化: 必被剔除
			spec:     callSpec("031003", "台積電富邦77購02", 100, 1, 120),
			snap:     model.MarketSnapshot{BestBidPrice: 4.8},
			effPrice: 5.0, days: 120,
		},
	}

	once := riskFilter(cands, spot, strategy, 365)
	twice := riskFilter(once, spot, strategy, 365)

	require.Len(t, once, 2)
	assert.Equal(t, once, twice, "重复过滤应产生完全相同的集合")
}
