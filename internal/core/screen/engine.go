// Package screen 实现多阶段权证筛选流水线。
// 流水线: 标的解析 -> 结构预过滤 -> 行情快照 -> 市场就绪过滤 ->
// 隐含波动率与希腊值 -> 风险指标过滤 -> 成交量降序排序。
// 任何阶段的失败都降级为空结果或缩小的候选集，不向上传播错误。
package screen

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"warrant-screener/internal/config"
	"warrant-screener/internal/core/model"
	"warrant-screener/internal/core/pricing"
	"warrant-screener/internal/core/store"
)

// fallbackMultiplier 规格表缺行使比例时的替代值
// 按 1 处理等价于把权证价直接视为单位价，避免除零
const fallbackMultiplier = 1.0

// Quoter 行情数据源
// 由券商网关客户端实现；测试中以内存假实现替代
type Quoter interface {
	// Snapshots 批量获取行情快照，返回按代号索引的快照集
	// 部分代号缺席是正常情形（如暂停交易）
	Snapshots(ctx context.Context, codes []string) (map[string]model.MarketSnapshot, error)
	// LastPrice 获取标的现价
	// 返回: 价格、是否可用、错误
	LastPrice(ctx context.Context, code string) (float64, bool, error)
}

// Engine 筛选引擎
// 单请求串行执行，不持跨请求状态，可安全重建
type Engine struct {
	// index 合约索引
	index *store.ContractIndex
	// quoter 行情数据源
	quoter Quoter
	// solver 隐含波动率求解器
	solver *pricing.Solver
	// strategy 筛选阈值
	strategy config.StrategyConfig
	// batchSize 快照批次上限
	batchSize int
	// dayCount 年化天数基准
	dayCount int
	// now 当前时间来源，测试中可替换
	now func() time.Time
	// logger 日志记录器
	logger *zap.Logger
}

// New 创建筛选引擎
// 参数 index: 合约索引
// 参数 quoter: 行情数据源
// 参数 cfg: 完整应用配置（取策略、定价与网关批次参数）
func New(index *store.ContractIndex, quoter Quoter, cfg *config.Config, logger *zap.Logger) *Engine {
	return &Engine{
		index:     index,
		quoter:    quoter,
		solver:    pricing.NewSolver(cfg.Pricing.RiskFreeRate, cfg.Pricing.SigmaLo, cfg.Pricing.SigmaHi),
		strategy:  cfg.Strategy,
		batchSize: cfg.Gateway.SnapshotBatchSize,
		dayCount:  cfg.Pricing.DayCount,
		now:       time.Now,
		logger:    logger.Named("screen"),
	}
}

// candidate 流水线内部的单笔候选状态
type candidate struct {
	spec model.InstrumentSpec
	snap model.MarketSnapshot
	// effPrice 有效市场价格
	effPrice float64
	// days 距到期日天数
	days int
	// outcome 定价结果
	outcome pricing.Outcome
	// degenerate 深度价内退化: 市价不含时间价值（<= 内在价值），
	// 隐含波动率无解但合约本身有效，按内在价值口径计算指标
	degenerate bool
}

// Screen 执行一次完整筛选
// 参数 query: 自由文字查询（标的代号、全名或名称片段）
// 返回: 按成交量降序的合格结果集；任何失败均表现为空结果
func (e *Engine) Screen(ctx context.Context, query string) []model.ScreeningResult {
	started := e.now()

	// 阶段 1: 标的解析
	underlying, ok := e.index.Resolve(query)
	if !ok {
		e.logger.Info("查询无法解析为标的", zap.String("query", query))
		return []model.ScreeningResult{}
	}

	// 阶段 2: 结构预过滤（名称匹配 + 券商排除 + 剩余天数）
	today := started
	specs := e.structuralFilter(e.index.CandidatesFor(underlying, e.strategy.ExcludeBroker), today)
	if len(specs) == 0 {
		e.logger.Info("结构预过滤后无候选",
			zap.String("query", query),
			zap.String("underlying", underlying.Code))
		return []model.ScreeningResult{}
	}

	// 阶段 3: 标的现价
	spot, ok, err := e.quoter.LastPrice(ctx, underlying.Code)
	if err != nil || !ok || spot <= 0 {
		e.logger.Warn("标的现价不可用",
			zap.String("underlying", underlying.Code),
			zap.Error(err))
		return []model.ScreeningResult{}
	}

	// 阶段 4: 批量行情快照 + 市场就绪过滤
	cands := e.marketFilter(ctx, specs, today)

	// 阶段 5: 定价（隐含波动率与希腊值）
	e.price(spot, cands)

	// 阶段 6: 风险指标过滤
	cands = riskFilter(cands, spot, e.strategy, e.dayCount)

	// 阶段 7: 组装并按成交量降序排序
	results := e.assemble(spot, cands)

	e.logger.Info("筛选完成",
		zap.String("query", query),
		zap.String("underlying", underlying.Code),
		zap.Int("structural", len(specs)),
		zap.Int("qualified", len(results)),
		zap.Duration("elapsed", e.now().Sub(started)))
	return results
}

// structuralFilter 剔除剩余天数不足的候选
func (e *Engine) structuralFilter(specs []model.InstrumentSpec, today time.Time) []model.InstrumentSpec {
	kept := make([]model.InstrumentSpec, 0, len(specs))
	for _, s := range specs {
		if s.DaysToMaturity(today) < e.strategy.MinDaysToMaturity {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// marketFilter 获取快照并做市场就绪过滤
// 快照按批次请求，单批失败只丢弃该批候选，不中断整体流程
func (e *Engine) marketFilter(ctx context.Context, specs []model.InstrumentSpec, today time.Time) []*candidate {
	snaps := make(map[string]model.MarketSnapshot, len(specs))
	codes := make([]string, len(specs))
	for i, s := range specs {
		codes[i] = s.Code
	}

	for start := 0; start < len(codes); start += e.batchSize {
		end := start + e.batchSize
		if end > len(codes) {
			end = len(codes)
		}
		batch, err := e.quoter.Snapshots(ctx, codes[start:end])
		if err != nil {
			e.logger.Warn("快照批次获取失败，丢弃该批候选",
				zap.Int("offset", start),
				zap.Int("size", end-start),
				zap.Error(err))
			continue
		}
		for code, snap := range batch {
			snaps[code] = snap
		}
	}

	cands := make([]*candidate, 0, len(specs))
	for _, s := range specs {
		snap, ok := snaps[s.Code]
		if !ok {
			continue
		}
		effPrice, ok := snap.EffectivePrice()
		if !ok {
			continue
		}
		if !e.marketReady(&snap, effPrice) {
			continue
		}
		cands = append(cands, &candidate{
			spec:     s,
			snap:     snap,
			effPrice: effPrice,
			days:     s.DaysToMaturity(today),
		})
	}
	return cands
}

// marketReady 单笔市场就绪判定: 价格区间、成交量、买卖价差
func (e *Engine) marketReady(snap *model.MarketSnapshot, effPrice float64) bool {
	if e.strategy.MinPrice > 0 && effPrice < e.strategy.MinPrice {
		return false
	}
	if e.strategy.MaxPrice > 0 && effPrice > e.strategy.MaxPrice {
		return false
	}
	if snap.TotalVolume < int64(e.strategy.MinVolume) {
		return false
	}
	if e.strategy.MaxSpread > 0 {
		spread, ok := snap.Spread()
		if !ok || spread > e.strategy.MaxSpread {
			return false
		}
	}
	if e.strategy.MaxSpreadPct > 0 {
		pct, ok := snap.SpreadPct()
		if !ok || pct > e.strategy.MaxSpreadPct {
			return false
		}
	}
	return true
}

// price 对就绪候选批量求隐含波动率与希腊值
// 市价不高于内在价值的价内合约标记为退化情形: 隐含波动率模型
// 不适用，但合约仍按内在价值口径参与后续过滤（市价为内在价值的
// 深度价内权证是合法行情，不是数据错误）
func (e *Engine) price(spot float64, cands []*candidate) {
	items := make([]pricing.BatchItem, len(cands))
	for i, c := range cands {
		items[i] = pricing.BatchItem{
			Strike:    c.spec.StrikePrice,
			TimeYears: float64(c.days) / float64(e.dayCount),
			UnitPrice: c.effPrice / effectiveMultiplier(&c.spec),
			Type:      c.spec.OptionType,
		}
	}
	outs := e.solver.Evaluate(spot, items)
	for i, c := range cands {
		c.outcome = outs[i]
		if !c.outcome.Solved {
			iv := pricing.Intrinsic(spot, c.spec.StrikePrice, c.spec.OptionType)
			c.degenerate = iv > 0 && items[i].UnitPrice <= iv+pricing.TimeValueEpsilon
		}
	}
}

// riskFilter 风险指标过滤
// 纯函数: 不触发 IO，不改写候选，结果只取决于输入。对已过滤的
// 集合重复应用不再剔除任何候选（幂等）
func riskFilter(cands []*candidate, spot float64, strategy config.StrategyConfig, dayCount int) []*candidate {
	kept := make([]*candidate, 0, len(cands))
	for _, c := range cands {
		if !c.outcome.Solved && !c.degenerate {
			continue
		}
		lev := leverage(c, spot)
		if strategy.MinLeverage > 0 && lev < strategy.MinLeverage {
			continue
		}
		if strategy.MaxLeverage > 0 && lev > strategy.MaxLeverage {
			continue
		}
		if strategy.MaxThetaPct > 0 {
			decay := dailyDecayPct(c, dayCount)
			if math.Abs(decay) > strategy.MaxThetaPct {
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept
}

// effectiveMultiplier 取可靠行使比例，缺省时以替代值兜底
func effectiveMultiplier(spec *model.InstrumentSpec) float64 {
	if spec.HasMultiplier() {
		return spec.Multiplier
	}
	return fallbackMultiplier
}

// leverage 实质杠杆
// 常规情形 = 现价 x |Delta| x 行使比例 / 权证价；
// 退化情形 Delta 无定义，按履约价口径 = 履约价 x 行使比例 / 权证价
func leverage(c *candidate, spot float64) float64 {
	mult := effectiveMultiplier(&c.spec)
	if c.degenerate {
		return c.spec.StrikePrice * mult / c.effPrice
	}
	return spot * math.Abs(c.outcome.Delta) * mult / c.effPrice
}

// dailyDecayPct 每日时间价值损耗占比（百分比）
// 分子为单日 Theta 折算回权证价尺度，分母优先取买一价（持有人
// 可兑现的价格），买一缺席时退回有效价格。退化情形无时间价值，
// 损耗为 0
func dailyDecayPct(c *candidate, dayCount int) float64 {
	if c.degenerate {
		return 0
	}
	denom := c.snap.BestBidPrice
	if denom <= 0 {
		denom = c.effPrice
	}
	daily := c.outcome.Theta / float64(dayCount) * effectiveMultiplier(&c.spec)
	return daily / denom * 100
}

// assemble 组装结果并按成交量降序排序
// 等量时保持候选评估顺序（稳定排序）
func (e *Engine) assemble(spot float64, cands []*candidate) []model.ScreeningResult {
	results := make([]model.ScreeningResult, 0, len(cands))
	for _, c := range cands {
		results = append(results, model.ScreeningResult{
			Code:              c.spec.Code,
			DisplayName:       c.spec.DisplayName,
			EffectivePrice:    c.effPrice,
			BestBid:           c.snap.BestBidPrice,
			BestAsk:           c.snap.BestAskPrice,
			BestBidVolume:     c.snap.BestBidVolume,
			BestAskVolume:     c.snap.BestAskVolume,
			TotalVolume:       c.snap.TotalVolume,
			DaysToMaturity:    c.days,
			StrikePrice:       c.spec.StrikePrice,
			ImpliedVolPct:     c.outcome.Sigma * 100,
			EffectiveLeverage: leverage(c, spot),
			DailyDecayPct:     dailyDecayPct(c, e.dayCount),
			Broker:            BrokerLabel(c.spec.DisplayName),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalVolume > results[j].TotalVolume
	})
	return results
}
