package store

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"warrant-screener/internal/core/model"
	"warrant-screener/internal/metadata"
)

// Underlying 已解析的标的
type Underlying struct {
	// Code 标的代号，如 2330；大盘为哨兵代号 001
	Code string
	// Name 标的全名，如 世芯-KY
	Name string
	// ScreenName 筛选名（剥离后缀后），用于权证简称的子串匹配
	ScreenName string
}

// indexSynonyms 大盘指数的保留同义词
// 命中任一同义词时解析为哨兵标的
var indexSynonyms = map[string]bool{
	"大盤":    true,
	"加權指數":  true,
	"臺股指數":  true,
	"台股指數":  true,
	"TAIEX": true,
}

// indexUnderlying 大盘指数的哨兵标的
// 指数权证简称惯例含「臺指」
var indexUnderlying = Underlying{
	Code:       model.IndexUnderlyingCode,
	Name:       "加權指數",
	ScreenName: "臺指",
}

// ListedContract 交易所即时清单中的一笔合约
type ListedContract struct {
	// Code 合约代号
	Code string
	// Name 合约简称
	Name string
}

// Listing 交易所即时清单
// 由券商网关在启动/刷新时获取
type Listing struct {
	// Stocks 股票清单（4 位代号）
	Stocks []ListedContract
	// Warrants 权证清单（6 位代号，名称含購/售）
	Warrants []ListedContract
}

// ContractIndex 合约索引
// 交叉比对即时清单与规格库: 候选集取两者交集，标的索引由股票清单与
// 内建种子字典合并而来。构建是幂等的，可通过 Rebuild 重跑以刷新清单；
// 规格库中暂时缺席清单的权证只是不进入本轮候选集，规格本身不受影响。
type ContractIndex struct {
	// store 规格库（只读引用）
	store *SpecStore
	// logger 日志记录器
	logger *zap.Logger

	// byCode 标的代号 -> 标的
	byCode map[string]Underlying
	// byName 标的全名 -> 标的
	byName map[string]Underlying
	// byScreenName 筛选名 -> 标的（用于子串匹配，已按确定性顺序排列）
	byScreenName []Underlying
	// candidates 本轮候选权证（同时存在于清单与规格库），保持评估顺序
	candidates []model.InstrumentSpec
}

// NewContractIndex 创建合约索引
// 参数 store: 规格库
// 参数 seed: 内建标的种子字典（代号 -> 全名），清单降级时仍可解析热门标的
// 初始状态为空索引，需调用 Rebuild 注入清单
func NewContractIndex(store *SpecStore, seed map[string]string, logger *zap.Logger) *ContractIndex {
	ix := &ContractIndex{
		store:  store,
		logger: logger.Named("index"),
	}
	ix.rebuild(&Listing{}, seed)
	return ix
}

// Rebuild 以新的即时清单重建索引
// 幂等操作；必须在无请求处理的独立阶段调用（单消费者主循环保证）
func (ix *ContractIndex) Rebuild(listing *Listing, seed map[string]string) {
	ix.rebuild(listing, seed)
	ix.logger.Info("合约索引重建完成",
		zap.Int("underlyings", len(ix.byCode)),
		zap.Int("candidates", len(ix.candidates)))
}

func (ix *ContractIndex) rebuild(listing *Listing, seed map[string]string) {
	byCode := make(map[string]Underlying, len(seed)+len(listing.Stocks))

	// 先写入种子字典，再用即时清单覆盖/扩充
	for code, name := range seed {
		byCode[code] = makeUnderlying(code, name)
	}
	for _, c := range listing.Stocks {
		if c.Code == "" || c.Name == "" {
			continue
		}
		byCode[c.Code] = makeUnderlying(c.Code, c.Name)
	}

	byName := make(map[string]Underlying, len(byCode))
	screenList := make([]Underlying, 0, len(byCode))
	for _, u := range byCode {
		byName[u.Name] = u
		if u.ScreenName != "" {
			screenList = append(screenList, u)
		}
	}

	// 子串匹配采用确定性顺序: 筛选名长度升序（精确命中优先于更长的包含名），
	// 同长按代号升序破平，消除对 map 迭代顺序的依赖
	sort.Slice(screenList, func(i, j int) bool {
		if len(screenList[i].ScreenName) != len(screenList[j].ScreenName) {
			return len(screenList[i].ScreenName) < len(screenList[j].ScreenName)
		}
		return screenList[i].Code < screenList[j].Code
	})

	// 候选集: 清单与规格库的交集，保持清单顺序（稳定的评估顺序）
	candidates := make([]model.InstrumentSpec, 0, len(listing.Warrants))
	for _, w := range listing.Warrants {
		code := metadata.NormalizeCode(w.Code)
		if spec, ok := ix.store.Lookup(code); ok {
			candidates = append(candidates, spec)
		}
	}

	ix.byCode = byCode
	ix.byName = byName
	ix.byScreenName = screenList
	ix.candidates = candidates
}

// Resolve 将自由文字查询解析为标的
// 解析顺序（首中即返回）:
//  1. 大盘同义词 -> 哨兵标的
//  2. 标的代号精确匹配
//  3. 标的全名精确匹配
//  4. 子串匹配: 查询文字出现在某筛选名中，精确命中优先，其余按
//     筛选名长度升序、代号升序的确定性顺序取首个
//
// 返回: 标的与是否命中；未命中是「无结果」语义而非错误
func (ix *ContractIndex) Resolve(query string) (Underlying, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Underlying{}, false
	}

	if indexSynonyms[query] {
		return indexUnderlying, true
	}

	if u, ok := ix.byCode[query]; ok {
		return u, true
	}

	if u, ok := ix.byName[query]; ok {
		return u, true
	}

	cleaned := metadata.CleanUnderlyingName(query)
	if cleaned == "" {
		return Underlying{}, false
	}
	for _, u := range ix.byScreenName {
		if strings.Contains(u.ScreenName, cleaned) {
			return u, true
		}
	}

	return Underlying{}, false
}

// Candidates 获取本轮候选权证全集
// 返回的切片应视为只读
func (ix *ContractIndex) Candidates() []model.InstrumentSpec {
	return ix.candidates
}

// CandidatesFor 获取指定标的的结构候选集
// 条件: 权证简称含标的筛选名，且不含被排除的券商关键字
// 这是定价阶段前的预过滤，用于约束数值计算的开销
func (ix *ContractIndex) CandidatesFor(u Underlying, excludeBroker string) []model.InstrumentSpec {
	if u.ScreenName == "" {
		return nil
	}

	matched := make([]model.InstrumentSpec, 0, 64)
	for _, spec := range ix.candidates {
		if !strings.Contains(spec.DisplayName, u.ScreenName) {
			continue
		}
		if excludeBroker != "" && strings.Contains(spec.DisplayName, excludeBroker) {
			continue
		}
		matched = append(matched, spec)
	}
	return matched
}

// UnderlyingCount 获取标的索引大小
func (ix *ContractIndex) UnderlyingCount() int {
	return len(ix.byCode)
}

// makeUnderlying 构造标的并计算筛选名
func makeUnderlying(code, name string) Underlying {
	return Underlying{
		Code:       code,
		Name:       name,
		ScreenName: metadata.CleanUnderlyingName(name),
	}
}
