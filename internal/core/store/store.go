// Package store 维护规格库与合约索引。
// 两者均在启动时构建一次，请求处理期间只读；刷新通过显式的 Rebuild
// 在独立阶段完成（主循环单 goroutine，天然与请求处理互斥）。
package store

import (
	"warrant-screener/internal/core/model"
)

// SpecStore 权证规格库
// 以正规化代号为键的只读映射，构建后不再变更
type SpecStore struct {
	// specs 代号 -> 规格
	specs map[string]model.InstrumentSpec
}

// NewSpecStore 从规格列表构建规格库
// 重复代号保留首见项
func NewSpecStore(specs []model.InstrumentSpec) *SpecStore {
	m := make(map[string]model.InstrumentSpec, len(specs))
	for _, s := range specs {
		if _, ok := m[s.Code]; ok {
			continue
		}
		m[s.Code] = s
	}
	return &SpecStore{specs: m}
}

// Lookup 按代号查找规格
// 返回: 规格与是否存在
func (s *SpecStore) Lookup(code string) (model.InstrumentSpec, bool) {
	spec, ok := s.specs[code]
	return spec, ok
}

// Len 获取规格总数
func (s *SpecStore) Len() int {
	return len(s.specs)
}
