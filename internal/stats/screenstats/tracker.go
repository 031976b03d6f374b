// Package screenstats 实现筛选请求的处理时延与结果统计。
// 基于滚动窗口的分位数统计，供主循环定期输出运行指标。
package screenstats

import (
	"sort"
	"sync"
	"time"
)

// defaultWindowSize 滚动窗口默认样本数
const defaultWindowSize = 256

// Stats 请求统计快照
type Stats struct {
	// RequestCount 累计请求数
	RequestCount int64
	// EmptyCount 空结果请求数
	EmptyCount int64
	// ResultCount 累计输出结果笔数
	ResultCount int64

	// P50Ms 处理时延 P50（毫秒）
	P50Ms float64
	// P90Ms 处理时延 P90（毫秒）
	P90Ms float64
	// P99Ms 处理时延 P99（毫秒）
	P99Ms float64
}

type rollingWindow struct {
	size  int
	buf   []int64
	pos   int
	count int64
	full  bool

	mu sync.Mutex
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{size: size, buf: make([]int64, 0, size)}
}

func (w *rollingWindow) add(v int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.count++
	if w.size <= 0 {
		return
	}

	if !w.full {
		w.buf = append(w.buf, v)
		if len(w.buf) == w.size {
			w.full = true
			w.pos = 0
		}
		return
	}

	w.buf[w.pos] = v
	w.pos++
	if w.pos >= w.size {
		w.pos = 0
	}
}

func (w *rollingWindow) snapshotQuantiles(qs ...float64) (count int64, values []int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	count = w.count
	if len(w.buf) == 0 {
		return count, make([]int64, len(qs))
	}

	tmp := make([]int64, len(w.buf))
	copy(tmp, w.buf)
	sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })

	values = make([]int64, len(qs))
	n := len(tmp)
	for i, q := range qs {
		if q <= 0 {
			values[i] = tmp[0]
			continue
		}
		if q >= 1 {
			values[i] = tmp[n-1]
			continue
		}
		idx := int(float64(n-1) * q)
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		values[i] = tmp[idx]
	}
	return count, values
}

// Tracker 筛选请求统计追踪器
type Tracker struct {
	// window 处理时延滚动窗口（微秒样本）
	window *rollingWindow

	// mu 保护计数器
	mu sync.Mutex
	// emptyCount 空结果请求数
	emptyCount int64
	// resultCount 累计输出结果笔数
	resultCount int64
}

// NewTracker 创建统计追踪器
// 参数 windowSize: 滚动窗口样本数，非正值取默认值
func NewTracker(windowSize int) *Tracker {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	return &Tracker{window: newRollingWindow(windowSize)}
}

// Record 记录一次完成的筛选请求
// 参数 elapsed: 处理耗时
// 参数 resultCount: 本次输出的结果笔数
func (t *Tracker) Record(elapsed time.Duration, resultCount int) {
	t.window.add(elapsed.Microseconds())

	t.mu.Lock()
	if resultCount == 0 {
		t.emptyCount++
	}
	t.resultCount += int64(resultCount)
	t.mu.Unlock()
}

// Snapshot 获取统计快照
func (t *Tracker) Snapshot() Stats {
	count, qs := t.window.snapshotQuantiles(0.50, 0.90, 0.99)

	t.mu.Lock()
	empty := t.emptyCount
	results := t.resultCount
	t.mu.Unlock()

	return Stats{
		RequestCount: count,
		EmptyCount:   empty,
		ResultCount:  results,
		P50Ms:        float64(qs[0]) / 1000,
		P90Ms:        float64(qs[1]) / 1000,
		P99Ms:        float64(qs[2]) / 1000,
	}
}
