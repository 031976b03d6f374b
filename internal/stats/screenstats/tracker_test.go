// Package screenstats 请求统计测试
package screenstats

import (
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTracker_Counters(t *testing.T) {
	tr := NewTracker(16)

	tr.Record(10*time.Millisecond, 3)
	tr.Record(20*time.Millisecond, 0)
	tr.Record(30*time.Millisecond, 5)

	s := tr.Snapshot()
	if s.RequestCount != 3 {
		t.Errorf("RequestCount = %d, 期望 3", s.RequestCount)
	}
	if s.EmptyCount != 1 {
		t.Errorf("EmptyCount = %d, 期望 1", s.EmptyCount)
	}
	if s.ResultCount != 8 {
		t.Errorf("ResultCount = %d, 期望 8", s.ResultCount)
	}
}

func TestTracker_EmptySnapshot(t *testing.T) {
	tr := NewTracker(16)
	s := tr.Snapshot()
	if s.RequestCount != 0 || s.P50Ms != 0 || s.P99Ms != 0 {
		t.Fatalf("空追踪器快照应为零值: %+v", s)
	}
}

// TestTracker_Quantiles_Property 分位数落于样本窗口的取值范围且有序
func TestTracker_Quantiles_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("P50 <= P90 <= P99 且均落在样本范围内", prop.ForAll(
		func(samplesMs []int64) bool {
			if len(samplesMs) == 0 {
				return true
			}

			tr := NewTracker(len(samplesMs))
			for _, ms := range samplesMs {
				tr.Record(time.Duration(ms)*time.Millisecond, 1)
			}
			s := tr.Snapshot()

			sorted := make([]int64, len(samplesMs))
			copy(sorted, samplesMs)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

			lo, hi := float64(sorted[0]), float64(sorted[len(sorted)-1])
			inRange := func(v float64) bool { return v >= lo && v <= hi }

			return s.P50Ms <= s.P90Ms && s.P90Ms <= s.P99Ms &&
				inRange(s.P50Ms) && inRange(s.P90Ms) && inRange(s.P99Ms)
		},
		gen.SliceOf(gen.Int64Range(1, 5000)),
	))

	properties.TestingRun(t)
}
