// Package backoff 退避模块测试
package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestBackoff_ExponentialGrowth(t *testing.T) {
	b := New(time.Second, 30*time.Second, 0)

	want := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // 封顶
		30 * time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Fatalf("第 %d 次 Next()=%v, want %v", i, got, w)
		}
	}
}

func TestBackoff_Reset(t *testing.T) {
	b := New(time.Second, 30*time.Second, 0)
	b.Next()
	b.Next()
	b.Reset()
	if got := b.Next(); got != time.Second {
		t.Fatalf("Reset 后 Next()=%v, want 1s", got)
	}
}

func TestBackoff_Wait_Cancelled(t *testing.T) {
	b := New(time.Hour, time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())
	go cancel()
	if err := b.Wait(ctx); err == nil {
		t.Fatalf("上下文取消后 Wait 应返回错误")
	}
}

func TestBackoff_JitterBounds_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("抖动后的等待时间在 [1-j, 1+j] 倍区间内", prop.ForAll(
		func(jitter float64, steps int) bool {
			b := New(time.Second, 30*time.Second, jitter)
			for i := 0; i < steps; i++ {
				raw := time.Second << i
				if raw > 30*time.Second || raw < time.Second {
					raw = 30 * time.Second
				}
				got := b.Next()
				lo := time.Duration(float64(raw) * (1 - jitter))
				hi := time.Duration(float64(raw) * (1 + jitter))
				if got < lo || got > hi {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 0.5),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
