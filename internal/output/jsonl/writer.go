// Package jsonl 实现筛选结果的 JSONL 文件日志。
// 每次筛选写入一行完整的结果信封；写入频率由请求节奏决定（远低于
// 行情推送），同步编码加带缓冲文件与定期刷盘即可满足。
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer JSONL 结果写入器
// 并发安全；Append 同步编码写入缓冲，刷盘由定时器或显式 Flush 触发
type Writer struct {
	// path 输出文件路径
	path string
	// mu 保护文件与缓冲
	mu sync.Mutex
	// f 输出文件
	f *os.File
	// buf 文件写缓冲
	buf *bufio.Writer
	// done 刷盘循环停止信号
	done chan struct{}
	// closeOnce 保证只关闭一次
	closeOnce sync.Once
}

// NewWriter 创建 JSONL 写入器并启动定期刷盘
// 参数 path: 输出文件路径，目录不存在时自动创建
// 参数 flushInterval: 刷盘间隔，非正值关闭定期刷盘
func NewWriter(path string, flushInterval time.Duration) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开输出文件失败: %w", err)
	}

	w := &Writer{
		path: path,
		f:    f,
		buf:  bufio.NewWriter(f),
		done: make(chan struct{}),
	}

	if flushInterval > 0 {
		go w.flushLoop(flushInterval)
	}
	return w, nil
}

// Append 追加一条 JSONL 记录
func (w *Writer) Append(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("编码结果记录失败: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return fmt.Errorf("writer 已关闭")
	}
	if _, err := w.buf.Write(data); err != nil {
		return fmt.Errorf("写入结果记录失败: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("写入结果记录失败: %w", err)
	}
	return nil
}

// Flush 把缓冲内容刷入磁盘
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("刷盘失败: %w", err)
	}
	return nil
}

// flushLoop 定期刷盘循环
func (w *Writer) flushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			// 刷盘失败无处上报，留待 Close 时返回
			_ = w.Flush()
		}
	}
}

// Close 刷盘并关闭文件
// 幂等，可安全重复调用
func (w *Writer) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		defer w.mu.Unlock()

		if flushErr := w.buf.Flush(); flushErr != nil {
			err = fmt.Errorf("关闭前刷盘失败: %w", flushErr)
		}
		if closeErr := w.f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("关闭输出文件失败: %w", closeErr)
		}
		w.f = nil
	})
	return err
}
