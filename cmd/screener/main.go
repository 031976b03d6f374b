// Package main 是权证筛选引擎的入口点。
// 启动时从规格档构建规格库，向行情网关获取全市场清单构建合约索引，
// 之后监听指令通道: 每收到一笔搜索请求即执行一次完整筛选流水线，
// 把按成交量降序的合格权证发布回指令通道并追加到本地结果日志。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"warrant-screener/internal/command"
	"warrant-screener/internal/config"
	"warrant-screener/internal/core/model"
	"warrant-screener/internal/core/screen"
	"warrant-screener/internal/core/store"
	"warrant-screener/internal/exchange/sinopac"
	"warrant-screener/internal/metadata"
	"warrant-screener/internal/output/jsonl"
	"warrant-screener/internal/stats/screenstats"
)

// statsLogInterval 运行统计输出间隔
const statsLogInterval = time.Minute

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 捕获 SIGINT/SIGTERM，触发优雅退出
	sigCh := make(chan os.Signal, 2)
	ossignal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("收到退出信号，开始优雅关闭")
		cancel()
	}()

	// 规格库是启动的硬前提: 规格档缺失或无可用行时进程不得启动
	specs, err := metadata.LoadSpecs(cfg.SpecFeed.Path, logger)
	if err != nil {
		logger.Error("加载权证规格档失败", zap.Error(err))
		os.Exit(1)
	}
	specStore := store.NewSpecStore(specs)
	logger.Info("规格库构建完成", zap.Int("specs", specStore.Len()))

	gateway := sinopac.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.GatewayTimeout(), logger)

	// 启动时构建合约索引；清单获取失败时依赖种子字典降级运行
	index := store.NewContractIndex(specStore, store.DefaultUnderlyingSeed, logger)
	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	listing, err := gateway.FetchContracts(startCtx)
	startCancel()
	if err != nil {
		logger.Warn("合约清单获取失败，以种子字典降级启动", zap.Error(err))
	} else {
		index.Rebuild(listing, store.DefaultUnderlyingSeed)
	}
	if index.UnderlyingCount() == 0 {
		logger.Error("标的索引为空，无法解析任何查询")
		os.Exit(1)
	}

	engine := screen.New(index, gateway, cfg, logger)

	var resultsWriter *jsonl.Writer
	if cfg.Output.ResultsEnabled {
		resultsWriter, err = jsonl.NewWriter(fmt.Sprintf("%s/results.jsonl", cfg.Output.Dir), cfg.Output.FlushInterval())
		if err != nil {
			logger.Error("创建结果日志失败", zap.Error(err))
			os.Exit(1)
		}
	}

	cmdClient := command.NewClient(&cfg.Command, logger)
	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	err = cmdClient.Connect(connectCtx)
	connectCancel()
	if err != nil {
		logger.Error("指令通道连接失败", zap.Error(err))
		os.Exit(1)
	}
	go cmdClient.Run(ctx)

	tracker := screenstats.NewTracker(0)

	runMainLoop(ctx, logger, cfg, engine, index, gateway, cmdClient, resultsWriter, tracker)

	// 优雅关闭（10s 超时）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cmdClient.Close()
		if resultsWriter != nil {
			_ = resultsWriter.Close()
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("关闭超时，强制退出")
	case <-done:
		logger.Info("关闭完成")
	}
}

// runMainLoop 单消费者主循环
// 一次只处理一笔搜索请求，处理期间不接受下一笔（保持单请求在途）；
// 清单定期重建与请求处理在同一循环内交错，天然互斥
func runMainLoop(
	ctx context.Context,
	logger *zap.Logger,
	cfg *config.Config,
	engine *screen.Engine,
	index *store.ContractIndex,
	gateway *sinopac.Client,
	cmdClient *command.Client,
	resultsWriter *jsonl.Writer,
	tracker *screenstats.Tracker,
) {
	var rebuildCh <-chan time.Time
	if interval := cfg.Gateway.RebuildInterval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		rebuildCh = ticker.C
	}

	statsTicker := time.NewTicker(statsLogInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case req, ok := <-cmdClient.RequestCh():
			if !ok {
				return
			}
			handleRequest(ctx, logger, engine, cmdClient, resultsWriter, tracker, req)

		case <-rebuildCh:
			rebuildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			listing, err := gateway.FetchContracts(rebuildCtx)
			cancel()
			if err != nil {
				logger.Warn("清单定期重建失败，沿用现有索引", zap.Error(err))
				continue
			}
			index.Rebuild(listing, store.DefaultUnderlyingSeed)

		case <-statsTicker.C:
			s := tracker.Snapshot()
			if s.RequestCount == 0 {
				continue
			}
			logger.Info("运行统计",
				zap.Int64("requests", s.RequestCount),
				zap.Int64("empty", s.EmptyCount),
				zap.Int64("results", s.ResultCount),
				zap.Float64("p50_ms", s.P50Ms),
				zap.Float64("p90_ms", s.P90Ms),
				zap.Float64("p99_ms", s.P99Ms))
		}
	}
}

// handleRequest 处理一笔搜索请求
func handleRequest(
	ctx context.Context,
	logger *zap.Logger,
	engine *screen.Engine,
	cmdClient *command.Client,
	resultsWriter *jsonl.Writer,
	tracker *screenstats.Tracker,
	req *command.Request,
) {
	started := time.Now()
	logger.Info("收到搜索请求",
		zap.String("id", req.ID),
		zap.String("query", req.Query))

	results := engine.Screen(ctx, req.Query)

	env := &model.ResultEnvelope{
		RequestID: req.ID,
		Query:     req.Query,
		Count:     len(results),
		UpdatedAt: time.Now(),
		Results:   results,
	}

	if err := cmdClient.Publish(env); err != nil {
		logger.Warn("发布结果失败", zap.Error(err), zap.String("id", req.ID))
	}
	if resultsWriter != nil {
		if err := resultsWriter.Append(env); err != nil {
			logger.Warn("写入结果日志失败", zap.Error(err))
		}
	}

	tracker.Record(time.Since(started), len(results))
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
