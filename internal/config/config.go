// Package config 负责加载和验证 YAML 配置文件。
// 提供应用程序所需的所有配置项，包括规格档来源、券商网关连接、筛选阈值、定价参数等。
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置根结构
// 包含所有子模块的配置项
type Config struct {
	// App 应用基础配置
	App AppConfig `yaml:"app"`
	// SpecFeed 权证规格档配置
	SpecFeed SpecFeedConfig `yaml:"spec_feed"`
	// Gateway 券商行情网关配置
	Gateway GatewayConfig `yaml:"gateway"`
	// Command 查询指令通道配置
	Command CommandConfig `yaml:"command"`
	// Strategy 筛选阈值配置
	Strategy StrategyConfig `yaml:"strategy"`
	// Pricing 定价引擎参数配置
	Pricing PricingConfig `yaml:"pricing"`
	// Output 输出配置
	Output OutputConfig `yaml:"output"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	// Name 应用名称，用于日志标识
	Name string `yaml:"name"`
	// LogLevel 日志级别: debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// SpecFeedConfig 权证规格档配置
type SpecFeedConfig struct {
	// Path 规格 CSV 文件路径
	Path string `yaml:"path"`
}

// GatewayConfig 券商行情网关配置
type GatewayConfig struct {
	// BaseURL 网关 HTTP API 基础地址
	BaseURL string `yaml:"base_url"`
	// TimeoutMs HTTP 请求超时时间（毫秒）
	TimeoutMs int `yaml:"timeout_ms"`
	// SnapshotBatchSize 行情快照单次请求的合约数上限
	SnapshotBatchSize int `yaml:"snapshot_batch_size"`
	// RebuildIntervalMin 合约清单定期重建间隔（分钟），0 表示只在启动时构建
	RebuildIntervalMin int `yaml:"rebuild_interval_min"`
}

// CommandConfig 查询指令通道配置
type CommandConfig struct {
	// URL 指令 WebSocket 连接地址
	URL string `yaml:"url"`
	// PingIntervalMs 心跳间隔（毫秒）
	PingIntervalMs int `yaml:"ping_interval_ms"`
	// PongTimeoutMs 心跳响应超时（毫秒）
	PongTimeoutMs int `yaml:"pong_timeout_ms"`
}

// StrategyConfig 筛选阈值配置
// 各阈值为零值时表示该维度不过滤（除注明者外）
type StrategyConfig struct {
	// MinDaysToMaturity 最短剩余天数，低于此值的权证被剔除
	MinDaysToMaturity int `yaml:"min_days_to_maturity"`
	// MinLeverage 有效杠杆下限
	MinLeverage float64 `yaml:"min_leverage"`
	// MaxLeverage 有效杠杆上限
	MaxLeverage float64 `yaml:"max_leverage"`
	// MaxThetaPct 每日时间价值流逝占比上限（百分比）
	MaxThetaPct float64 `yaml:"max_theta_pct"`
	// MinVolume 最低成交量（张）
	MinVolume int `yaml:"min_volume"`
	// MinPrice 权证价格下限（元）
	MinPrice float64 `yaml:"min_price"`
	// MaxPrice 权证价格上限（元）
	MaxPrice float64 `yaml:"max_price"`
	// MaxSpread 买卖价差绝对值上限（元），0 表示不按绝对值过滤
	MaxSpread float64 `yaml:"max_spread"`
	// MaxSpreadPct 买卖价差相对买价的百分比上限
	MaxSpreadPct float64 `yaml:"max_spread_pct"`
	// ExcludeBroker 排除的发行券商关键字，如「元大」
	ExcludeBroker string `yaml:"exclude_broker"`
}

// PricingConfig 定价引擎参数配置
type PricingConfig struct {
	// RiskFreeRate 无风险利率（年化）
	RiskFreeRate float64 `yaml:"risk_free_rate"`
	// SigmaLo 隐含波动率搜索下界
	SigmaLo float64 `yaml:"sigma_lo"`
	// SigmaHi 隐含波动率搜索上界
	SigmaHi float64 `yaml:"sigma_hi"`
	// DayCount 年化天数基准（日历日惯例为 365）
	DayCount int `yaml:"day_count"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// Dir 输出目录
	Dir string `yaml:"dir"`
	// ResultsEnabled 是否输出筛选结果文件
	ResultsEnabled bool `yaml:"results_enabled"`
	// FlushIntervalMs 结果文件刷盘间隔（毫秒）
	FlushIntervalMs int `yaml:"flush_interval_ms"`
}

// Load 从文件加载配置并验证
// 参数 path: 配置文件路径
// 返回: 解析后的配置对象，若失败则返回错误
func Load(path string) (*Config, error) {
	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析 YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 设置默认值
	cfg.setDefaults()

	// 验证配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置配置默认值
func (c *Config) setDefaults() {
	// 应用默认值
	if c.App.Name == "" {
		c.App.Name = "warrant-screener"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}

	// 网关默认值
	if c.Gateway.TimeoutMs == 0 {
		c.Gateway.TimeoutMs = 10000 // 10 秒
	}
	if c.Gateway.SnapshotBatchSize == 0 {
		c.Gateway.SnapshotBatchSize = 200 // 券商 API 单次上限
	}

	// 指令通道默认值
	if c.Command.PingIntervalMs == 0 {
		c.Command.PingIntervalMs = 25000 // 25 秒
	}
	if c.Command.PongTimeoutMs == 0 {
		c.Command.PongTimeoutMs = 10000 // 10 秒
	}

	// 定价默认值
	if c.Pricing.RiskFreeRate == 0 {
		c.Pricing.RiskFreeRate = 0.015
	}
	if c.Pricing.SigmaLo == 0 {
		c.Pricing.SigmaLo = 0.01
	}
	if c.Pricing.SigmaHi == 0 {
		c.Pricing.SigmaHi = 5.0
	}
	if c.Pricing.DayCount == 0 {
		c.Pricing.DayCount = 365 // 日历日惯例
	}

	// 输出默认值
	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if c.Output.FlushIntervalMs == 0 {
		c.Output.FlushIntervalMs = 5000 // 5 秒
	}
}

// Validate 验证配置合法性
// 检查所有必填项和数值范围。筛选阈值只验证各自取值，不验证上下限
// 的相对关系: min_leverage > max_leverage 是合法配置，语义为空结果
// 返回: 若配置无效则返回描述性错误
func (c *Config) Validate() error {
	var errs []string

	// 验证规格档配置
	if c.SpecFeed.Path == "" {
		errs = append(errs, "spec_feed.path: 规格档路径不能为空")
	}

	// 验证网关配置
	if c.Gateway.BaseURL == "" {
		errs = append(errs, "gateway.base_url: 网关地址不能为空")
	}
	if c.Gateway.SnapshotBatchSize < 0 {
		errs = append(errs, "gateway.snapshot_batch_size: 批次大小不能为负数")
	}
	if c.Gateway.RebuildIntervalMin < 0 {
		errs = append(errs, "gateway.rebuild_interval_min: 重建间隔不能为负数")
	}

	// 验证指令通道配置
	if c.Command.URL == "" {
		errs = append(errs, "command.url: 指令通道地址不能为空")
	}

	// 验证筛选阈值
	if c.Strategy.MinDaysToMaturity < 0 {
		errs = append(errs, "strategy.min_days_to_maturity: 剩余天数不能为负数")
	}
	if c.Strategy.MinLeverage < 0 {
		errs = append(errs, "strategy.min_leverage: 杠杆下限不能为负数")
	}
	if c.Strategy.MaxLeverage < 0 {
		errs = append(errs, "strategy.max_leverage: 杠杆上限不能为负数")
	}
	if c.Strategy.MaxThetaPct < 0 {
		errs = append(errs, "strategy.max_theta_pct: 时间价值流逝上限不能为负数")
	}
	if c.Strategy.MinVolume < 0 {
		errs = append(errs, "strategy.min_volume: 最低成交量不能为负数")
	}
	if c.Strategy.MinPrice < 0 {
		errs = append(errs, "strategy.min_price: 价格下限不能为负数")
	}
	if c.Strategy.MaxPrice < 0 {
		errs = append(errs, "strategy.max_price: 价格上限不能为负数")
	}
	if c.Strategy.MaxSpread < 0 {
		errs = append(errs, "strategy.max_spread: 价差上限不能为负数")
	}
	if c.Strategy.MaxSpreadPct < 0 {
		errs = append(errs, "strategy.max_spread_pct: 价差比例上限不能为负数")
	}

	// 验证定价参数
	if c.Pricing.RiskFreeRate < 0 {
		errs = append(errs, "pricing.risk_free_rate: 无风险利率不能为负数")
	}
	if c.Pricing.SigmaLo <= 0 {
		errs = append(errs, "pricing.sigma_lo: 波动率下界必须为正数")
	}
	if c.Pricing.SigmaHi <= c.Pricing.SigmaLo {
		errs = append(errs, "pricing.sigma_hi: 波动率上界必须大于下界")
	}
	if c.Pricing.DayCount <= 0 {
		errs = append(errs, "pricing.day_count: 年化天数基准必须为正数")
	}

	// 验证日志级别
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		errs = append(errs, fmt.Sprintf("app.log_level: 无效的日志级别 '%s'，有效值: debug, info, warn, error", c.App.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("配置验证错误:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// GatewayTimeout 获取网关 HTTP 请求超时时长
func (c *GatewayConfig) GatewayTimeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// RebuildInterval 获取清单重建间隔，0 表示关闭定期重建
func (c *GatewayConfig) RebuildInterval() time.Duration {
	return time.Duration(c.RebuildIntervalMin) * time.Minute
}

// PingInterval 获取指令通道心跳间隔
func (c *CommandConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalMs) * time.Millisecond
}

// PongTimeout 获取指令通道心跳响应超时
func (c *CommandConfig) PongTimeout() time.Duration {
	return time.Duration(c.PongTimeoutMs) * time.Millisecond
}

// FlushInterval 获取结果文件刷盘间隔
func (c *OutputConfig) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}
