// Package sinopac 永丰金证券行情桥接客户端。
// 通过本地网关服务的 HTTP API 获取合约清单与即时快照，
// 网关侧负责券商登入、凭证与会话维持。
package sinopac

// contractEntry 合约清单中的一笔记录
type contractEntry struct {
	// Code 合约代号
	Code string `json:"code"`
	// Name 合约简称
	Name string `json:"name"`
}

// contractsResponse 合约清单响应
type contractsResponse struct {
	// Stocks 股票清单
	Stocks []contractEntry `json:"stocks"`
	// Warrants 权证清单
	Warrants []contractEntry `json:"warrants"`
}

// snapshotEntry 单笔行情快照
// 字段命名沿用券商 API 惯例
type snapshotEntry struct {
	// Code 合约代号
	Code string `json:"code"`
	// Close 最新成交价
	Close float64 `json:"close"`
	// BuyPrice 买一价
	BuyPrice float64 `json:"buy_price"`
	// BuyVolume 买一量
	BuyVolume int64 `json:"buy_volume"`
	// SellPrice 卖一价
	SellPrice float64 `json:"sell_price"`
	// SellVolume 卖一量
	SellVolume int64 `json:"sell_volume"`
	// TotalVolume 当日累计成交量
	TotalVolume int64 `json:"total_volume"`
	// Reference 参考价（昨收）
	Reference float64 `json:"reference"`
	// LimitUp 涨停价
	LimitUp float64 `json:"limit_up"`
	// LimitDown 跌停价
	LimitDown float64 `json:"limit_down"`
}

// snapshotsResponse 批量快照响应
type snapshotsResponse struct {
	// Snapshots 快照列表，可能缺少部分请求代号
	Snapshots []snapshotEntry `json:"snapshots"`
}
