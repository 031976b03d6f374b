package sinopac

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"warrant-screener/internal/core/model"
	"warrant-screener/internal/core/store"
)

// Client 行情桥接客户端
// 实现筛选引擎的行情数据源接口
type Client struct {
	// baseURL 网关 API 基础地址
	baseURL string
	// client HTTP 客户端
	client *http.Client
	// logger 日志记录器
	logger *zap.Logger
}

// NewClient 创建行情桥接客户端
// 参数 baseURL: 网关 API 基础地址
// 参数 timeout: 单次 HTTP 请求超时
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("sinopac"),
	}
}

// FetchContracts 获取全市场合约清单
// 参数 ctx: 上下文，用于取消请求
// 返回: 股票与权证清单，供合约索引重建使用
func (c *Client) FetchContracts(ctx context.Context) (*store.Listing, error) {
	body, err := c.doRequest(ctx, c.baseURL+"/v1/contracts")
	if err != nil {
		return nil, fmt.Errorf("请求合约清单失败: %w", err)
	}

	var resp contractsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("解析合约清单失败: %w", err)
	}

	listing := &store.Listing{
		Stocks:   make([]store.ListedContract, 0, len(resp.Stocks)),
		Warrants: make([]store.ListedContract, 0, len(resp.Warrants)),
	}
	for _, e := range resp.Stocks {
		listing.Stocks = append(listing.Stocks, store.ListedContract{Code: e.Code, Name: e.Name})
	}
	for _, e := range resp.Warrants {
		listing.Warrants = append(listing.Warrants, store.ListedContract{Code: e.Code, Name: e.Name})
	}

	c.logger.Info("合约清单获取完成",
		zap.Int("stocks", len(listing.Stocks)),
		zap.Int("warrants", len(listing.Warrants)))
	return listing, nil
}

// Snapshots 批量获取行情快照
// 参数 codes: 合约代号列表；调用方负责批次大小控制
// 返回: 按代号索引的快照集，响应中缺席的代号不在结果中
func (c *Client) Snapshots(ctx context.Context, codes []string) (map[string]model.MarketSnapshot, error) {
	if len(codes) == 0 {
		return map[string]model.MarketSnapshot{}, nil
	}

	endpoint := c.baseURL + "/v1/snapshots?codes=" + url.QueryEscape(strings.Join(codes, ","))
	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("请求行情快照失败: %w", err)
	}

	var resp snapshotsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("解析行情快照失败: %w", err)
	}

	out := make(map[string]model.MarketSnapshot, len(resp.Snapshots))
	for _, s := range resp.Snapshots {
		out[s.Code] = model.MarketSnapshot{
			Code:           s.Code,
			LastPrice:      s.Close,
			BestBidPrice:   s.BuyPrice,
			BestBidVolume:  s.BuyVolume,
			BestAskPrice:   s.SellPrice,
			BestAskVolume:  s.SellVolume,
			TotalVolume:    s.TotalVolume,
			ReferencePrice: s.Reference,
			LimitUp:        s.LimitUp,
			LimitDown:      s.LimitDown,
		}
	}
	return out, nil
}

// LastPrice 获取标的现价
// 最新成交价缺席时退回参考价（夜盘或盘前场景）
// 返回: 价格、是否可用、错误
func (c *Client) LastPrice(ctx context.Context, code string) (float64, bool, error) {
	snaps, err := c.Snapshots(ctx, []string{code})
	if err != nil {
		return 0, false, err
	}
	snap, ok := snaps[code]
	if !ok {
		return 0, false, nil
	}
	if snap.LastPrice > 0 {
		return snap.LastPrice, true, nil
	}
	if snap.ReferencePrice > 0 {
		return snap.ReferencePrice, true, nil
	}
	return 0, false, nil
}

// doRequest 执行 HTTP GET 请求
// 参数 ctx: 上下文
// 参数 endpoint: 请求地址
// 返回: 响应体字节数组
func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	// 设置请求头
	req.Header.Set("User-Agent", "warrant-screener/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP 状态码错误: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	return body, nil
}
