package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"warrant-screener/internal/config"
	"warrant-screener/internal/core/model"
	"warrant-screener/internal/util/backoff"
)

// commandChannel 订阅的指令频道名
const commandChannel = "commands"

// Client 指令通道 WebSocket 客户端
type Client struct {
	// cfg 指令通道配置
	cfg *config.CommandConfig
	// logger 日志记录器
	logger *zap.Logger
	// conn WebSocket 连接
	conn *websocket.Conn
	// connMu 连接锁（gorilla/websocket 不允许并发多写者，写入经此串行化）
	connMu sync.Mutex
	// requestCh 搜索请求输出通道
	requestCh chan *Request
	// lastPingSentNs 上次发送 ping 的时间（纳秒）
	lastPingSentNs int64
	// lastPongRecvNs 上次收到 pong 的时间（纳秒）
	lastPongRecvNs int64
	// backoff 重连退避
	backoff *backoff.Backoff
	// closed 是否已关闭
	closed int32
}

// NewClient 创建指令通道客户端
// 参数 cfg: 指令通道配置
// 参数 logger: 日志记录器
func NewClient(cfg *config.CommandConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:       cfg,
		logger:    logger.Named("command"),
		requestCh: make(chan *Request, 100),
		backoff:   backoff.NewDefault(),
	}
}

// Connect 建立 WebSocket 连接并订阅指令频道
// 参数 ctx: 上下文，用于取消连接
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	header := http.Header{}
	header.Set("User-Agent", "warrant-screener/1.0")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return fmt.Errorf("连接指令通道失败: %w", err)
	}

	c.conn = conn
	c.backoff.Reset()

	// 订阅指令频道
	sub := subscribeMessage{Type: typeSubscribe, Channel: commandChannel}
	if err := c.writeJSONLocked(sub); err != nil {
		conn.Close()
		c.conn = nil
		return fmt.Errorf("订阅指令频道失败: %w", err)
	}

	c.logger.Info("指令通道连接成功", zap.String("url", c.cfg.URL))
	return nil
}

// Run 启动客户端主循环
// 包含读取循环和心跳循环
func (c *Client) Run(ctx context.Context) {
	go c.heartbeatLoop(ctx)
	c.readLoop(ctx)
}

// readLoop 读取循环
// 持续读取下行消息，解析出的搜索请求投递到 requestCh
func (c *Client) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if atomic.LoadInt32(&c.closed) == 1 {
			return
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			c.reconnect(ctx)
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warn("读取指令消息失败", zap.Error(err))
			c.reconnect(ctx)
			continue
		}

		if IsPong(data) {
			atomic.StoreInt64(&c.lastPongRecvNs, time.Now().UnixNano())
			continue
		}

		req, process, err := ParseRequest(data)
		if err != nil {
			c.logger.Warn("解析指令消息失败", zap.Error(err), zap.ByteString("data", truncate(data, 200)))
			continue
		}
		if !process {
			continue
		}

		select {
		case c.requestCh <- req:
		default:
			c.logger.Warn("请求通道已满，丢弃指令",
				zap.String("id", req.ID),
				zap.String("query", req.Query))
		}
	}
}

// heartbeatLoop 心跳循环
// 定期发送 ping，超时未收到 pong 时关闭连接触发重连
func (c *Client) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if atomic.LoadInt32(&c.closed) == 1 {
				return
			}

			c.connMu.Lock()
			if c.conn == nil {
				c.connMu.Unlock()
				continue
			}
			pingTime := time.Now().UnixNano()
			err := c.writeJSONLocked(pingMessage{Type: typePing})
			c.connMu.Unlock()
			if err != nil {
				c.logger.Warn("发送心跳失败", zap.Error(err))
				continue
			}
			atomic.StoreInt64(&c.lastPingSentNs, pingTime)

			// 检查 pong 是否按期返回
			lastPing := atomic.LoadInt64(&c.lastPingSentNs)
			lastPong := atomic.LoadInt64(&c.lastPongRecvNs)
			if lastPing > 0 && lastPong < lastPing {
				if time.Now().UnixNano()-lastPing > int64(c.cfg.PongTimeout()) {
					c.logger.Warn("指令通道心跳超时，触发重连")
					c.closeConn()
				}
			}
		}
	}
}

// Publish 把一次筛选的完整结果发布回指令通道
// 参数 env: 结果信封
// 发布后补发 ack，标记该请求已完成
func (c *Client) Publish(env *model.ResultEnvelope) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("指令通道未连接")
	}

	if err := c.writeJSONLocked(resultMessage{Type: typeResult, Payload: env}); err != nil {
		return fmt.Errorf("发布结果失败: %w", err)
	}
	if err := c.writeJSONLocked(ackMessage{Type: typeAck, ID: env.RequestID, Status: "completed"}); err != nil {
		return fmt.Errorf("发送指令确认失败: %w", err)
	}
	return nil
}

// writeJSONLocked 序列化并写入消息，调用方必须持有 connMu
func (c *Client) writeJSONLocked(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// reconnect 重连
func (c *Client) reconnect(ctx context.Context) {
	c.closeConn()

	c.logger.Info("指令通道准备重连")
	if err := c.backoff.Wait(ctx); err != nil {
		return
	}

	if err := c.Connect(ctx); err != nil {
		c.logger.Error("指令通道重连失败", zap.Error(err))
	}
}

// closeConn 关闭连接
func (c *Client) closeConn() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Close 关闭客户端
func (c *Client) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	c.closeConn()
	close(c.requestCh)
	c.logger.Info("指令通道客户端已关闭")
	return nil
}

// RequestCh 获取搜索请求通道
func (c *Client) RequestCh() <-chan *Request {
	return c.requestCh
}

// truncate 截断日志采样用的原始消息
func truncate(data []byte, n int) []byte {
	if len(data) > n {
		return data[:n]
	}
	return data
}
