// Package command 实现查询指令通道的 WebSocket 客户端。
// 指令服务推送待处理的搜索请求，客户端以单消费者通道交付给主循环，
// 处理完成后把结果发布回同一连接。
package command

// messageType 指令通道的消息类型
const (
	// typeSearch 搜索指令
	typeSearch = "search"
	// typeResult 结果回传
	typeResult = "result"
	// typeAck 指令确认
	typeAck = "ack"
	// typePing 心跳请求
	typePing = "ping"
	// typePong 心跳响应
	typePong = "pong"
	// typeSubscribe 订阅请求
	typeSubscribe = "subscribe"
)

// inboundMessage 通道下行消息
type inboundMessage struct {
	// Type 消息类型
	Type string `json:"type"`
	// ID 请求标识，可缺省
	ID string `json:"id"`
	// Query 查询文字；兼容旧字段名 stock_code
	Query string `json:"query"`
	// StockCode 旧版字段，Query 缺省时取此值
	StockCode string `json:"stock_code"`
	// Status 指令状态，仅 pending（或缺省）需要处理
	Status string `json:"status"`
}

// subscribeMessage 订阅请求
type subscribeMessage struct {
	// Type 消息类型，固定为 subscribe
	Type string `json:"type"`
	// Channel 订阅频道
	Channel string `json:"channel"`
}

// ackMessage 指令确认
type ackMessage struct {
	// Type 消息类型，固定为 ack
	Type string `json:"type"`
	// ID 请求标识
	ID string `json:"id"`
	// Status 处理后状态
	Status string `json:"status"`
}

// resultMessage 结果回传
type resultMessage struct {
	// Type 消息类型，固定为 result
	Type string `json:"type"`
	// Payload 筛选结果信封
	Payload interface{} `json:"payload"`
}

// pingMessage 心跳请求
type pingMessage struct {
	// Type 消息类型，固定为 ping
	Type string `json:"type"`
}

// Request 交付给主循环的一笔搜索请求
type Request struct {
	// ID 请求标识；上游缺省时由客户端生成
	ID string
	// Query 查询文字
	Query string
}
