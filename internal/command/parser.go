package command

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// IsPong 判断消息是否为心跳响应
func IsPong(data []byte) bool {
	return bytes.Contains(data, []byte(`"type":"pong"`)) || bytes.Equal(data, []byte("pong"))
}

// ParseRequest 解析下行消息为搜索请求
// 返回: 请求、是否需要处理、错误
//
// 非 search 类型或状态不为 pending（含缺省）的消息跳过不处理；
// 请求标识缺省时生成 UUID，保证结果可被关联
func ParseRequest(data []byte) (*Request, bool, error) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, false, fmt.Errorf("解析指令消息失败: %w", err)
	}

	if msg.Type != typeSearch {
		return nil, false, nil
	}
	if msg.Status != "" && msg.Status != "pending" {
		return nil, false, nil
	}

	query := msg.Query
	if query == "" {
		query = msg.StockCode
	}
	if query == "" {
		return nil, false, fmt.Errorf("搜索指令缺少查询文字")
	}

	id := msg.ID
	if id == "" {
		id = uuid.New().String()
	}

	return &Request{ID: id, Query: query}, true, nil
}
