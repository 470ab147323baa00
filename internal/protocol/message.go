package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgPing MessageType = "ping" // 心跳 ping

	// 计分操作
	MsgSubmitRound  MessageType = "submit_round"  // 提交一轮得分
	MsgCorrectScore MessageType = "correct_score" // 修正历史得分
	MsgDeleteScore  MessageType = "delete_score"  // 清零历史得分
	MsgResetGame    MessageType = "reset_game"    // 以相同玩家和规则重新开始
)

// 服务端 → 客户端 消息类型
const (
	MsgPong          MessageType = "pong"           // 心跳 pong
	MsgGameState     MessageType = "game_state"     // 对局完整状态
	MsgRoundRejected MessageType = "round_rejected" // 对局已结束，本轮未记录
	MsgError         MessageType = "error"          // 错误
)
