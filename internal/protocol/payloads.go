package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// SubmitRoundPayload 提交一轮得分，键为玩家 ID，缺省的玩家记 0 分
type SubmitRoundPayload struct {
	Scores map[string]int `json:"scores"`
}

// CorrectScorePayload 修正历史得分
type CorrectScorePayload struct {
	PlayerID   string `json:"playerId"`
	RoundIndex int    `json:"roundIndex"` // 从 0 开始
	Score      int    `json:"score"`
}

// DeleteScorePayload 清零历史得分
type DeleteScorePayload struct {
	PlayerID   string `json:"playerId"`
	RoundIndex int    `json:"roundIndex"`
}

// --- 服务端响应 Payloads ---

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// RuleInfo 规则信息
type RuleInfo struct {
	WinMetric    string `json:"winMetric"`
	TargetRounds int    `json:"targetRounds"`
	TargetPoints int    `json:"targetPoints"`
	WinCondition string `json:"winCondition"`
	GameMode     string `json:"gameMode"`
	Summary      string `json:"summary"` // 可读描述
}

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Scores     []int  `json:"scores"`
	TotalScore int    `json:"totalScore"`
	Eliminated bool   `json:"eliminated"`
}

// RoundInfo 一轮的原始得分
type RoundInfo struct {
	RoundNumber int            `json:"roundNumber"`
	Scores      map[string]int `json:"scores"`
}

// GameStatePayload 对局完整状态，每次变更后广播
type GameStatePayload struct {
	GameID       string       `json:"gameId"`
	Name         string       `json:"name"`
	Rule         RuleInfo     `json:"rule"`
	Players      []PlayerInfo `json:"players"` // 开局顺序
	Ranked       []PlayerInfo `json:"ranked"`  // 当前排名
	Rounds       []RoundInfo  `json:"rounds"`
	Eliminated   []string     `json:"eliminated"`
	CurrentRound int          `json:"currentRound"`
	GameEnded    bool         `json:"gameEnded"`
	Winner       *PlayerInfo  `json:"winner,omitempty"`
}

// RoundRejectedPayload 对局结束后提交的轮次被拒绝
type RoundRejectedPayload struct {
	GameID string `json:"gameId"`
	Reason string `json:"reason"`
}

// ErrorPayload 错误信息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
