package protocol

// 错误码
const (
	ErrCodeUnknown      = 1000
	ErrCodeInvalidMsg   = 1001
	ErrCodeUnauthorized = 1002 // 未登录或令牌失效

	ErrCodeValidation     = 2001 // 输入校验失败
	ErrCodeGameNotFound   = 2002
	ErrCodeRuleNotFound   = 2003
	ErrCodePlayerNotFound = 2004

	ErrCodeGameNotStarted = 3001
	ErrCodeGameEnded      = 3002 // 游戏已结束，只能修正历史分数
	ErrCodeOutOfRange     = 3003 // 轮次超出已记录范围

	ErrCodePersistFailed = 5001 // 保存失败（本地状态已生效）
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:        "unknown error",
	ErrCodeInvalidMsg:     "invalid message format",
	ErrCodeUnauthorized:   "unauthorized",
	ErrCodeValidation:     "invalid input",
	ErrCodeGameNotFound:   "game not found",
	ErrCodeRuleNotFound:   "rule preset not found",
	ErrCodePlayerNotFound: "player not found",
	ErrCodeGameNotStarted: "game has not started",
	ErrCodeGameEnded:      "game has ended, use score correction instead",
	ErrCodeOutOfRange:     "round index is outside recorded history",
	ErrCodePersistFailed:  "failed to save game",
}
