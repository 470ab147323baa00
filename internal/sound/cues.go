package sound

// 提示音名称，也是自定义音频文件的文件名（不含扩展名）
const (
	CueRound = "round"
	CueWin   = "win"
	CueError = "error"
)
