package common

import "strconv"

// TruncateName truncates a player name to the specified maximum length.
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// FormatScore 带符号显示得分，0 不带符号
func FormatScore(score int) string {
	if score > 0 {
		return "+" + strconv.Itoa(score)
	}
	return strconv.Itoa(score)
}

// VisibleRange 返回最多 limit 项时应显示的 [start, end)，总是包含最后一项
func VisibleRange(total, limit int) (int, int) {
	if limit <= 0 || total <= limit {
		return 0, total
	}
	return total - limit, total
}
