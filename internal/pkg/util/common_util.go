package util

import (
	"time"
)

// Truncate 截断字符串到 n 个字节，遥测记录错误信息时使用
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...[truncated]"
}

// DayString 日桶使用的 UTC 日期串
func DayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
