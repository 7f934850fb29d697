package util

import (
	"math"
	"strings"
	"time"
)

// WindowDays 计算日期区间覆盖的天数（向上取整），区间非法时回退 fallback
func WindowDays(start time.Time, end time.Time, fallback int) int {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return fallback
	}
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days <= 0 {
		return fallback
	}
	return days
}

// DayKey 将时间按 UTC 截断到日，作为时间序列的桶键
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// TruncatePreview 内容预览截断，超出部分以省略号结尾
func TruncatePreview(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}

// SplitAndTrim 拆分逗号分隔的列表参数，去掉空项与首尾空白
func SplitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
