// Package dateutil 提供日历相关的工具函数。
// 主要用于解析权证到期日（支持民国纪年与西元纪年）和计算剩余天数。
package dateutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rocYearOffset 民国纪年与西元纪年的年份偏移
// 民国 114 年 = 西元 2025 年
const rocYearOffset = 1911

// rocCJKPattern 匹配「114年01月01日」形式的民国日期
var rocCJKPattern = regexp.MustCompile(`^(\d{1,3})年(\d{1,2})月(\d{1,2})日$`)

// ParseMaturityDate 解析到期日字符串为绝对（西元）日期
// 支持的格式:
//   - 西元: 20250101, 2025-01-01, 2025/01/01
//   - 民国: 114/01/01, 114-01-01, 114年01月01日（年份 +1911）
//
// 判定规则: 年份小于 1911 视为民国纪年。
// 返回: UTC 零点的日期；无法解析时返回错误
func ParseMaturityDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("到期日为空")
	}

	// 民国中文格式: 114年01月01日
	if m := rocCJKPattern.FindStringSubmatch(s); m != nil {
		return makeDate(mustAtoi(m[1])+rocYearOffset, mustAtoi(m[2]), mustAtoi(m[3]))
	}

	// 统一分隔符后按 yyyymmdd 解析
	compact := strings.NewReplacer("/", "", "-", "", ".", "").Replace(s)
	if len(compact) < 7 || len(compact) > 8 {
		return time.Time{}, fmt.Errorf("无法识别的日期格式: %q", s)
	}

	dayPart := compact[len(compact)-2:]
	monthPart := compact[len(compact)-4 : len(compact)-2]
	yearPart := compact[:len(compact)-4]

	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析年份 %q: %w", yearPart, err)
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析月份 %q: %w", monthPart, err)
	}
	day, err := strconv.Atoi(dayPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析日期 %q: %w", dayPart, err)
	}

	// 民国纪年转西元
	if year < rocYearOffset {
		year += rocYearOffset
	}

	return makeDate(year, month, day)
}

// DaysUntil 计算从 today 到 target 的剩余日历天数
// 已到期（target 在 today 之前）返回 0，不返回负数
func DaysUntil(today, target time.Time) int {
	t0 := truncateDay(today)
	t1 := truncateDay(target)
	days := int(t1.Sub(t0).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// makeDate 构造 UTC 零点日期并校验合法性
func makeDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("非法日期: %04d-%02d-%02d", year, month, day)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date 会自动进位（如 2 月 30 日变 3 月），进位说明原日期非法
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("非法日期: %04d-%02d-%02d", year, month, day)
	}
	return t, nil
}

// truncateDay 截断到当天零点（UTC）
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// mustAtoi 解析已由正则保证为数字的字符串
func mustAtoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
