// Package fastparse 提供数值字段的清洗与解析函数。
// 规格表来源于交易所 CSV 下载，常见脏数据包括 Excel 公式包装（="..."）、
// 千分位逗号和被读成浮点数的代号（32556.0），本包统一处理这些形式。
package fastparse

import (
	"strconv"
	"strings"
)

// CleanField 清洗 CSV 字段的包装符号
// 去除首尾空白、Excel 公式包装 ="..." 以及引号
// 例如: `="032556"` -> `032556`
func CleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `="`)
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}

// ParseFloat 解析可能含千分位逗号的浮点数字符串
// 例如: "1,234.5" -> 1234.5
func ParseFloat(s string) (float64, error) {
	s = strings.ReplaceAll(CleanField(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

// MustParseFloat 解析浮点数，失败时返回 0
// 用于允许缺省的数值字段，简化逐行容错逻辑
func MustParseFloat(s string) float64 {
	v, err := ParseFloat(s)
	if err != nil {
		return 0
	}
	return v
}

// ParseInt 解析可能含千分位逗号的整数字符串
func ParseInt(s string) (int64, error) {
	s = strings.ReplaceAll(CleanField(s), ",", "")
	return strconv.ParseInt(s, 10, 64)
}

// MustParseInt 解析整数，失败时返回 0
func MustParseInt(s string) int64 {
	v, err := ParseInt(s)
	if err != nil {
		return 0
	}
	return v
}

// StripFloatSuffix 去除代号字段被 Excel 转成浮点数后的 ".0" 尾巴
// 例如: "32556.0" -> "32556"；不含小数点的输入原样返回
func StripFloatSuffix(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// IsDigits 判断字符串是否全部由十进制数字组成
// 空字符串返回 false
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
