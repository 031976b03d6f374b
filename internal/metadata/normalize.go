// Package metadata 负责加载权证规格表并做字段正规化。
// 规格表由外部爬虫/合并流程产出（上市 + 上柜合并 CSV），本包只做读取与清洗。
package metadata

import (
	"strings"

	"warrant-screener/internal/core/model"
	"warrant-screener/internal/util/fastparse"
)

// codeWidth 权证代号的标准宽度
// 纯数字代号不足 6 位时前补零（Excel 常把 032556 吃成 32556）
const codeWidth = 6

// nameSuffixes 标的名称中需剥离的公司形态后缀
// 剥离后的「筛选名」用于权证简称的子串匹配，使同一标的的命名变体都能命中
var nameSuffixes = []string{"-KY", "-DR", "投控", "控股"}

// NormalizeCode 正规化权证代号
// 处理流程: 清洗包装符号 -> 去除浮点尾巴 -> 纯数字且不足 6 位时前补零
// 例如: "32556" -> "032556"；"03xxxxP" 原样返回
func NormalizeCode(code string) string {
	code = fastparse.StripFloatSuffix(fastparse.CleanField(code))
	if fastparse.IsDigits(code) && len(code) < codeWidth {
		code = strings.Repeat("0", codeWidth-len(code)) + code
	}
	return code
}

// CleanUnderlyingName 计算标的的筛选名
// 剥离存托凭证/控股形态后缀与保留装饰字符「*」
// 例如: "世芯-KY" -> "世芯"；"日月光投控" -> "日月光"
func CleanUnderlyingName(name string) string {
	name = strings.TrimSpace(name)
	for _, suffix := range nameSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	name = strings.ReplaceAll(name, "*", "")
	return strings.TrimSpace(name)
}

// OptionTypeFromName 从权证简称推断权证类型
// 名称含「購」为认购，含「售」为认售；两者皆无时返回 (_, false)
func OptionTypeFromName(name string) (model.OptionType, bool) {
	switch {
	case strings.Contains(name, "購"):
		return model.OptionCall, true
	case strings.Contains(name, "售"):
		return model.OptionPut, true
	}
	return "", false
}
