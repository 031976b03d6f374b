package screen

import "strings"

// brokerKeywords 发行券商关键字，按市场惯用简称排列
// 权证简称内嵌券商名，如「台積電元大45購01」中的「元大」
var brokerKeywords = []string{
	"元大",
	"凱基",
	"統一",
	"富邦",
	"永豐",
	"國泰",
	"群益",
	"元富",
	"兆豐",
	"中信",
	"華南",
	"第一金",
	"玉山",
	"台新",
	"日盛",
}

// BrokerFallback 未匹配任何券商关键字时的标签
const BrokerFallback = "其他"

// BrokerLabel 从权证简称推断发行券商
// 按 brokerKeywords 顺序取首个命中的关键字；不匹配时返回「其他」
func BrokerLabel(displayName string) string {
	for _, kw := range brokerKeywords {
		if strings.Contains(displayName, kw) {
			return kw
		}
	}
	return BrokerFallback
}
