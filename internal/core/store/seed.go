package store

// DefaultUnderlyingSeed 内建标的种子字典（代号 -> 全名）
// 覆盖权证发行最热门的标的；即时清单下载异常时仍可支撑解析，
// 清单正常时由清单条目覆盖/扩充。
var DefaultUnderlyingSeed = map[string]string{
	// 晶圆代工 / 半导体
	"2330": "台積電", "2303": "聯電", "5347": "世界", "6770": "力積電",
	"3711": "日月光投控", "2408": "南亞科", "2344": "華邦電", "2337": "旺宏",
	"6488": "環球晶", "5483": "中美晶",

	// IC 设计
	"2454": "聯發科", "3034": "聯詠", "2379": "瑞昱", "3443": "創意",
	"3661": "世芯-KY", "3529": "力旺", "5269": "祥碩", "8299": "群聯",
	"2458": "義隆", "5274": "信驊",

	// AI / 服务器 / 电脑周边
	"2382": "廣達", "3231": "緯創", "6669": "緯穎", "2356": "英業達",
	"2301": "光寶科", "3017": "奇鋐", "3324": "雙鴻", "2376": "技嘉",
	"2377": "微星", "3653": "健策", "3665": "貿聯-KY", "2383": "台光電",
	"3037": "欣興", "8046": "南電",

	// 航运 / 航空
	"2603": "長榮", "2609": "陽明", "2615": "萬海", "2618": "長榮航",
	"2610": "華航", "2637": "慧洋-KY",

	// 重电 / 绿能
	"1513": "中興電", "1519": "華城", "1504": "東元", "1605": "華新",
	"9958": "世紀鋼", "3708": "上緯投控",

	// 光学 / 面板 / 网通
	"3008": "大立光", "3406": "玉晶光", "2409": "友達", "3481": "群創",
	"2317": "鴻海", "2308": "台達電", "2345": "智邦", "3105": "穩懋",
	"4977": "眾達-KY",

	// 金融
	"2881": "富邦金", "2882": "國泰金", "2891": "中信金", "2886": "兆豐金",
	"2884": "玉山金", "2885": "元大金", "2890": "永豐金", "2883": "開發金",
	"5871": "中租-KY",

	// 传产 / 原物料 / 汽车
	"2002": "中鋼", "2027": "大成鋼", "1101": "台泥", "1301": "台塑",
	"1303": "南亞", "6505": "台塑化", "2207": "和泰車",

	// 生技
	"6446": "藥華藥", "1795": "美時", "4743": "合一", "6547": "高端疫苗",

	// 通路 / 电信
	"2912": "統一超", "8454": "富邦媒", "2412": "中華電", "3045": "台灣大",
}
