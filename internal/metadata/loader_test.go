// Package metadata 规格表加载测试
package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warrant-screener/internal/core/model"
)

const sampleCSV = `權證代號,權證簡稱,標的證券,履約價格,行使比例,到期日
32556,台積電元大45購01,2330,"1,050.00",0.05,114/06/18
089988,長榮凱基92售05,2603,180.5,0.1,20250930
03xxxxP,聯發科統一88售11,2454,900,0.02,114年03月20日
bad001,台達電富邦33購07,2308,,0.05,114/01/15
bad002,無標記權證,2330,100,0.05,114/01/15
bad003,群創永豐12購09,3481,15.5,0.05,not-a-date
32556,台積電元大45購01重複,2330,1050,0.05,114/06/18
`

func TestParseSpecs(t *testing.T) {
	specs, dropped, err := ParseSpecs([]byte(sampleCSV))
	require.NoError(t, err)

	// 3 行可用；空履约价、无購/售标记、坏日期、重复代号各剔除 1 行
	require.Len(t, specs, 3)
	assert.Equal(t, 4, dropped)

	first := specs[0]
	assert.Equal(t, "032556", first.Code, "代号应补零")
	assert.Equal(t, "台積電元大45購01", first.DisplayName)
	assert.Equal(t, "2330", first.UnderlyingCode, "标的代号不补零")
	assert.Equal(t, 1050.0, first.StrikePrice, "千分位逗号应被清除")
	assert.Equal(t, 0.05, first.Multiplier)
	assert.Equal(t, model.OptionCall, first.OptionType)
	assert.Equal(t, "2025-06-18", first.MaturityDate.Format("2006-01-02"))

	second := specs[1]
	assert.Equal(t, "089988", second.Code, "定宽代号原样保留")
	assert.Equal(t, model.OptionPut, second.OptionType)
	assert.Equal(t, "2025-09-30", second.MaturityDate.Format("2006-01-02"))

	third := specs[2]
	assert.Equal(t, "03xxxxP", third.Code, "字母数字混合代号不补零")
	assert.Equal(t, "2025-03-20", third.MaturityDate.Format("2006-01-02"))
}

func TestParseSpecs_AllRowsBad(t *testing.T) {
	csv := "權證代號,權證簡稱,標的證券,履約價格,行使比例,到期日\n,,,,,\n"
	specs, dropped, err := ParseSpecs([]byte(csv))
	require.NoError(t, err)
	assert.Empty(t, specs)
	assert.Equal(t, 1, dropped)
}

func TestParseSpecs_NegativeMultiplier(t *testing.T) {
	csv := "權證代號,權證簡稱,標的證券,履約價格,行使比例,到期日\n32556,台積電元大45購01,2330,1050,-0.05,114/06/18\n"
	specs, _, err := ParseSpecs([]byte(csv))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Zero(t, specs[0].Multiplier, "负行使比例应视为不可靠，归零")
	assert.False(t, specs[0].HasMultiplier())
}
