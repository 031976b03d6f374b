package metadata

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"warrant-screener/internal/core/model"
	"warrant-screener/internal/util/dateutil"
	"warrant-screener/internal/util/fastparse"
)

// specRow 规格表 CSV 的一行
// 列名与合并流程的输出保持一致（上市 TWT85U + 上柜 Open Data 合并后的统一列名）
type specRow struct {
	// Code 权证代号
	Code string `csv:"權證代號"`
	// Name 权证简称
	Name string `csv:"權證簡稱"`
	// Underlying 标的证券（代号或名称，允许缺省）
	Underlying string `csv:"標的證券"`
	// Strike 履约价格，可能含千分位逗号
	Strike string `csv:"履約價格"`
	// Multiplier 行使比例
	Multiplier string `csv:"行使比例"`
	// Maturity 到期日（西元或民国格式）
	Maturity string `csv:"到期日"`
}

// LoadSpecs 从 CSV 文件加载权证规格表
// 逐行容错: 缺字段、坏日期、非正履约价的行被剔除并记 Debug 日志，不导致整表失败
// 返回: 可用规格列表；文件不可读或可用行数为 0 时返回错误（启动级失败）
func LoadSpecs(path string, logger *zap.Logger) ([]model.InstrumentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取规格表失败: %w", err)
	}

	specs, dropped, err := ParseSpecs(data)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("规格表无可用行: %s", path)
	}

	logger.Info("规格表加载完成",
		zap.String("path", path),
		zap.Int("specs", len(specs)),
		zap.Int("dropped", dropped))

	return specs, nil
}

// ParseSpecs 解析规格表 CSV 内容
// 返回: 可用规格列表、被剔除的行数
func ParseSpecs(data []byte) ([]model.InstrumentSpec, int, error) {
	var rows []*specRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("解析规格表 CSV 失败: %w", err)
	}

	specs := make([]model.InstrumentSpec, 0, len(rows))
	dropped := 0
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		spec, ok := buildSpec(row)
		if !ok {
			dropped++
			continue
		}
		// 上市/上柜合并可能出现重复代号，保留首见行
		if seen[spec.Code] {
			dropped++
			continue
		}
		seen[spec.Code] = true
		specs = append(specs, spec)
	}

	return specs, dropped, nil
}

// buildSpec 将一行 CSV 转换为规格对象
// 任一必要字段不可用时返回 (_, false)
func buildSpec(row *specRow) (model.InstrumentSpec, bool) {
	code := NormalizeCode(row.Code)
	name := fastparse.CleanField(row.Name)
	if code == "" || name == "" {
		return model.InstrumentSpec{}, false
	}

	optType, ok := OptionTypeFromName(name)
	if !ok {
		return model.InstrumentSpec{}, false
	}

	strike := fastparse.MustParseFloat(row.Strike)
	if strike <= 0 {
		return model.InstrumentSpec{}, false
	}

	maturity, err := dateutil.ParseMaturityDate(row.Maturity)
	if err != nil {
		return model.InstrumentSpec{}, false
	}

	// 行使比例允许缺省（0），下游以安全回退处理，不做除法
	multiplier := fastparse.MustParseFloat(row.Multiplier)
	if multiplier < 0 {
		multiplier = 0
	}

	return model.InstrumentSpec{
		Code:           code,
		DisplayName:    name,
		// 标的为 4 位股票代号，只清洗不补零（补零是权证代号的约定）
		UnderlyingCode: fastparse.StripFloatSuffix(fastparse.CleanField(row.Underlying)),
		StrikePrice:    strike,
		Multiplier:     multiplier,
		MaturityDate:   maturity,
		OptionType:     optType,
	}, true
}
