package ratecalc

import "github.com/shopspring/decimal"

// Rate 计算 numerator/denominator*100，四舍五入（round half up）保留两位小数。
// 分母为 0 时约定返回 0，避免除零同时让“无样本”天的比率有确定语义。
// 使用 decimal 而非 float64，保证比率不受二进制浮点舍入漂移影响。
func Rate(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	result := decimal.NewFromInt(numerator).
		Div(decimal.NewFromInt(denominator)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := result.Float64()
	return f
}

// Average 计算 sum/count，保留两位小数，count 为 0 返回 0。
func Average(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	result := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(count)).
		Round(2)
	f, _ := result.Float64()
	return f
}
