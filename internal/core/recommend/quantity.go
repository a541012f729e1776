package recommend

import "strings"

// 換算成公克 / 毫升的倍率
var unitFactors = map[string]float64{
	"kilogram":    1000,
	"kilograms":   1000,
	"kg":          1000,
	"liter":       1000,
	"liters":      1000,
	"litre":       1000,
	"litres":      1000,
	"l":           1000,
	"tablespoon":  15,
	"tablespoons": 15,
	"tbsp":        15,
	"teaspoon":    5,
	"teaspoons":   5,
	"tsp":         5,
	"cup":         240,
	"cups":        240,
}

// NormalizeQuantity 將數量換算成基準單位（質量為公克，體積為毫升）。
// 無法辨識的單位（piece、unit 等計數單位）原樣回傳。
func NormalizeQuantity(quantity float64, unit string) float64 {
	if factor, ok := unitFactors[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return quantity * factor
	}
	return quantity
}
