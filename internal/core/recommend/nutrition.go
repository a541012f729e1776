package recommend

import (
	"math"
	"strings"
)

// NutritionCategories 營養類別，索引即 flow.Nutrition(i)
var NutritionCategories = []string{"protein", "vegetables", "grains", "dairy"}

var nutritionKeywords = map[string][]string{
	"protein": {
		"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp",
		"egg", "tofu", "turkey", "lamb", "beans", "lentil",
	},
	"vegetables": {
		"spinach", "carrot", "broccoli", "tomato", "onion", "pepper", "lettuce",
		"cabbage", "zucchini", "mushroom", "potato", "kale", "garlic", "cucumber",
	},
	"grains": {
		"rice", "pasta", "bread", "flour", "oat", "quinoa", "noodle",
		"tortilla", "barley", "couscous",
	},
	"dairy": {"milk", "cheese", "yogurt", "butter", "cream"},
}

// NutritionInfo 食譜的營養類別加成
type NutritionInfo struct {
	Categories    map[string]float64 // 類別 → 加成
	BalancedBoost float64            // 跨兩類以上時大於 1
}

// CategoryHits 計算每個類別在食譜食材中的命中次數
func CategoryHits(ingredients []string) map[string]int {
	hits := make(map[string]int)
	for _, ing := range ingredients {
		text := strings.ToLower(ing)
		for _, category := range NutritionCategories {
			for _, kw := range nutritionKeywords[category] {
				if strings.Contains(text, kw) {
					hits[category]++
					break
				}
			}
		}
	}
	return hits
}

// CategoryBoost 單一類別的加成，上限 1.5
func CategoryBoost(hits int) float64 {
	return math.Min(1.5, 1.0+0.1*float64(hits))
}

// BalancedBoost 跨類別加成，少於兩類時為 0
func BalancedBoost(categories int) float64 {
	if categories < 2 {
		return 0
	}
	return 1.0 + 0.2*float64(categories)
}
