package recommend

import (
	"math"

	"go.uber.org/zap"
)

// DefaultBaseScore 食譜沒有預設分數時使用的基礎分
const DefaultBaseScore = 15.0

// UsedIngredient 被食譜使用的庫存食材
type UsedIngredient struct {
	Name              string
	MatchedIngredient string
	Quality           float64
	DaysUntilExpiry   int
	Expiring          bool
	Quantity          float64 // 基準單位
	Weight            float64
	Flow              float64
}

// Score 評分結果
type Score struct {
	Value         int
	Missed        []string
	PerfectMatch  bool
	ExpiringCount int
	Coverage      float64
	MaxScore      float64
}

// Scorer 食譜評分器
type Scorer struct {
	rand   Random
	logger *zap.Logger
}

// NewScorer 建立評分器，rand 用於平手時的微小抖動
func NewScorer(rand Random, logger *zap.Logger) *Scorer {
	if rand == nil {
		rand = NewRandom(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{rand: rand, logger: logger}
}

// ExpiryMaxScore 依即將到期食材數量決定的分數上限
func ExpiryMaxScore(expiring int) float64 {
	return 70 + math.Min(30, float64(expiring)*10)
}

// NonPerfectCap 非完全匹配的分數上限
func NonPerfectCap(expiring int) float64 {
	return ExpiryMaxScore(expiring) - 8
}

// MissedIngredients 找出沒有被任何已使用食材覆蓋的食譜食材
func MissedIngredients(recipe Recipe, used []UsedIngredient) []string {
	missed := []string{}
	for _, ing := range recipe.Ingredients {
		covered := false
		for _, u := range used {
			if u.MatchedIngredient == ing {
				covered = true
				break
			}
			if MatchIngredient(u.Name, []string{ing}).Quality >= EdgeMatchThreshold {
				covered = true
				break
			}
		}
		if !covered {
			missed = append(missed, ing)
		}
	}
	return missed
}

// Score 計算食譜分數，結果介於 0 與 MaxScore 之間
func (s *Scorer) Score(recipe Recipe, used []UsedIngredient, mealTypeBoost float64, nutrition NutritionInfo) Score {
	total := len(recipe.Ingredients)
	if total == 0 {
		total = 1
	}

	if len(used) == 0 {
		base := recipe.BaseScore
		if base <= 0 {
			base = DefaultBaseScore
		}
		missed := append([]string{}, recipe.Ingredients...)
		return Score{
			Value:    int(math.Round(math.Max(0, math.Min(25, base*1.5*mealTypeBoost)))),
			Missed:   missed,
			MaxScore: 25,
		}
	}

	missed := MissedIngredients(recipe, used)
	usedCount := len(used)
	missedCount := len(missed)
	missingRatio := float64(missedCount) / float64(total)
	coverage := float64(total-missedCount) / float64(total)
	perfect := missedCount == 0 && usedCount >= len(recipe.Ingredients)

	expiring := 0
	expiringQty := 0.0
	qualitySum := 0.0
	for _, u := range used {
		qualitySum += u.Quality
		if u.Expiring {
			expiring++
			expiringQty += u.Quantity
		}
	}

	expiryMax := ExpiryMaxScore(expiring)
	maxScore := expiryMax
	if !perfect {
		maxScore = math.Min(NonPerfectCap(expiring), 30+(expiryMax-30)*coverage-3*float64(missedCount))
		maxScore = math.Max(0, maxScore)
	}

	sizeScale := math.Min(1, 4/float64(total))
	raw := math.Min(float64(usedCount), 3) / 3 * 20
	raw += qualitySum / float64(usedCount) * 15
	raw += coverage * 25
	raw += float64(expiring)*6*sizeScale + float64(expiring)/float64(usedCount)*10
	raw += math.Pow(coverage, 1.25) * 10
	raw += (mealTypeBoost - 1) * 5
	for _, boost := range nutrition.Categories {
		raw += 4 * boost
	}
	if nutrition.BalancedBoost > 1 {
		raw += (nutrition.BalancedBoost - 1) * 5
	}

	if missedCount > 0 {
		raw -= math.Pow(float64(missedCount)*3.5, math.Min(2, 1+missingRatio))
	}
	if perfect {
		raw += 12
	}
	if usedCount < 3 {
		raw -= float64(3-usedCount) * 15
	}
	if expiring >= 3 {
		raw += 15
	}
	raw += s.rand.Float64()*2 - 1

	if expiring > 0 {
		floor := 30 + float64(expiring)*8 + math.Min(10, math.Log10(expiringQty+1)*4)
		floor = math.Min(floor, 60)
		if !perfect {
			floor = math.Min(floor, 45)
		}
		if coverage < 0.5 {
			floor = math.Min(floor, 30)
		}
		raw = math.Max(raw, floor)
	}
	if perfect {
		raw = math.Max(raw, NonPerfectCap(expiring))
	}

	if mealTypeBoost > 2.0 {
		raw *= 1.1
	}
	raw += 3 * float64(expiring)

	value := int(math.Round(math.Max(0, math.Min(raw, maxScore))))
	s.logger.Debug("recipe scored",
		zap.String("recipe", recipe.Title),
		zap.Int("score", value),
		zap.Int("used", usedCount),
		zap.Int("missed", missedCount),
		zap.Int("expiring", expiring),
		zap.Bool("perfect", perfect),
	)

	return Score{
		Value:         value,
		Missed:        missed,
		PerfectMatch:  perfect,
		ExpiringCount: expiring,
		Coverage:      coverage,
		MaxScore:      maxScore,
	}
}
