package recommend

import (
	"context"

	"recipe-recommender/internal/pkg/common"
)

// NoExpiryDays 沒有到期日的食材所使用的天數
const NoExpiryDays = 999

// ExpiringWithinDays 視為即將到期的天數門檻
const ExpiringWithinDays = 7

// Recipe 演算法使用的食譜視圖
type Recipe = common.RecipeRecord

// WeightedIngredient 單次推薦中由庫存推導出的加權食材
type WeightedIngredient struct {
	ID              string
	Name            string
	Weight          float64 // 恆大於 0
	DaysUntilExpiry int     // 已過期時為 -1
	AboutToExpire   bool
	Quantity        float64
	Unit            string
	Selected        bool
}

// Expiring 是否屬於即將到期（二元緊急度）
func (w WeightedIngredient) Expiring() bool {
	return w.AboutToExpire || w.DaysUntilExpiry <= ExpiringWithinDays
}

// ExpiryFactor 即將到期為 5.0，否則 1.0
func (w WeightedIngredient) ExpiryFactor() float64 {
	if w.Expiring() {
		return 5.0
	}
	return 1.0
}

// NormalizedQuantity 換算成基準單位後的數量，非正值視為 1
func (w WeightedIngredient) NormalizedQuantity() float64 {
	q := NormalizeQuantity(w.Quantity, w.Unit)
	if q <= 0 {
		return 1
	}
	return q
}

// Options 推薦選項
type Options struct {
	MealType            string
	PrioritizeExpiring  bool
	SelectedIngredients []string
}

// RecipeScoreResult 推薦結果
type RecipeScoreResult struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Image             string          `json:"image,omitempty"`
	Score             int             `json:"score"`
	MealType          common.MealType `json:"meal_type"`
	UsedIngredients   []string        `json:"used_ingredients"`
	MissedIngredients []string        `json:"missed_ingredients"`
	Instructions      []string        `json:"instructions"`
	MatchCount        int             `json:"match_count"`
	TotalIngredients  int             `json:"total_ingredients"`
	ExpiringCount     int             `json:"expiring_count"`
	PerfectMatch      bool            `json:"perfect_match"`

	importance float64
}

// InventorySource 庫存資料來源
type InventorySource interface {
	ListInventory(ctx context.Context, userID string) ([]common.InventoryItem, error)
}

// RecipeSource 候選食譜資料來源
type RecipeSource interface {
	ListRecipes(ctx context.Context, mealType common.MealType, limit int) ([]common.RecipeRecord, error)
}

// ResultCache 推薦結果快取
type ResultCache interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
}
