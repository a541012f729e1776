package common

import (
	"strings"
	"time"
)

// MealType 餐別
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealDessert   MealType = "dessert"
	MealAny       MealType = "any"
)

// ParseMealType 解析餐別，空字串或未知值視為 any
func ParseMealType(s string) MealType {
	switch m := MealType(strings.ToLower(strings.TrimSpace(s))); m {
	case MealBreakfast, MealLunch, MealDinner, MealDessert, MealAny:
		return m
	default:
		return MealAny
	}
}

// IsValidMealType 檢查餐別是否為已知值
func IsValidMealType(s string) bool {
	switch MealType(strings.ToLower(strings.TrimSpace(s))) {
	case MealBreakfast, MealLunch, MealDinner, MealDessert, MealAny:
		return true
	}
	return false
}

// InventoryItem 使用者庫存中的一項食材
type InventoryItem struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Quantity      float64    `json:"quantity"`
	Unit          string     `json:"unit"`
	ExpiryDate    *time.Time `json:"expiry_date"`     // 可為 null
	AboutToExpire bool       `json:"about_to_expire"` // 強制視為最高緊急度
	PurchaseDate  time.Time  `json:"purchase_date"`
}

// RecipeRecord 候選食譜
type RecipeRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Image        string   `json:"image,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	MealType     MealType `json:"meal_type"`
	BaseScore    float64  `json:"base_score,omitempty"` // 0 表示沒有先驗分數
}

// Eligible 食材與步驟皆非空才可參與推薦
func (r RecipeRecord) Eligible() bool {
	return len(r.Ingredients) > 0 && len(r.Instructions) > 0
}
