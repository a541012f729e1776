package recommend

import (
	"math"
	"strings"
	"time"

	"recipe-recommender/internal/pkg/common"
)

// DaysUntilExpiry 距到期的天數（無條件進位），已過期為 -1，沒有到期日為 NoExpiryDays
func DaysUntilExpiry(expiry *time.Time, now time.Time) int {
	if expiry == nil || expiry.IsZero() {
		return NoExpiryDays
	}
	days := int(math.Ceil(expiry.Sub(now).Hours() / 24))
	if days < 0 {
		return -1
	}
	return days
}

// ExpiryTierWeight 到期緊急度的基礎權重
func ExpiryTierWeight(days int, aboutToExpire bool) float64 {
	switch {
	case aboutToExpire || days < 0:
		return 5.0
	case days <= 3:
		return 4.0
	case days <= ExpiringWithinDays:
		return 2.0
	default:
		return 1.0
	}
}

// ExpiryMultiplier 優先處理即將到期時為 3.0，否則 1.5
func ExpiryMultiplier(prioritizeExpiring bool) float64 {
	if prioritizeExpiring {
		return 3.0
	}
	return 1.5
}

// Weigh 將庫存轉為加權食材；有指定食材時只保留符合者並加倍權重
func Weigh(items []common.InventoryItem, opts Options, now time.Time) []WeightedIngredient {
	selected := normalizeSelection(opts.SelectedIngredients)
	multiplier := ExpiryMultiplier(opts.PrioritizeExpiring)

	out := make([]WeightedIngredient, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		isSelected := len(selected) > 0 && matchesSelection(name, selected)
		if len(selected) > 0 && !isSelected {
			continue
		}

		days := DaysUntilExpiry(item.ExpiryDate, now)
		weight := ExpiryTierWeight(days, item.AboutToExpire) * multiplier
		if isSelected {
			weight *= 2.0
		}

		out = append(out, WeightedIngredient{
			ID:              item.ID,
			Name:            name,
			Weight:          weight,
			DaysUntilExpiry: days,
			AboutToExpire:   item.AboutToExpire,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			Selected:        isSelected,
		})
	}
	return out
}

func normalizeSelection(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// matchesSelection 不分大小寫的雙向子字串比對
func matchesSelection(name string, selected []string) bool {
	lower := strings.ToLower(name)
	for _, s := range selected {
		if strings.Contains(lower, s) || strings.Contains(s, lower) {
			return true
		}
	}
	return false
}
