package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"recipe-recommender/internal/pkg/common"
)

const dateLayout = "2006-01-02"

// header 欄位名稱 → 欄位索引
type header map[string]int

func newHeader(cells []string) header {
	h := make(header, len(cells))
	for i, c := range cells {
		name := strings.ToLower(strings.TrimSpace(c))
		name = strings.ReplaceAll(name, " ", "_")
		if name != "" {
			h[name] = i
		}
	}
	return h
}

func (h header) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) require(names ...string) error {
	for _, n := range names {
		if _, ok := h[n]; !ok {
			return fmt.Errorf("missing column %q", n)
		}
	}
	return nil
}

// splitList 以換行或分號分隔食材、以換行或 | 分隔步驟
func splitList(s string, seps ...string) []string {
	for _, sep := range seps {
		s = strings.ReplaceAll(s, sep, "\n")
	}
	var out []string
	for _, part := range strings.Split(s, "\n") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func recipeFromRow(h header, row []string, line int) (common.RecipeRecord, error) {
	r := common.RecipeRecord{
		ID:           h.get(row, "id"),
		Title:        h.get(row, "title"),
		Image:        h.get(row, "image"),
		Ingredients:  splitList(h.get(row, "ingredients"), ";"),
		Instructions: splitList(h.get(row, "instructions"), "|"),
		MealType:     common.ParseMealType(h.get(row, "meal_type")),
	}
	if r.Title == "" {
		return r, fmt.Errorf("row %d: title is required", line)
	}
	if r.ID == "" {
		r.ID = common.GenerateUUID()
	}
	if v := h.get(row, "base_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return r, fmt.Errorf("row %d: invalid base_score %q: %w", line, v, err)
		}
		r.BaseScore = score
	}
	return r, nil
}

func inventoryFromRow(h header, row []string, line int) (common.InventoryItem, error) {
	it := common.InventoryItem{
		ID:       h.get(row, "id"),
		UserID:   h.get(row, "user_id"),
		Name:     h.get(row, "name"),
		Category: h.get(row, "category"),
		Unit:     h.get(row, "unit"),
	}
	if it.UserID == "" || it.Name == "" {
		return it, fmt.Errorf("row %d: user_id and name are required", line)
	}
	if it.ID == "" {
		it.ID = common.GenerateUUID()
	}

	if v := h.get(row, "quantity"); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return it, fmt.Errorf("row %d: invalid quantity %q: %w", line, v, err)
		}
		it.Quantity = q
	}
	if v := h.get(row, "expiry_date"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return it, fmt.Errorf("row %d: invalid expiry_date %q: %w", line, v, err)
		}
		it.ExpiryDate = &d
	}
	if v := h.get(row, "purchase_date"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return it, fmt.Errorf("row %d: invalid purchase_date %q: %w", line, v, err)
		}
		it.PurchaseDate = d
	}
	if v := h.get(row, "about_to_expire"); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return it, fmt.Errorf("row %d: invalid about_to_expire %q: %w", line, v, err)
		}
		it.AboutToExpire = b
	}
	return it, nil
}
