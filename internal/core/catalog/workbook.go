package catalog

import (
	"fmt"
	"io"

	"recipe-recommender/internal/pkg/common"

	"github.com/xuri/excelize/v2"
)

const (
	// RecipesSheet 食譜工作表名稱
	RecipesSheet = "Recipes"
	// InventorySheet 庫存工作表名稱
	InventorySheet = "Inventory"
)

// Workbook 匯入檔的內容
type Workbook struct {
	Recipes   []common.RecipeRecord
	Inventory []common.InventoryItem
}

// ParseWorkbook 讀取 xlsx 的 Recipes 與 Inventory 工作表，缺少的工作表視為空
func ParseWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	if idx, _ := f.GetSheetIndex(RecipesSheet); idx >= 0 {
		rows, err := f.GetRows(RecipesSheet)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", RecipesSheet, err)
		}
		if wb.Recipes, err = parseRecipeRows(rows); err != nil {
			return nil, fmt.Errorf("%s: %w", RecipesSheet, err)
		}
	}
	if idx, _ := f.GetSheetIndex(InventorySheet); idx >= 0 {
		rows, err := f.GetRows(InventorySheet)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", InventorySheet, err)
		}
		if wb.Inventory, err = parseInventoryRows(rows); err != nil {
			return nil, fmt.Errorf("%s: %w", InventorySheet, err)
		}
	}
	return wb, nil
}

func parseRecipeRows(rows [][]string) ([]common.RecipeRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	h := newHeader(rows[0])
	if err := h.require("title", "ingredients", "instructions"); err != nil {
		return nil, err
	}
	out := make([]common.RecipeRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		r, err := recipeFromRow(h, row, i+2)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseInventoryRows(rows [][]string) ([]common.InventoryItem, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	h := newHeader(rows[0])
	if err := h.require("user_id", "name"); err != nil {
		return nil, err
	}
	out := make([]common.InventoryItem, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		it, err := inventoryFromRow(h, row, i+2)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
