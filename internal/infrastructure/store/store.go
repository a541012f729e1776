// Package store 提供庫存與食譜資料來源：記憶體、SQLite 與 PostgreSQL。
package store

import (
	"context"
	"fmt"
	"time"

	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 庫存與食譜的讀寫介面
type Store interface {
	ListInventory(ctx context.Context, userID string) ([]common.InventoryItem, error)
	ListRecipes(ctx context.Context, mealType common.MealType, limit int) ([]common.RecipeRecord, error)
	SaveInventory(ctx context.Context, items []common.InventoryItem) error
	SaveRecipes(ctx context.Context, recipes []common.RecipeRecord) error
	Ping(ctx context.Context) error
	Close() error
}

// Open 依設定開啟資料來源
func Open(ctx context.Context, cfg *config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "memory":
		s = NewMemoryStore()
	case "sqlite":
		s, err = NewSQLiteStore(ctx, cfg.DSN)
	case "postgres":
		s, err = NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, common.ErrStoreUnavailable.Wrap(err)
	}

	common.LogInfo("資料來源已連線", zap.String("driver", cfg.Driver))
	return s, nil
}

// mealTypeFilter 偏好為 any 時不篩選
func mealTypeFilter(mealType common.MealType) (common.MealType, bool) {
	m := common.ParseMealType(string(mealType))
	return m, m != common.MealAny
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	return common.ToJSON(list)
}

func decodeList(raw string) ([]string, error) {
	var list []string
	if raw == "" {
		return list, nil
	}
	if err := common.ParseJSON(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func parseTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ensureIDs 為缺少識別碼的資料補上 UUID
func ensureRecipeIDs(recipes []common.RecipeRecord) {
	for i := range recipes {
		if recipes[i].ID == "" {
			recipes[i].ID = common.GenerateUUID()
		}
	}
}

func ensureInventoryIDs(items []common.InventoryItem) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = common.GenerateUUID()
		}
	}
}
