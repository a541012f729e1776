package store

import (
	"context"
	"sort"
	"sync"

	"recipe-recommender/internal/pkg/common"
)

// MemoryStore 記憶體資料來源，用於開發與測試
type MemoryStore struct {
	mu        sync.RWMutex
	inventory map[string]map[string]common.InventoryItem // user → id → item
	recipes   map[string]common.RecipeRecord
}

// NewMemoryStore 建立空的記憶體資料來源
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inventory: make(map[string]map[string]common.InventoryItem),
		recipes:   make(map[string]common.RecipeRecord),
	}
}

func (s *MemoryStore) ListInventory(ctx context.Context, userID string) ([]common.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]common.InventoryItem, 0, len(s.inventory[userID]))
	for _, it := range s.inventory[userID] {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *MemoryStore) ListRecipes(ctx context.Context, mealType common.MealType, limit int) ([]common.RecipeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, filter := mealTypeFilter(mealType)
	recipes := make([]common.RecipeRecord, 0, len(s.recipes))
	for _, r := range s.recipes {
		if filter && r.MealType != m && r.MealType != common.MealAny {
			continue
		}
		recipes = append(recipes, r)
	}
	sort.Slice(recipes, func(i, j int) bool {
		if recipes[i].Title != recipes[j].Title {
			return recipes[i].Title < recipes[j].Title
		}
		return recipes[i].ID < recipes[j].ID
	})
	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}

func (s *MemoryStore) SaveInventory(ctx context.Context, items []common.InventoryItem) error {
	ensureInventoryIDs(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if s.inventory[it.UserID] == nil {
			s.inventory[it.UserID] = make(map[string]common.InventoryItem)
		}
		s.inventory[it.UserID][it.ID] = it
	}
	return nil
}

func (s *MemoryStore) SaveRecipes(ctx context.Context, recipes []common.RecipeRecord) error {
	ensureRecipeIDs(recipes)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recipes {
		r.MealType = common.ParseMealType(string(r.MealType))
		s.recipes[r.ID] = r
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
