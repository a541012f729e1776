package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

func seed() ([]common.InventoryItem, []common.RecipeRecord) {
	expiry := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	items := []common.InventoryItem{
		{ID: "i1", UserID: "u1", Name: "Spinach", Quantity: 200, Unit: "g", ExpiryDate: &expiry, AboutToExpire: true},
		{ID: "i2", UserID: "u1", Name: "Eggs", Quantity: 6, Unit: "piece"},
		{ID: "i3", UserID: "u2", Name: "Milk", Quantity: 1, Unit: "l"},
	}
	recipes := []common.RecipeRecord{
		{ID: "r1", Title: "Omelette", Ingredients: []string{"egg", "spinach"}, Instructions: []string{"Whisk", "Cook"}, MealType: common.MealBreakfast},
		{ID: "r2", Title: "Creamed Spinach", Ingredients: []string{"spinach", "cream"}, Instructions: []string{"Simmer"}, MealType: common.MealDinner, BaseScore: 20},
		{ID: "r3", Title: "Boiled Egg", Ingredients: []string{"egg"}, Instructions: []string{"Boil"}, MealType: common.MealAny},
	}
	return items, recipes
}

// exerciseStore 對任一實作執行相同的讀寫檢查
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	items, recipes := seed()

	if err := s.SaveInventory(ctx, items); err != nil {
		t.Fatalf("SaveInventory() error = %v", err)
	}
	if err := s.SaveRecipes(ctx, recipes); err != nil {
		t.Fatalf("SaveRecipes() error = %v", err)
	}

	inv, err := s.ListInventory(ctx, "u1")
	if err != nil {
		t.Fatalf("ListInventory() error = %v", err)
	}
	if len(inv) != 2 || inv[0].Name != "Eggs" || inv[1].Name != "Spinach" {
		t.Fatalf("inventory = %+v", inv)
	}
	spinach := inv[1]
	if spinach.ExpiryDate == nil || !spinach.ExpiryDate.Equal(*items[0].ExpiryDate) || !spinach.AboutToExpire {
		t.Errorf("spinach = %+v", spinach)
	}
	if inv[0].ExpiryDate != nil {
		t.Errorf("eggs expiry = %v, want nil", inv[0].ExpiryDate)
	}

	none, err := s.ListInventory(ctx, "nobody")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("unknown user = %v, %v; want empty slice", none, err)
	}

	all, err := s.ListRecipes(ctx, common.MealAny, 0)
	if err != nil {
		t.Fatalf("ListRecipes() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].Title != "Boiled Egg" || len(all[1].Instructions) != 1 || all[1].BaseScore != 20 {
		t.Errorf("recipes = %+v", all)
	}

	breakfast, err := s.ListRecipes(ctx, common.MealBreakfast, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(breakfast) != 2 {
		t.Errorf("breakfast = %+v, want Omelette and Boiled Egg", breakfast)
	}

	limited, _ := s.ListRecipes(ctx, common.MealAny, 1)
	if len(limited) != 1 {
		t.Errorf("limit: len = %d, want 1", len(limited))
	}

	// 相同 id 覆寫
	recipes[0].Title = "Spinach Omelette"
	if err := s.SaveRecipes(ctx, recipes[:1]); err != nil {
		t.Fatal(err)
	}
	again, _ := s.ListRecipes(ctx, common.MealBreakfast, 0)
	if len(again) != 2 || again[1].Title != "Spinach Omelette" {
		t.Errorf("after upsert = %+v", again)
	}

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	s, err := NewSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_CreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "pantry.db")
	s, err := NewSQLiteStore(context.Background(), path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestSaveAssignsIDs(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.SaveRecipes(ctx, []common.RecipeRecord{{Title: "Soup", Ingredients: []string{"water"}, Instructions: []string{"Boil"}}}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ListRecipes(ctx, common.MealAny, 0)
	if len(got) != 1 || got[0].ID == "" || got[0].MealType != common.MealAny {
		t.Errorf("got %+v", got)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), &config.StoreConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	if _, err := Open(context.Background(), &config.StoreConfig{Driver: "mongo"}); err == nil {
		t.Error("Open(mongo) should fail")
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	defer s.Close()

	if _, err := s.db.Exec(ctx, `DELETE FROM inventory_items WHERE id IN ('i1','i2','i3')`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM recipes`); err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)
}
