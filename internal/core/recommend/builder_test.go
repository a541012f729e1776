package recommend

import (
	"math"
	"testing"

	"recipe-recommender/internal/core/recommend/flow"
	"recipe-recommender/internal/pkg/common"
)

func recipe(id, title string, meal common.MealType, ingredients ...string) Recipe {
	return Recipe{
		ID:           id,
		Title:        title,
		Ingredients:  ingredients,
		Instructions: []string{"Cook."},
		MealType:     meal,
	}
}

func TestMealTypeBoost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		recipe, preferred common.MealType
		want              float64
	}{
		{common.MealDinner, common.MealDinner, 2.5},
		{common.MealAny, common.MealDinner, 1.2},
		{common.MealDinner, common.MealAny, 1.2},
		{common.MealAny, common.MealAny, 1.2},
		{common.MealLunch, common.MealDinner, 0.8},
	}
	for _, tt := range tests {
		if got := MealTypeBoost(tt.recipe, tt.preferred); got != tt.want {
			t.Errorf("MealTypeBoost(%s, %s) = %v, want %v", tt.recipe, tt.preferred, got, tt.want)
		}
	}
}

func TestFilterByMealType(t *testing.T) {
	t.Parallel()

	recipes := []Recipe{
		recipe("1", "Pancakes", common.MealBreakfast, "flour"),
		recipe("2", "Stew", common.MealDinner, "beef"),
		recipe("3", "Salad", common.MealAny, "lettuce"),
	}

	if got := FilterByMealType(recipes, common.MealAny); len(got) != 3 {
		t.Errorf("any: len = %d, want 3", len(got))
	}
	got := FilterByMealType(recipes, common.MealDinner)
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		t.Errorf("dinner: got %+v", got)
	}
}

func TestQuantityFactor(t *testing.T) {
	t.Parallel()

	if got := QuantityFactor(0); got != 1 {
		t.Errorf("QuantityFactor(0) = %v, want 1", got)
	}
	if got := QuantityFactor(9); math.Abs(got-2) > 1e-9 {
		t.Errorf("QuantityFactor(9) = %v, want 2", got)
	}
	if got := QuantityFactor(1e6); got != 3 {
		t.Errorf("QuantityFactor(1e6) = %v, want 3", got)
	}
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	ingredients := []WeightedIngredient{
		{Name: "Chicken", Weight: 12, DaysUntilExpiry: 2, Quantity: 0.5, Unit: "kg"},
		{Name: "Rice", Weight: 3, DaysUntilExpiry: NoExpiryDays, Quantity: 1, Unit: "cup"},
		{Name: "Banana", Weight: 3, DaysUntilExpiry: NoExpiryDays, Quantity: 3},
	}
	recipes := []Recipe{
		recipe("1", "Chicken Rice", common.MealDinner, "chicken thigh", "rice", "milk"),
		recipe("2", "Pancakes", common.MealBreakfast, "flour", "egg"),
		recipe("3", "Fruit Bowl", common.MealAny, "yogurt"),
	}

	g := NewBuilder(nil).Build(ingredients, recipes, common.MealDinner)
	n := g.Network

	if len(g.Recipes) != 2 {
		t.Fatalf("len(Recipes) = %d, want 2 after meal filter", len(g.Recipes))
	}

	src, ok := n.Edge(flow.Source, flow.Ingredient(0))
	if !ok {
		t.Fatal("missing source edge for chicken")
	}
	if src.Capacity != 500 {
		t.Errorf("source capacity = %v, want 500", src.Capacity)
	}
	ann := src.Annotation.(flow.SourceEdge)
	if ann.ExpiryFactor != 5 || ann.ExpiryWeight != 60 {
		t.Errorf("source annotation = %+v", ann)
	}
	if rice, _ := n.Edge(flow.Source, flow.Ingredient(1)); rice.Annotation.(flow.SourceEdge).ExpiryFactor != 1 {
		t.Errorf("rice expiry factor = %+v, want 1", rice.Annotation)
	}

	if _, ok := n.Edge(flow.Ingredient(0), flow.Recipe(0)); !ok {
		t.Error("missing chicken→Chicken Rice edge")
	}
	if _, ok := n.Edge(flow.Ingredient(2), flow.Recipe(0)); ok {
		t.Error("banana should not connect to Chicken Rice")
	}

	sink, ok := n.Edge(flow.Recipe(0), flow.Sink)
	if !ok {
		t.Fatal("missing sink edge for Chicken Rice")
	}
	sa := sink.Annotation.(flow.SinkEdge)
	if math.Abs(sa.CoverageRatio-2.0/3.0) > 1e-9 || math.Abs(sink.Capacity-200.0/3.0) > 1e-9 {
		t.Errorf("sink edge = %+v", sink)
	}
	if sa.MealTypeBoost != 2.5 {
		t.Errorf("MealTypeBoost = %v, want 2.5", sa.MealTypeBoost)
	}
	// (60 + 3) × 0.6 + 66.67 × 0.4，再乘以 2.5
	wantImportance := ((60+3)*0.6 + 200.0/3.0*0.4) * 2.5
	if math.Abs(sa.Importance-wantImportance) > 1e-9 {
		t.Errorf("Importance = %v, want %v", sa.Importance, wantImportance)
	}

	if _, ok := n.Edge(flow.Recipe(1), flow.Sink); ok {
		t.Error("unmatched recipe should have no sink edge")
	}
}

func TestBuilder_NutritionEdges(t *testing.T) {
	t.Parallel()

	recipes := []Recipe{
		recipe("1", "Omelette", common.MealAny, "egg", "cheese", "spinach", "milk"),
		recipe("2", "Plain Rice", common.MealAny, "rice"),
	}
	g := NewBuilder(nil).Build(nil, recipes, common.MealAny)

	info := g.Nutrition(0)
	if len(info.Categories) != 3 {
		t.Fatalf("categories = %v, want protein, vegetables, dairy", info.Categories)
	}
	if math.Abs(info.Categories["dairy"]-1.2) > 1e-9 {
		t.Errorf("dairy boost = %v, want 1.2", info.Categories["dairy"])
	}
	if math.Abs(info.BalancedBoost-1.6) > 1e-9 {
		t.Errorf("BalancedBoost = %v, want 1.6", info.BalancedBoost)
	}

	plain := g.Nutrition(1)
	if len(plain.Categories) != 1 || plain.BalancedBoost != 0 {
		t.Errorf("plain rice nutrition = %+v", plain)
	}
}

func TestCategoryBoostCapped(t *testing.T) {
	t.Parallel()

	if got := CategoryBoost(10); got != 1.5 {
		t.Errorf("CategoryBoost(10) = %v, want 1.5", got)
	}
	if got := BalancedBoost(4); math.Abs(got-1.8) > 1e-9 {
		t.Errorf("BalancedBoost(4) = %v, want 1.8", got)
	}
	if got := BalancedBoost(1); got != 0 {
		t.Errorf("BalancedBoost(1) = %v, want 0", got)
	}
}

func TestGraph_UsedIngredients(t *testing.T) {
	t.Parallel()

	ingredients := []WeightedIngredient{
		{Name: "Spinach", Weight: 12, DaysUntilExpiry: 2, Quantity: 1},
		{Name: "Tomato", Weight: 3, DaysUntilExpiry: NoExpiryDays, Quantity: 2},
	}
	recipes := []Recipe{recipe("1", "Salad", common.MealAny, "baby spinach", "tomato", "olive oil")}

	g := NewBuilder(nil).Build(ingredients, recipes, common.MealAny)
	solve(g)

	used := g.UsedIngredients(0)
	if len(used) != 2 {
		t.Fatalf("len(used) = %d, want 2", len(used))
	}
	if used[0].Name != "Spinach" || used[0].MatchedIngredient != "baby spinach" || !used[0].Expiring {
		t.Errorf("used[0] = %+v", used[0])
	}
	if used[1].Flow <= 0 {
		t.Errorf("tomato flow = %v, want > 0", used[1].Flow)
	}
}

// solve 對圖執行一次最大流
func solve(g *Graph) flow.Result {
	return flow.NewSolver(0, nil).MaxFlow(g.Network, flow.Source, flow.Sink)
}
