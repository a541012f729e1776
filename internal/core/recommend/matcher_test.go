package recommend

import (
	"math"
	"testing"
)

func TestNormalizeQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		quantity float64
		unit     string
		want     float64
	}{
		{2, "kg", 2000},
		{1.5, "Kilogram", 1500},
		{1, "l", 1000},
		{1, "liter", 1000},
		{2, "tablespoon", 30},
		{3, "teaspoon", 15},
		{0.5, "cup", 120},
		{4, "piece", 4},
		{4, "unit", 4},
		{7, "", 7},
	}

	for _, tt := range tests {
		if got := NormalizeQuantity(tt.quantity, tt.unit); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeQuantity(%v, %q) = %v, want %v", tt.quantity, tt.unit, got, tt.want)
		}
	}
}

func TestNormalizeQuantity_IdentityUnitsIdempotent(t *testing.T) {
	t.Parallel()

	for _, unit := range []string{"unit", "piece", "bunch", ""} {
		for _, q := range []float64{0, 1, 2.5, 12} {
			once := NormalizeQuantity(q, unit)
			if twice := NormalizeQuantity(once, unit); twice != once {
				t.Errorf("normalize twice(%v, %q) = %v, want %v", q, unit, twice, once)
			}
		}
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Milk ", "milk"},
		{"Salt & Pepper", "salt pepper"},
		{"Cream of the Crop", "cream crop"},
		{"Jalapeño, sliced", "jalapeno sliced"},
		{"2% Milk", "2 milk"},
		{"!!!", ""},
		{"Crème Brûlée", "creme brulee"},
		{"Сыр Плавленый", "сыр плавленый"},
		{"Ёлка", "ёлка"},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchIngredient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		inventory  string
		recipe     []string
		wantMatch  string
		minQuality float64
		maxQuality float64
	}{
		{name: "exact", inventory: "Milk", recipe: []string{"Milk"}, wantMatch: "Milk", minQuality: 1, maxQuality: 1},
		{name: "containment", inventory: "Milk", recipe: []string{"2% Milk"}, wantMatch: "2% Milk", minQuality: 0.7, maxQuality: 0.95},
		{name: "reverse containment", inventory: "Fresh Baby Spinach", recipe: []string{"spinach"}, wantMatch: "spinach", minQuality: 0.7, maxQuality: 0.95},
		{name: "token overlap", inventory: "cheddar cheese block", recipe: []string{"shredded cheddar"}, wantMatch: "shredded cheddar", minQuality: 0.6, maxQuality: 0.9},
		{name: "prefers best", inventory: "flour", recipe: []string{"2 cups flour", "flour"}, wantMatch: "flour", minQuality: 1, maxQuality: 1},
		{name: "no match", inventory: "banana", recipe: []string{"chicken breast", "rice"}, wantMatch: "", minQuality: 0, maxQuality: 0},
		{name: "empty inventory name", inventory: "  ", recipe: []string{"rice"}, wantMatch: "", minQuality: 0, maxQuality: 0},
		{name: "cjk short words", inventory: "嫩 豆腐", recipe: []string{"豆腐 湯"}, wantMatch: "", minQuality: 0, maxQuality: 0},
		{name: "cyrillic token overlap", inventory: "сыр плавленый", recipe: []string{"сыр твёрдый"}, wantMatch: "сыр твёрдый", minQuality: 0.7499, maxQuality: 0.7501},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MatchIngredient(tt.inventory, tt.recipe)
			if got.BestMatch != tt.wantMatch {
				t.Errorf("BestMatch = %q, want %q", got.BestMatch, tt.wantMatch)
			}
			if got.Quality < tt.minQuality || got.Quality > tt.maxQuality {
				t.Errorf("Quality = %v, want in [%v, %v]", got.Quality, tt.minQuality, tt.maxQuality)
			}
			if tt.wantMatch == "" && got.Matched() {
				t.Errorf("Matched() = true for %+v", got)
			}
		})
	}
}

func TestMatchIngredient_ShortWordsIgnored(t *testing.T) {
	t.Parallel()

	// 長度不超過 2 的字不參與字詞重疊
	got := MatchIngredient("ox tail", []string{"ox liver"})
	if got.Quality != 0 {
		t.Errorf("Quality = %v, want 0", got.Quality)
	}
}

func TestMatchIngredient_CountsCharacters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		inventory string
		recipe    string
		want      float64
	}{
		// 0.7 + 0.25 × 3/11
		{"сыр", "сыр твёрдый", 0.7 + 0.25*3.0/11.0},
		// 0.7 + 0.25 × 2/3
		{"豆腐", "嫩豆腐", 0.7 + 0.25*2.0/3.0},
		// 0.6 + 0.05 × 5
		{"масло сливочное", "масло оливковое", 0.6 + 0.05*5},
	}

	for _, tt := range tests {
		got := MatchIngredient(tt.inventory, []string{tt.recipe})
		if math.Abs(got.Quality-tt.want) > 1e-9 {
			t.Errorf("MatchIngredient(%q, %q).Quality = %v, want %v", tt.inventory, tt.recipe, got.Quality, tt.want)
		}
	}
}
