package recommend

import (
	"testing"
	"time"

	"recipe-recommender/internal/pkg/common"
)

func TestDaysUntilExpiry(t *testing.T) {
	t.Parallel()

	at := func(d time.Duration) *time.Time {
		v := testNow.Add(d)
		return &v
	}

	tests := []struct {
		name   string
		expiry *time.Time
		want   int
	}{
		{name: "no expiry", expiry: nil, want: NoExpiryDays},
		{name: "in two days", expiry: at(48 * time.Hour), want: 2},
		{name: "partial day rounds up", expiry: at(30 * time.Hour), want: 2},
		{name: "later today", expiry: at(time.Hour), want: 1},
		{name: "just expired", expiry: at(-time.Hour), want: 0},
		{name: "long expired", expiry: at(-10 * 24 * time.Hour), want: -1},
	}

	for _, tt := range tests {
		if got := DaysUntilExpiry(tt.expiry, testNow); got != tt.want {
			t.Errorf("%s: DaysUntilExpiry = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestExpiryTierWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days  int
		about bool
		want  float64
	}{
		{-1, false, 5},
		{NoExpiryDays, true, 5},
		{0, false, 4},
		{3, false, 4},
		{4, false, 2},
		{7, false, 2},
		{8, false, 1},
	}
	for _, tt := range tests {
		if got := ExpiryTierWeight(tt.days, tt.about); got != tt.want {
			t.Errorf("ExpiryTierWeight(%d, %v) = %v, want %v", tt.days, tt.about, got, tt.want)
		}
	}
}

func TestWeigh(t *testing.T) {
	t.Parallel()

	about := item("Yogurt", NoExpiryDays)
	about.AboutToExpire = true
	items := []common.InventoryItem{item("Spinach", 2), item("Rice", NoExpiryDays), about, {Name: "  "}}

	got := Weigh(items, Options{PrioritizeExpiring: true}, testNow)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (blank names dropped)", len(got))
	}
	want := map[string]float64{"Spinach": 12, "Rice": 3, "Yogurt": 15}
	for _, w := range got {
		if w.Weight != want[w.Name] {
			t.Errorf("%s weight = %v, want %v", w.Name, w.Weight, want[w.Name])
		}
	}
	if !got[2].Expiring() {
		t.Error("about-to-expire item should count as expiring")
	}

	relaxed := Weigh(items[:1], Options{PrioritizeExpiring: false}, testNow)
	if relaxed[0].Weight != 6 {
		t.Errorf("relaxed weight = %v, want 6", relaxed[0].Weight)
	}

	selected := Weigh(items, Options{PrioritizeExpiring: true, SelectedIngredients: []string{"SPIN", "basmati rice"}}, testNow)
	if len(selected) != 2 {
		t.Fatalf("selected len = %d, want 2", len(selected))
	}
	if selected[0].Weight != 24 || !selected[0].Selected {
		t.Errorf("selected spinach = %+v, want weight 24", selected[0])
	}
}
