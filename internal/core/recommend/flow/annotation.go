package flow

// Annotation 邊的附加資訊，只能是本套件定義的幾種型別
type Annotation interface {
	edgeAnnotation()
}

// SourceEdge 源點→食材
type SourceEdge struct {
	ExpiryWeight float64 // 食材權重 × 到期係數
	ExpiryFactor float64
}

// MatchEdge 食材→食譜
type MatchEdge struct {
	Weight            float64
	MatchQuality      float64
	MatchedIngredient string // 食譜中對應的食材描述
	QuantityFactor    float64
	ExpiryFactor      float64
}

// SinkEdge 食譜→匯點
type SinkEdge struct {
	CoverageRatio      float64
	MatchedIngredients []string
	Importance         float64
	MealTypeBoost      float64
}

// NutritionEdge 營養類別→食譜
type NutritionEdge struct {
	Category string
	Hits     int
	Boost    float64
}

// BalancedEdge 均衡餐點→食譜
type BalancedEdge struct {
	Categories int
	Boost      float64
}

// ResidualEdge 為殘餘圖合成的反向邊
type ResidualEdge struct{}

func (SourceEdge) edgeAnnotation()    {}
func (MatchEdge) edgeAnnotation()     {}
func (SinkEdge) edgeAnnotation()      {}
func (NutritionEdge) edgeAnnotation() {}
func (BalancedEdge) edgeAnnotation()  {}
func (ResidualEdge) edgeAnnotation()  {}

// IsResidual 是否為合成的反向邊
func IsResidual(a Annotation) bool {
	_, ok := a.(ResidualEdge)
	return ok || a == nil
}
