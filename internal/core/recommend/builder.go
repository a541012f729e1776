package recommend

import (
	"math"

	"go.uber.org/zap"

	"recipe-recommender/internal/core/recommend/flow"
	"recipe-recommender/internal/pkg/common"
)

// MealTypeBoost 餐別加成：完全符合 2.5、任一方為 any 1.2、不符 0.8
func MealTypeBoost(recipeMeal, preferred common.MealType) float64 {
	switch {
	case preferred != common.MealAny && recipeMeal == preferred:
		return 2.5
	case preferred == common.MealAny || recipeMeal == common.MealAny:
		return 1.2
	default:
		return 0.8
	}
}

// FilterByMealType 保留指定餐別或標示為 any 的食譜；偏好為 any 時全部保留
func FilterByMealType(recipes []Recipe, preferred common.MealType) []Recipe {
	if preferred == common.MealAny {
		return recipes
	}
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.MealType == preferred || r.MealType == common.MealAny {
			out = append(out, r)
		}
	}
	return out
}

// QuantityFactor 對數飽和的數量係數，上限 3
func QuantityFactor(normalizedQuantity float64) float64 {
	return math.Min(3, math.Log10(normalizedQuantity+1)+1)
}

// Graph 一次推薦所建立的流量網路與其索引
type Graph struct {
	Network     *flow.Network
	Ingredients []WeightedIngredient // 索引即 flow.Ingredient(i)
	Recipes     []Recipe             // 餐別篩選後的食譜，索引即 flow.Recipe(j)
	MealType    common.MealType
}

// Builder 流量網路建構器
type Builder struct {
	logger *zap.Logger
}

// NewBuilder 建立建構器
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build 建立 源點→食材→食譜→匯點 的網路，並加上營養類別與均衡餐點頂點
func (b *Builder) Build(ingredients []WeightedIngredient, recipes []Recipe, preferred common.MealType) *Graph {
	g := &Graph{
		Network:     flow.NewNetwork(),
		Ingredients: ingredients,
		Recipes:     FilterByMealType(recipes, preferred),
		MealType:    preferred,
	}
	n := g.Network

	for i, ing := range ingredients {
		factor := ing.ExpiryFactor()
		n.AddEdge(flow.Source, flow.Ingredient(i), ing.NormalizedQuantity(), flow.SourceEdge{
			ExpiryWeight: ing.Weight * factor,
			ExpiryFactor: factor,
		})
	}

	for j, recipe := range g.Recipes {
		rv := flow.Recipe(j)
		n.AddVertex(rv)
		boost := MealTypeBoost(recipe.MealType, preferred)

		var matchedNames []string
		urgency := 0.0
		for i, ing := range ingredients {
			m := MatchIngredient(ing.Name, recipe.Ingredients)
			if m.Quality < EdgeMatchThreshold {
				continue
			}
			qty := ing.NormalizedQuantity()
			qf := QuantityFactor(qty)
			factor := ing.ExpiryFactor()
			n.AddEdge(flow.Ingredient(i), rv, qty, flow.MatchEdge{
				Weight:            ing.Weight*0.2 + factor*0.45 + m.Quality*0.15 + boost*qf*0.2,
				MatchQuality:      m.Quality,
				MatchedIngredient: m.BestMatch,
				QuantityFactor:    qf,
				ExpiryFactor:      factor,
			})
			matchedNames = append(matchedNames, ing.Name)
			urgency += ing.Weight * factor
		}

		if len(matchedNames) > 0 {
			coverage := math.Min(1.0, float64(len(matchedNames))/float64(len(recipe.Ingredients)))
			n.AddEdge(rv, flow.Sink, coverage*100, flow.SinkEdge{
				CoverageRatio:      coverage,
				MatchedIngredients: matchedNames,
				Importance:         (urgency*0.6 + coverage*100*0.4) * boost,
				MealTypeBoost:      boost,
			})
		}

		b.addNutrition(n, rv, recipe)
	}

	b.logger.Debug("flow network built",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("recipes", len(g.Recipes)),
		zap.Int("edges", n.EdgeCount()),
	)
	return g
}

func (b *Builder) addNutrition(n *flow.Network, rv flow.VertexID, recipe Recipe) {
	hits := CategoryHits(recipe.Ingredients)
	present := 0
	for c, category := range NutritionCategories {
		count := hits[category]
		if count == 0 {
			continue
		}
		present++
		boost := CategoryBoost(count)
		n.AddEdge(flow.Nutrition(c), rv, boost, flow.NutritionEdge{
			Category: category,
			Hits:     count,
			Boost:    boost,
		})
	}
	if boost := BalancedBoost(present); boost > 0 {
		n.AddEdge(flow.Balanced, rv, boost, flow.BalancedEdge{
			Categories: present,
			Boost:      boost,
		})
	}
}

// UsedIngredients 回傳有流量或配對品質達門檻的食材
func (g *Graph) UsedIngredients(j int) []UsedIngredient {
	var used []UsedIngredient
	for _, e := range g.Network.InEdges(flow.Recipe(j)) {
		ann, ok := e.Annotation.(flow.MatchEdge)
		if !ok || e.From.Kind != flow.KindIngredient {
			continue
		}
		if e.Flow <= 0 && ann.MatchQuality < UsedMatchThreshold {
			continue
		}
		ing := g.Ingredients[e.From.Index]
		used = append(used, UsedIngredient{
			Name:              ing.Name,
			MatchedIngredient: ann.MatchedIngredient,
			Quality:           ann.MatchQuality,
			DaysUntilExpiry:   ing.DaysUntilExpiry,
			Expiring:          ing.Expiring(),
			Quantity:          ing.NormalizedQuantity(),
			Weight:            ing.Weight,
			Flow:              e.Flow,
		})
	}
	return used
}

// Nutrition 回傳食譜的營養加成
func (g *Graph) Nutrition(j int) NutritionInfo {
	info := NutritionInfo{Categories: make(map[string]float64)}
	for _, e := range g.Network.InEdges(flow.Recipe(j)) {
		switch ann := e.Annotation.(type) {
		case flow.NutritionEdge:
			info.Categories[ann.Category] = ann.Boost
		case flow.BalancedEdge:
			info.BalancedBoost = ann.Boost
		}
	}
	return info
}

// Importance 食譜重要度，沒有匹配時為 0
func (g *Graph) Importance(j int) float64 {
	if e, ok := g.Network.Edge(flow.Recipe(j), flow.Sink); ok {
		if ann, ok := e.Annotation.(flow.SinkEdge); ok {
			return ann.Importance
		}
	}
	return 0
}
