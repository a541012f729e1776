// Package recommend 依使用者庫存的到期狀況推薦食譜。
//
// 流程：取得庫存與候選食譜 → 加權 → 建立流量網路 → 最大流 → 評分 → 正規化排序。
// 演算法層的錯誤不會往外傳遞，只有資料來源的錯誤會回傳給呼叫端。
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe-recommender/internal/core/recommend/flow"
	"recipe-recommender/internal/pkg/common"
)

const (
	// DefaultCount 預設回傳數量
	DefaultCount = 5
	// DefaultCandidateLimit 每次請求最多載入的候選食譜數
	DefaultCandidateLimit = 1000

	cacheNamespace = "recommendations"
)

// Config 推薦服務參數
type Config struct {
	MaxPaths       int
	DefaultCount   int
	CandidateLimit int
}

// Service 推薦服務
type Service struct {
	inventory InventorySource
	recipes   RecipeSource
	cache     ResultCache

	builder *Builder
	solver  *flow.Solver
	scorer  *Scorer
	rand    Random
	logger  *zap.Logger
	now     func() time.Time
	cfg     Config
}

// Option 服務選項
type Option func(*Service)

// WithLogger 注入日誌
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRandom 注入亂數來源
func WithRandom(r Random) Option {
	return func(s *Service) {
		if r != nil {
			s.rand = r
		}
	}
}

// WithClock 注入時鐘
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCache 注入結果快取
func WithCache(cache ResultCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithConfig 設定參數，零值欄位使用預設值
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.MaxPaths > 0 {
			s.cfg.MaxPaths = cfg.MaxPaths
		}
		if cfg.DefaultCount > 0 {
			s.cfg.DefaultCount = cfg.DefaultCount
		}
		if cfg.CandidateLimit > 0 {
			s.cfg.CandidateLimit = cfg.CandidateLimit
		}
	}
}

// NewService 建立推薦服務
func NewService(inventory InventorySource, recipes RecipeSource, opts ...Option) *Service {
	s := &Service{
		inventory: inventory,
		recipes:   recipes,
		logger:    zap.NewNop(),
		now:       time.Now,
		cfg: Config{
			MaxPaths:       flow.DefaultMaxPaths,
			DefaultCount:   DefaultCount,
			CandidateLimit: DefaultCandidateLimit,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = NewRandom(0)
	}
	s.builder = NewBuilder(s.logger)
	s.solver = flow.NewSolver(s.cfg.MaxPaths, s.logger)
	s.scorer = NewScorer(s.rand, s.logger)
	return s
}

// Recommend 取得資料後排序推薦食譜，結果數量不超過 count
func (s *Service) Recommend(ctx context.Context, userID string, opts Options, count int) ([]RecipeScoreResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.NewValidationError("userID is required")
	}
	if count <= 0 {
		count = s.cfg.DefaultCount
	}
	mealType := common.ParseMealType(opts.MealType)

	start := time.Now()
	items, recipes, err := s.fetch(ctx, userID, mealType)
	if err != nil {
		common.LogRecommendation(userID, 0, time.Since(start), err)
		return nil, err
	}

	key := s.cacheKey(userID, opts, count, items, recipes)
	if cached, ok := s.cached(ctx, key); ok {
		common.LogCacheHit(cacheNamespace)
		return cached, nil
	}

	results := s.Rank(items, recipes, opts, count)
	s.store(ctx, key, results)
	common.LogRecommendation(userID, len(results), time.Since(start), nil)
	return results, nil
}

// fetch 平行取得庫存與候選食譜
func (s *Service) fetch(ctx context.Context, userID string, mealType common.MealType) ([]common.InventoryItem, []Recipe, error) {
	var (
		items   []common.InventoryItem
		recipes []Recipe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.inventory.ListInventory(gctx, userID)
		if err != nil {
			return sourceError("list inventory", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recipes, err = s.recipes.ListRecipes(gctx, mealType, s.cfg.CandidateLimit)
		if err != nil {
			return sourceError("list recipes", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return items, recipes, nil
}

// sourceError 資料來源錯誤一律帶有錯誤代碼；已分類的錯誤（如目錄服務）保留原代碼
func sourceError(op string, err error) error {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return common.ErrStoreUnavailable.Wrap(fmt.Errorf("%s: %w", op, err))
}

// Rank 純計算的排序流程，不會失敗；內部異常時退回簡化評分
func (s *Service) Rank(items []common.InventoryItem, recipes []Recipe, opts Options, count int) (results []RecipeScoreResult) {
	if count <= 0 {
		count = s.cfg.DefaultCount
	}
	mealType := common.ParseMealType(opts.MealType)

	eligible := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.Eligible() {
			eligible = append(eligible, r)
		}
	}
	if len(items) == 0 || len(eligible) == 0 {
		return []RecipeScoreResult{}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("推薦計算失敗，改用簡化評分", zap.Any("panic", r))
			results = heuristicFallback(eligible, mealType, count)
		}
	}()

	return s.rank(items, eligible, opts, mealType, count)
}

func (s *Service) rank(items []common.InventoryItem, recipes []Recipe, opts Options, mealType common.MealType, count int) []RecipeScoreResult {
	weighted := Weigh(items, opts, s.now())
	if len(weighted) == 0 {
		return []RecipeScoreResult{}
	}

	graph := s.builder.Build(weighted, recipes, mealType)
	res := s.solver.MaxFlow(graph.Network, flow.Source, flow.Sink)
	s.logger.Debug("max flow solved",
		zap.Float64("total_flow", res.TotalFlow),
		zap.Int("paths", len(res.Paths)),
		zap.Bool("truncated", res.Truncated),
	)

	valid := make([]RecipeScoreResult, 0, len(graph.Recipes))
	for j, recipe := range graph.Recipes {
		used := graph.UsedIngredients(j)
		if len(used) == 0 {
			continue
		}
		boost := MealTypeBoost(recipe.MealType, mealType)
		score := s.scorer.Score(recipe, used, boost, graph.Nutrition(j))
		names := dedupeNames(used)
		valid = append(valid, RecipeScoreResult{
			ID:                recipe.ID,
			Title:             recipe.Title,
			Image:             recipe.Image,
			Score:             score.Value,
			MealType:          recipe.MealType,
			UsedIngredients:   names,
			MissedIngredients: score.Missed,
			Instructions:      recipe.Instructions,
			MatchCount:        len(names),
			TotalIngredients:  len(recipe.Ingredients),
			ExpiringCount:     score.ExpiringCount,
			PerfectMatch:      score.PerfectMatch,
			importance:        graph.Importance(j),
		})
	}

	if len(valid) == 0 {
		s.logger.Debug("沒有食譜使用到庫存食材，改用隨機餐別排序", zap.Int("candidates", len(graph.Recipes)))
		valid = s.randomFallback(graph.Recipes, mealType)
	} else {
		stretchScores(valid)
	}

	sortResults(valid)
	if len(valid) > count {
		valid = valid[:count]
	}
	return valid
}

func dedupeNames(used []UsedIngredient) []string {
	seen := make(map[string]bool, len(used))
	names := make([]string, 0, len(used))
	for _, u := range used {
		key := strings.ToLower(strings.TrimSpace(u.Name))
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, u.Name)
	}
	return names
}

// stretchScores 以指數 0.7 拉開相近分數，保持原本的順序
func stretchScores(results []RecipeScoreResult) {
	if len(results) < 2 {
		return
	}
	lo, hi := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		lo = min(lo, r.Score)
		hi = max(hi, r.Score)
	}
	if hi == lo {
		return
	}

	top := float64(hi)
	lower := math.Max(0, math.Min(float64(lo), top-40))
	for i := range results {
		norm := float64(results[i].Score-lo) / float64(hi-lo)
		results[i].Score = int(math.Round(lower + (top-lower)*math.Pow(norm, 0.7)))
	}
}

func sortResults(results []RecipeScoreResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].importance != results[j].importance {
			return results[i].importance > results[j].importance
		}
		return results[i].Title < results[j].Title
	})
}

func baseScore(r Recipe) float64 {
	if r.BaseScore > 0 {
		return r.BaseScore
	}
	return DefaultBaseScore
}

func emptyResult(r Recipe, score int) RecipeScoreResult {
	missed := append([]string{}, r.Ingredients...)
	return RecipeScoreResult{
		ID:                r.ID,
		Title:             r.Title,
		Image:             r.Image,
		Score:             score,
		MealType:          r.MealType,
		UsedIngredients:   []string{},
		MissedIngredients: missed,
		Instructions:      r.Instructions,
		TotalIngredients:  len(r.Ingredients),
	}
}

// randomFallback 沒有任何食譜用到庫存時，以餐別加成加上亂數排序
func (s *Service) randomFallback(recipes []Recipe, mealType common.MealType) []RecipeScoreResult {
	out := make([]RecipeScoreResult, 0, len(recipes))
	for _, r := range recipes {
		boost := MealTypeBoost(r.MealType, mealType)
		score := math.Min(60, baseScore(r)*boost*(0.8+0.4*s.rand.Float64()))
		out = append(out, emptyResult(r, int(math.Round(score))))
	}
	return out
}

// heuristicFallback 依原順序取前 count 筆餐別符合的食譜，給予簡化分數
func heuristicFallback(recipes []Recipe, mealType common.MealType, count int) []RecipeScoreResult {
	filtered := FilterByMealType(recipes, mealType)
	if len(filtered) > count {
		filtered = filtered[:count]
	}
	out := make([]RecipeScoreResult, 0, len(filtered))
	for _, r := range filtered {
		score := math.Min(50, baseScore(r)*MealTypeBoost(r.MealType, mealType))
		out = append(out, emptyResult(r, int(math.Round(score))))
	}
	return out
}
