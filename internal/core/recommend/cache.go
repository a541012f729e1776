package recommend

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-recommender/internal/pkg/common"
)

// cacheKey 以使用者、選項、數量與資料快照計算指紋，任何輸入變動都會產生新的鍵
func (s *Service) cacheKey(userID string, opts Options, count int, items []common.InventoryItem, recipes []Recipe) string {
	selected := normalizeSelection(opts.SelectedIngredients)
	sort.Strings(selected)

	parts := []string{
		userID,
		string(common.ParseMealType(opts.MealType)),
		strconv.FormatBool(opts.PrioritizeExpiring),
		strings.Join(selected, ","),
		strconv.Itoa(count),
		s.now().Format(time.DateOnly),
	}
	for _, it := range items {
		expiry := ""
		if it.ExpiryDate != nil {
			expiry = it.ExpiryDate.UTC().Format(time.RFC3339)
		}
		parts = append(parts, it.ID, it.Name,
			strconv.FormatFloat(it.Quantity, 'g', -1, 64), it.Unit,
			expiry, strconv.FormatBool(it.AboutToExpire))
	}
	// 同一 ID 的食譜內容更新後也要換鍵
	for _, r := range recipes {
		parts = append(parts, r.ID, r.Title, r.Image, string(r.MealType),
			strconv.FormatFloat(r.BaseScore, 'g', -1, 64),
			strconv.Itoa(len(r.Ingredients)))
		parts = append(parts, r.Ingredients...)
		parts = append(parts, strconv.Itoa(len(r.Instructions)))
		parts = append(parts, r.Instructions...)
	}
	return common.Fingerprint(parts...)
}

func (s *Service) cached(ctx context.Context, key string) ([]RecipeScoreResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheNamespace, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			s.logger.Warn("讀取推薦快取失敗", zap.Error(err))
		}
		common.LogCacheMiss(cacheNamespace)
		return nil, false
	}
	var results []RecipeScoreResult
	if err := common.ParseJSON(raw, &results); err != nil {
		s.logger.Warn("推薦快取內容無法解析", zap.Error(err))
		return nil, false
	}
	return results, true
}

func (s *Service) store(ctx context.Context, key string, results []RecipeScoreResult) {
	if s.cache == nil {
		return
	}
	raw, err := common.ToJSON(results)
	if err != nil {
		s.logger.Warn("推薦結果序列化失敗", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, cacheNamespace, key, raw); err != nil {
		s.logger.Warn("寫入推薦快取失敗", zap.Error(err))
	}
}
