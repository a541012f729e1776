package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client 遠端食譜目錄客戶端
type Client struct {
	config *config.CatalogConfig
	client *resty.Client
}

// recipesResponse 目錄服務的回應格式
type recipesResponse struct {
	Recipes []common.RecipeRecord `json:"recipes"`
}

// NewClient 創建食譜目錄客戶端
func NewClient(cfg *config.CatalogConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "recipe-recommender")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	return &Client{
		config: cfg,
		client: client,
	}
}

// ListRecipes 取得候選食譜；餐別為 any 時不帶篩選條件
func (c *Client) ListRecipes(ctx context.Context, mealType common.MealType, limit int) ([]common.RecipeRecord, error) {
	req := c.client.R().SetContext(ctx)
	if mealType != "" && mealType != common.MealAny {
		req.SetQueryParam("meal_type", string(mealType))
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	resp, err := req.Get("/recipes")
	if err != nil {
		return nil, common.ErrCatalogUnavailable.Wrap(fmt.Errorf("failed to send request to catalog: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrCatalogUnavailable.Wrap(fmt.Errorf("catalog returned status %d: %s", resp.StatusCode(), resp.String()))
	}

	var result recipesResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.ErrCatalogUnavailable.Wrap(fmt.Errorf("failed to parse catalog response: %w", err))
	}

	recipes := make([]common.RecipeRecord, 0, len(result.Recipes))
	for _, r := range result.Recipes {
		r.MealType = common.ParseMealType(string(r.MealType))
		recipes = append(recipes, r)
	}
	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}

	common.LogDebug("Catalog recipes fetched",
		zap.String("meal_type", string(mealType)),
		zap.Int("count", len(recipes)),
	)
	return recipes, nil
}

// Ping 檢查目錄服務是否可用
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return common.ErrCatalogUnavailable.Wrap(err)
	}
	if resp.IsError() {
		return common.ErrCatalogUnavailable.Wrap(fmt.Errorf("catalog health returned status %d", resp.StatusCode()))
	}
	return nil
}
