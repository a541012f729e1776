package recommendation

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxCount 單次請求可要求的最大食譜數
const MaxCount = 50

// Submitter 提交推薦請求，通常為推薦隊列
type Submitter interface {
	Submit(ctx context.Context, userID string, opts recommend.Options, count int) ([]recommend.RecipeScoreResult, error)
}

// RecommendationRequest 推薦請求
// prioritize_expiring 未提供時視為 true
type RecommendationRequest struct {
	UserID              string   `json:"user_id"`
	MealType            string   `json:"meal_type,omitempty"`
	PrioritizeExpiring  *bool    `json:"prioritize_expiring,omitempty"`
	SelectedIngredients []string `json:"selected_ingredients,omitempty"`
	Count               int      `json:"count,omitempty"`
}

// RecommendationResponse 推薦回應
type RecommendationResponse struct {
	RequestID string                        `json:"request_id"`
	UserID    string                        `json:"user_id"`
	MealType  common.MealType               `json:"meal_type"`
	Count     int                           `json:"count"`
	Recipes   []recommend.RecipeScoreResult `json:"recipes"`
}

// Handler 推薦 API 處理器
type Handler struct {
	submitter Submitter
	debug     bool
}

// NewHandler 創建推薦處理器；debug 為 true 時錯誤回應附帶詳細信息
func NewHandler(submitter Submitter, debug bool) *Handler {
	return &Handler{submitter: submitter, debug: debug}
}

// HandleRecommend 處理 POST /recommendations
func (h *Handler) HandleRecommend(c *gin.Context) {
	var req RecommendationRequest
	if err := common.DecodeJSON(c.Request.Body, &req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		h.respondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	h.serve(c, req)
}

// HandleUserRecommendations 處理 GET /users/:userID/recommendations
// 查詢參數：meal_type、prioritize_expiring、ingredients（逗號分隔）、count
func (h *Handler) HandleUserRecommendations(c *gin.Context) {
	req := RecommendationRequest{
		UserID:   c.Param("userID"),
		MealType: c.Query("meal_type"),
	}

	if raw := c.Query("prioritize_expiring"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("prioritize_expiring must be a boolean")))
			return
		}
		req.PrioritizeExpiring = &v
	}
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("count must be an integer")))
			return
		}
		req.Count = n
	}
	for _, name := range strings.Split(c.Query("ingredients"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			req.SelectedIngredients = append(req.SelectedIngredients, name)
		}
	}

	h.serve(c, req)
}

func (h *Handler) serve(c *gin.Context, req RecommendationRequest) {
	reqID := requestid.Get(c)

	if err := validate(&req); err != nil {
		h.respondError(c, err)
		return
	}

	mealType := common.ParseMealType(req.MealType)
	opts := recommend.Options{
		MealType:            string(mealType),
		PrioritizeExpiring:  true,
		SelectedIngredients: req.SelectedIngredients,
	}
	if req.PrioritizeExpiring != nil {
		opts.PrioritizeExpiring = *req.PrioritizeExpiring
	}

	start := time.Now()
	recipes, err := h.submitter.Submit(c.Request.Context(), req.UserID, opts, req.Count)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = common.ErrGatewayTimeout.Wrap(err)
		}
		common.LogError("推薦失敗",
			zap.Error(err),
			zap.String("request_id", reqID),
			zap.String("user_id", req.UserID),
			zap.Duration("耗時", time.Since(start)),
		)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RecommendationResponse{
		RequestID: reqID,
		UserID:    req.UserID,
		MealType:  mealType,
		Count:     len(recipes),
		Recipes:   recipes,
	})
}

// validate 檢查請求欄位；count 為 0 時交由服務使用預設值
func validate(req *RecommendationRequest) error {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return common.ErrInvalidRequest.Wrap(common.NewValidationError("user_id is required"))
	}
	if req.MealType != "" && !common.IsValidMealType(req.MealType) {
		return common.ErrInvalidRequest.Wrap(common.NewValidationError("unknown meal_type: " + req.MealType))
	}
	if req.Count < 0 || req.Count > MaxCount {
		return common.ErrInvalidRequest.Wrap(common.NewValidationError("count must be between 0 and " + strconv.Itoa(MaxCount)))
	}
	return nil
}

// respondError 依錯誤類型回傳對應的狀態碼
func (h *Handler) respondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	resp := common.ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if h.debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	c.Error(err)
	c.AbortWithStatusJSON(ce.Status, resp)
}
