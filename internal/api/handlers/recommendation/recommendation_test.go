package recommendation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

type fakeSubmitter struct {
	userID string
	opts   recommend.Options
	count  int
	calls  int
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, userID string, opts recommend.Options, count int) ([]recommend.RecipeScoreResult, error) {
	f.calls++
	f.userID, f.opts, f.count = userID, opts, count
	if f.err != nil {
		return nil, f.err
	}
	return []recommend.RecipeScoreResult{
		{ID: "r1", Title: "Omelette", Score: 88, MealType: common.MealBreakfast, UsedIngredients: []string{"eggs"}},
	}, nil
}

func newEngine(sub Submitter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(sub, true)
	r.POST("/recommendations", h.HandleRecommend)
	r.GET("/users/:userID/recommendations", h.HandleUserRecommendations)
	return r
}

func TestHandleRecommend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCalls  int
		check      func(t *testing.T, f *fakeSubmitter)
	}{
		{
			name:       "defaults",
			body:       `{"user_id":"u1"}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, f *fakeSubmitter) {
				if !f.opts.PrioritizeExpiring {
					t.Error("prioritize_expiring should default to true")
				}
				if f.opts.MealType != string(common.MealAny) || f.count != 0 {
					t.Errorf("opts = %+v, count = %d", f.opts, f.count)
				}
			},
		},
		{
			name:       "explicit options",
			body:       `{"user_id":" u2 ","meal_type":"Dinner","prioritize_expiring":false,"selected_ingredients":["rice"],"count":3}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, f *fakeSubmitter) {
				if f.userID != "u2" || f.opts.MealType != string(common.MealDinner) || f.opts.PrioritizeExpiring || f.count != 3 {
					t.Errorf("user = %q, opts = %+v, count = %d", f.userID, f.opts, f.count)
				}
				if len(f.opts.SelectedIngredients) != 1 || f.opts.SelectedIngredients[0] != "rice" {
					t.Errorf("selection = %v", f.opts.SelectedIngredients)
				}
			},
		},
		{name: "missing user", body: `{"meal_type":"lunch"}`, wantStatus: http.StatusBadRequest},
		{name: "blank user", body: `{"user_id":"   "}`, wantStatus: http.StatusBadRequest},
		{name: "unknown meal type", body: `{"user_id":"u1","meal_type":"brunch"}`, wantStatus: http.StatusBadRequest},
		{name: "count too large", body: `{"user_id":"u1","count":500}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"user_id":`, wantStatus: http.StatusBadRequest},
		{name: "trailing json", body: `{"user_id":"u1"}{"user_id":"u2"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeSubmitter{}
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			newEngine(f).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if f.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", f.calls, tt.wantCalls)
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestHandleRecommend_Response(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(`{"user_id":"u1","meal_type":"breakfast"}`))
	newEngine(&fakeSubmitter{}).ServeHTTP(w, req)

	var resp RecommendationResponse
	if err := common.ParseJSONBytes(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "u1" || resp.MealType != common.MealBreakfast || resp.Count != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Recipes[0].Title != "Omelette" || resp.Recipes[0].Score != 88 {
		t.Errorf("recipes = %+v", resp.Recipes)
	}
}

func TestHandleRecommend_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		status   int
		wantCode string
	}{
		{"queue full", common.ErrQueueFull, http.StatusServiceUnavailable, "QUEUE_FULL"},
		{"store down", common.ErrStoreUnavailable.Wrap(errors.New("dial tcp")), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{"validation", common.NewValidationError("user id must not be empty"), http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, common.ErrCodeGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, common.ErrCodeInternalError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(`{"user_id":"u1"}`))
			newEngine(&fakeSubmitter{err: tt.err}).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var resp common.ErrorResponse
			if err := common.ParseJSONBytes(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleUserRecommendations(t *testing.T) {
	t.Parallel()

	f := &fakeSubmitter{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/users/u7/recommendations?meal_type=lunch&prioritize_expiring=false&ingredients=rice,%20beans,&count=2", nil)
	newEngine(f).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if f.userID != "u7" || f.opts.MealType != string(common.MealLunch) || f.opts.PrioritizeExpiring || f.count != 2 {
		t.Errorf("user = %q, opts = %+v, count = %d", f.userID, f.opts, f.count)
	}
	if got := strings.Join(f.opts.SelectedIngredients, "|"); got != "rice|beans" {
		t.Errorf("selection = %q", got)
	}

	for _, q := range []string{"prioritize_expiring=maybe", "count=abc", "count=-1"} {
		w := httptest.NewRecorder()
		newEngine(&fakeSubmitter{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/u7/recommendations?"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}
