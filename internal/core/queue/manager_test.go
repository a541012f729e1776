package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

type stubRecommender struct {
	block chan struct{}
	err   error
}

func (s *stubRecommender) Recommend(ctx context.Context, userID string, _ recommend.Options, count int) ([]recommend.RecipeScoreResult, error) {
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]recommend.RecipeScoreResult, count)
	for i := range out {
		out[i] = recommend.RecipeScoreResult{ID: userID, Title: "dish"}
	}
	return out, nil
}

func TestManager_Submit(t *testing.T) {
	t.Parallel()

	m := NewManager(&config.QueueConfig{Workers: 2, MaxSize: 4}, &stubRecommender{})
	defer m.Close()

	got, err := m.Submit(context.Background(), "user-1", recommend.Options{}, 3)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(got) != 3 || got[0].ID != "user-1" {
		t.Errorf("Submit() = %+v", got)
	}
	if status := m.GetQueueStatus(); status.ProcessedCount != 1 || status.Workers != 2 {
		t.Errorf("status = %+v", status)
	}
}

func TestManager_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("store down")
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 1}, &stubRecommender{err: boom})
	defer m.Close()

	if _, err := m.Submit(context.Background(), "user-1", recommend.Options{}, 1); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if status := m.GetQueueStatus(); status.FailedCount != 1 {
		t.Errorf("FailedCount = %d, want 1", status.FailedCount)
	}
}

func TestManager_QueueFull(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 1}, &stubRecommender{block: block})
	defer m.Close()
	defer close(block)

	ctx := context.Background()
	// 第一個請求被 worker 取走並阻塞
	if _, err := m.Enqueue(ctx, "a", recommend.Options{}, 1); err != nil {
		t.Fatalf("first Enqueue() error = %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for m.GetQueueStatus().QueueLength != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := m.Enqueue(ctx, "b", recommend.Options{}, 1); err != nil {
		t.Fatalf("second Enqueue() error = %v", err)
	}
	if _, err := m.Enqueue(ctx, "c", recommend.Options{}, 1); !errors.Is(err, common.ErrQueueFull) {
		t.Errorf("third Enqueue() err = %v, want ErrQueueFull", err)
	}
}

func TestManager_ClosedRejects(t *testing.T) {
	t.Parallel()

	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 1}, &stubRecommender{})
	m.Close()
	m.Close()

	if _, err := m.Enqueue(context.Background(), "a", recommend.Options{}, 1); !errors.Is(err, common.ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestManager_CloseRepliesToPendingRequests(t *testing.T) {
	t.Parallel()

	// 沒有 worker，請求只會停留在隊列中
	m := NewManager(&config.QueueConfig{Workers: 0, MaxSize: 2}, &stubRecommender{})

	pending := make([]<-chan Result, 0, 2)
	for _, user := range []string{"user-1", "user-2"} {
		ch, err := m.Enqueue(context.Background(), user, recommend.Options{}, 1)
		if err != nil {
			t.Fatalf("Enqueue(%s) error = %v", user, err)
		}
		pending = append(pending, ch)
	}

	m.Close()

	for i, ch := range pending {
		select {
		case res := <-ch:
			if !errors.Is(res.Error, common.ErrServiceUnavailable) {
				t.Errorf("pending[%d] err = %v, want %v", i, res.Error, common.ErrServiceUnavailable)
			}
		case <-time.After(time.Second):
			t.Fatalf("pending[%d] never answered after Close", i)
		}
	}
	if status := m.GetQueueStatus(); status.QueueLength != 0 || status.FailedCount != 2 {
		t.Errorf("status = %+v", status)
	}
	if _, err := m.Submit(context.Background(), "user-3", recommend.Options{}, 1); !errors.Is(err, common.ErrServiceUnavailable) {
		t.Errorf("Submit after Close err = %v", err)
	}
}
