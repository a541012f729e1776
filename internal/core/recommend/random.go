package recommend

import (
	"math/rand"
	"sync"
	"time"
)

// Random 可注入的亂數來源
type Random interface {
	Float64() float64
}

type lockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom 建立可併發使用的亂數來源，seed 為 0 時以時間為種子
func NewRandom(seed int64) Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRandom{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// FixedRandom 永遠回傳同一個值，供測試使用
type FixedRandom float64

func (f FixedRandom) Float64() float64 { return float64(f) }
