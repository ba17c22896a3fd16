package highlights

import (
	"math/rand"
	"sync"
	"time"

	"github.com/forPelevin/reelcut/internal/types"
)

// Scorer rates how interesting a segment is, in [0, 1).
type Scorer interface {
	Score(seg types.Segment) float64
}

type ScorerFunc func(seg types.Segment) float64

func (f ScorerFunc) Score(seg types.Segment) float64 { return f(seg) }

// RandomScorer is the placeholder analyzer: every segment gets a uniform draw.
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomScorer(seed int64) *RandomScorer {
	return &RandomScorer{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededScorer is what production wiring uses.
func NewTimeSeededScorer() *RandomScorer {
	return NewRandomScorer(time.Now().UnixNano())
}

func (s *RandomScorer) Score(types.Segment) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
