package services

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/CastleLabs/prizewheel/internal/models"
)

// ErrNoCandidates is returned when a draw is attempted with no prizes.
var ErrNoCandidates = errors.New("no candidates to draw from")

// Selector performs the weighted winner draw. The rand source is not
// cryptographic; the wheel is entertainment, not a fairness-audited
// game, and the cumulative draw only needs uniformity.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector() *Selector {
	return &Selector{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Pick draws one prize proportional to weight. Prizes with a
// non-positive weight are excluded from the weighted draw; if nothing
// remains, a uniform draw over the full input is the documented
// degraded behavior, never an error.
func (s *Selector) Pick(prizes []models.Prize) (models.Prize, error) {
	if len(prizes) == 0 {
		return models.Prize{}, ErrNoCandidates
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	weighted := make([]models.Prize, 0, len(prizes))
	total := 0.0
	for _, p := range prizes {
		if p.Weight > 0 {
			weighted = append(weighted, p)
			total += p.Weight
		}
	}

	if len(weighted) == 0 {
		return prizes[s.rng.Intn(len(prizes))], nil
	}
	if total <= 0 {
		// Unreachable given the positive-weight filter; kept so a
		// float underflow can never panic the draw.
		return weighted[s.rng.Intn(len(weighted))], nil
	}

	r := s.rng.Float64() * total
	cumulative := 0.0
	for _, p := range weighted {
		cumulative += p.Weight
		// Ties at the exact boundary resolve to the first prize
		// reaching the threshold, in input order.
		if cumulative >= r {
			return p, nil
		}
	}
	// Float accumulation can land r just past the final sum.
	return weighted[len(weighted)-1], nil
}
