package dashboard

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Jitter is the randomness source used by every mock generator. All values it
// hands out stay inside the requested closed range.
type Jitter struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewJitter builds a seeded source. Seed 0 derives the seed from the clock.
func NewJitter(seed uint64) *Jitter {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Jitter{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Between returns a value in [min, max] rounded to one decimal.
func (j *Jitter) Between(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	j.mu.Lock()
	f := j.rnd.Float64()
	j.mu.Unlock()
	return Clamp(round1(min+f*(max-min)), min, max)
}

// IntBetween returns an integer in [min, max].
func (j *Jitter) IntBetween(min, max int) int {
	if max < min {
		min, max = max, min
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return min + j.rnd.IntN(max-min+1)
}

// Around returns base ± spread clamped to [min, max].
func (j *Jitter) Around(base, spread, min, max float64) float64 {
	return Clamp(j.Between(base-spread, base+spread), min, max)
}

// Pick returns one of the options, or "" when none are given.
func (j *Jitter) Pick(options ...string) string {
	if len(options) == 0 {
		return ""
	}
	return options[j.IntBetween(0, len(options)-1)]
}

// Chance reports true with probability p.
func (j *Jitter) Chance(p float64) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rnd.Float64() < p
}

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
