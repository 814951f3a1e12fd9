package neat

import (
	"fmt"
	"math/rand/v2"
)

// Source is the random source consumed by genome initialization, mutation and crossover.
// Every operator receives its Source explicitly; none of them create their own generator.
type Source interface {
	IntRange(min, max int) int            // Uniform integer in [min, max].
	Float64() float64                     // Uniform real in [0, 1).
	Gaussian(mean, stdev float64) float64 // Normally distributed real.
	Bool() bool                           // Fair coin flip.
}

// Choose returns a uniformly chosen element of items.
// It panics when items is empty; callers check their candidate pools first.
func Choose[T any](src Source, items []T) T {
	if len(items) == 0 {
		panic("neat: cannot choose from an empty sequence")
	}
	return items[src.IntRange(0, len(items)-1)]
}

// ChooseFirst returns a uniformly chosen element among the first k elements of items.
func ChooseFirst[T any](src Source, items []T, k int) T {
	if k <= 0 || k > len(items) {
		panic(fmt.Sprintf("neat: invalid choice limit %d for %d elements", k, len(items)))
	}
	return items[src.IntRange(0, k-1)]
}

// RNG is the default Source, backed by a PCG generator.
type RNG struct {
	pcg *rand.PCG
	r   *rand.Rand
}

// NewRNG creates a generator with a fixed seed.
func NewRNG(seed uint64) *RNG {
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &RNG{pcg: pcg, r: rand.New(pcg)}
}

// IntRange returns a uniform integer in [min, max].
func (g *RNG) IntRange(min, max int) int {
	if max < min {
		panic(fmt.Sprintf("neat: invalid integer range [%d, %d]", min, max))
	}
	return min + g.r.IntN(max-min+1)
}

// Float64 returns a uniform float in [0, 1).
func (g *RNG) Float64() float64 {
	return g.r.Float64()
}

// Gaussian returns a normally distributed value.
func (g *RNG) Gaussian(mean, stdev float64) float64 {
	return g.r.NormFloat64()*stdev + mean
}

// Bool returns a fair coin flip.
func (g *RNG) Bool() bool {
	return g.r.IntN(2) == 1
}

// Spawn derives an independent generator seeded from this one.
// Used to give every parallel fitness evaluation its own stream.
func (g *RNG) Spawn() *RNG {
	return NewRNG(g.r.Uint64())
}

// MarshalBinary captures the generator state for checkpoints.
func (g *RNG) MarshalBinary() ([]byte, error) {
	return g.pcg.MarshalBinary()
}

// UnmarshalBinary restores a state produced by MarshalBinary.
func (g *RNG) UnmarshalBinary(data []byte) error {
	if g.pcg == nil {
		g.pcg = rand.NewPCG(0, 0)
		g.r = rand.New(g.pcg)
	}
	if err := g.pcg.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("failed to restore random state: %w", err)
	}
	return nil
}
