// Package montecarlo draws the per-trial random populations the aggregator
// combines: completion-time trials per project and delay trials for the
// dependency graph. All randomness flows through seeded sources so a run is
// reproducible and safe to fan out across goroutines.
package montecarlo

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws one throughput value per call. The normal-throughput
// assumption is deliberately simple; swapping the distribution means swapping
// the factory, not touching the aggregator.
type Sampler interface {
	Sample() float64
}

// SamplerFactory builds a Sampler for a project once its sample moments are
// known.
type SamplerFactory func(mu, sigma float64) Sampler

type normalSampler struct {
	dist distuv.Normal
}

func (s *normalSampler) Sample() float64 {
	return s.dist.Rand()
}

// NormalFactory returns the default factory: Normal(mu, sigma) draws from the
// given source.
func NormalFactory(src rand.Source) SamplerFactory {
	return func(mu, sigma float64) Sampler {
		return &normalSampler{dist: distuv.Normal{Mu: mu, Sigma: sigma, Src: src}}
	}
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// DeriveSeed mixes a lane index into a base seed (splitmix64 finalizer), so
// each project samples from its own stream and concurrent sampling cannot
// reorder draws between projects.
func DeriveSeed(base, lane uint64) uint64 {
	z := base + (lane+1)*0x9e3779b97f4a7c15
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return z
}
