// Package rng owns the single pseudo-random source of a generation run.
//
// Every draw in a run goes through one Source so that the sequence of values,
// and therefore the generated tables, is a pure function of the seed and the
// order of calls.
package rng

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a seeded PCG generator shared by all distributions of a run.
// It is not safe for concurrent use.
type Source struct {
	pcg  *rand.PCG
	rand *rand.Rand
}

// New returns a Source seeded from seed.
func New(seed uint64) *Source {
	pcg := rand.NewPCG(seed, seed)
	return &Source{pcg: pcg, rand: rand.New(pcg)}
}

// Uniform draws from U(min, max).
func (s *Source) Uniform(min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: s.pcg}.Rand()
}

// Float64 draws from U(0, 1).
func (s *Source) Float64() float64 {
	return s.rand.Float64()
}

// Normal draws from N(mu, sigma).
func (s *Source) Normal(mu, sigma float64) float64 {
	if sigma == 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.pcg}.Rand()
}

// LogNormal draws exp(X) with X ~ N(mu, sigma).
func (s *Source) LogNormal(mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: s.pcg}.Rand()
}

// Beta draws from Beta(alpha, beta).
func (s *Source) Beta(alpha, beta float64) float64 {
	return distuv.Beta{Alpha: alpha, Beta: beta, Src: s.pcg}.Rand()
}

// Poisson draws an event count with mean lambda.
func (s *Source) Poisson(lambda float64) int {
	return int(distuv.Poisson{Lambda: lambda, Src: s.pcg}.Rand())
}

// Bernoulli reports true with probability p.
func (s *Source) Bernoulli(p float64) bool {
	return s.rand.Float64() < p
}

// IntRange draws uniformly from the half-open interval [min, max).
func (s *Source) IntRange(min, max int) int {
	return min + s.rand.IntN(max-min)
}

// Categorical draws an index with probability proportional to weights.
func (s *Source) Categorical(weights []float64) int {
	return int(distuv.NewCategorical(weights, s.pcg).Rand())
}
