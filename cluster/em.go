// SPDX-License-Identifier: MIT
// Package: cluster
//
// Purpose:
//   - Fit a one-dimensional Gaussian mixture with Expectation-Maximization.
//   - Classify new samples by maximum posterior.
//
// Exposed API:
//   - EM(samples, pi, laws) -> (Mixture, error)  // at most MaxIterations rounds
//   - Mixture.Classify(x)   -> component index
//
// Determinism:
//   - Fixed sample→component traversal; no randomness, initial guesses come from the caller.
//   - Convergence stops once Σ(Δπ)² drops below Epsilon.

package cluster

import (
	"errors"
	"math"
)

const (
	// MaxIterations bounds the number of EM rounds.
	MaxIterations = 10

	// Epsilon is the squared mixing-coefficient change under which EM stops.
	Epsilon = 1e-10

	// minSigma keeps a collapsing component from producing infinite densities.
	minSigma = 1e-6
)

// Sentinel errors for clustering.
var (
	// ErrNoSamples indicates EM was called without data.
	ErrNoSamples = errors.New("cluster: no samples")

	// ErrComponentMismatch indicates pi and laws differ in length or are empty.
	ErrComponentMismatch = errors.New("cluster: mixing coefficients and laws mismatch")
)

// Gaussian is a normal law N(Mean, Sigma²).
type Gaussian struct {
	Mean  float64
	Sigma float64
}

// Density returns the probability density at x.
func (g Gaussian) Density(x float64) float64 {
	s := math.Max(g.Sigma, minSigma)
	z := (x - g.Mean) / s

	return math.Exp(-0.5*z*z) / (s * math.Sqrt(2*math.Pi))
}

// Mixture is a fitted Gaussian mixture.
type Mixture struct {
	Pi         []float64
	Laws       []Gaussian
	Iterations int
}

// Posterior returns the responsibility of each component for x.
func (m Mixture) Posterior(x float64) []float64 {
	return posterior(x, m.Pi, m.Laws, make([]float64, len(m.Pi)))
}

// Classify returns the index of the component with the highest posterior for x.
func (m Mixture) Classify(x float64) int {
	best, bestP := 0, -1.0
	for k, p := range m.Posterior(x) {
		if p > bestP {
			best, bestP = k, p
		}
	}

	return best
}

// EM fits a mixture of len(laws) Gaussians to samples, starting from the
// given mixing coefficients and laws. Inputs are not modified.
func EM(samples, pi []float64, laws []Gaussian) (Mixture, error) {
	if len(samples) == 0 {
		return Mixture{}, ErrNoSamples
	}
	if len(pi) == 0 || len(pi) != len(laws) {
		return Mixture{}, ErrComponentMismatch
	}

	n, k := len(samples), len(pi)
	m := Mixture{
		Pi:   append([]float64(nil), pi...),
		Laws: append([]Gaussian(nil), laws...),
	}
	gamma := make([][]float64, n)
	for i := range gamma {
		gamma[i] = make([]float64, k)
	}

	for m.Iterations < MaxIterations {
		m.Iterations++

		// Stage 1: E-step, responsibilities by Bayes rule.
		for i, x := range samples {
			posterior(x, m.Pi, m.Laws, gamma[i])
		}

		// Stage 2: M-step, re-estimate mixing, means and sigmas.
		var delta float64
		for c := 0; c < k; c++ {
			var w, sx float64
			for i, x := range samples {
				w += gamma[i][c]
				sx += gamma[i][c] * x
			}
			newPi := w / float64(n)
			delta += (newPi - m.Pi[c]) * (newPi - m.Pi[c])
			m.Pi[c] = newPi
			if w == 0 {
				continue // component lost all support, keep its law
			}
			mean := sx / w
			var sv float64
			for i, x := range samples {
				sv += gamma[i][c] * (x - mean) * (x - mean)
			}
			m.Laws[c] = Gaussian{Mean: mean, Sigma: math.Max(math.Sqrt(sv/w), minSigma)}
		}

		// Stage 3: convergence on mixing coefficients.
		if delta < Epsilon {
			break
		}
	}

	return m, nil
}

// posterior fills out with normalized responsibilities and returns it.
func posterior(x float64, pi []float64, laws []Gaussian, out []float64) []float64 {
	var sum float64
	for c := range pi {
		out[c] = pi[c] * laws[c].Density(x)
		sum += out[c]
	}
	if sum == 0 {
		// far from every law: share evenly
		for c := range out {
			out[c] = 1 / float64(len(out))
		}
		return out
	}
	for c := range out {
		out[c] /= sum
	}

	return out
}
