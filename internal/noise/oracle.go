// Package noise provides a deterministic, seedable stand-in for the
// fractional Gaussian noise source the simulator uses to perturb
// per-tick throughput and drop rates.
//
// The upstream simulator calls into a process-global stochastic.processes
// noise generator once at startup. Per spec Design Notes ("Global state"),
// that global is replaced here with an explicit Oracle owned by the
// simulation driver and injected into each medium at construction, so two
// media never draw from a shared, order-sensitive stream.
package noise

import (
	"math"
	"math/rand"
)

// harmonics bounds the number of spectral components used to approximate
// long-range-dependent noise. More harmonics give a smoother spectrum;
// this is plenty for a tick count in the tens of thousands.
const harmonics = 48

// Oracle produces deterministic pseudo-random sequences approximating
// fractional Gaussian noise (fGn) for a given Hurst parameter. Unlike the
// original Python simulator's process-global generator, an Oracle is
// constructed once per run and asked to Sample a fresh, independent
// sequence per medium.
type Oracle struct {
	hurst float64
}

// New returns an Oracle for the given Hurst parameter H (0 < H < 1).
// H close to 1 produces smoother, more persistent sequences; H close to
// 0 produces rougher, more anti-persistent ones. H == 0.5 is plain white
// noise.
func New(hurst float64) *Oracle {
	return &Oracle{hurst: hurst}
}

// Sample returns n deterministic reals approximating fGn, seeded from
// seed. Two calls with the same (seed, n) always return identical
// sequences; two calls with different seeds are independent. The result
// is normalized to zero mean and unit standard deviation and clamped to
// [-3, 3], so callers can scale it by a rate-deviation multiplier
// without it dominating the base rate.
//
// The approximation uses spectral synthesis: a sum of cosines with
// random phase, whose amplitudes scale as k^(0.5-H), matching the fGn
// power spectrum f^(1-2H). This is a standard construction for
// generating noise with a target Hurst exponent without requiring a
// full Davies-Harte / Cholesky synthesis,
// appropriate here since only the statistical flavor (not an exact fGn
// covariance) is load-bearing for the simulation.
func (o *Oracle) Sample(seed int64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducibility, not security.

	type component struct {
		amplitude float64
		phase     float64
		freq      float64
	}

	k := harmonics
	if n/2 < k {
		k = n / 2
	}
	if k < 1 {
		k = 1
	}

	components := make([]component, k)
	exponent := 0.5 - o.hurst
	for i := range components {
		kk := float64(i + 1)
		components[i] = component{
			amplitude: math.Pow(kk, exponent),
			phase:     rng.Float64() * 2 * math.Pi,
			freq:      2 * math.Pi * kk / float64(n),
		}
	}

	samples := make([]float64, n)
	var sumAmp float64
	for _, c := range components {
		sumAmp += c.amplitude
	}
	if sumAmp == 0 {
		sumAmp = 1
	}

	for t := 0; t < n; t++ {
		var v float64
		for _, c := range components {
			v += c.amplitude * math.Cos(c.freq*float64(t)+c.phase)
		}
		samples[t] = v / sumAmp * float64(k)
	}

	return normalize(samples)
}

// normalize rescales samples to zero mean and unit standard deviation,
// then clamps to [-3, 3] so a handful of outlier harmonics can never
// drive a downstream rate negative regardless of the deviation
// multiplier applied by the caller.
func normalize(samples []float64) []float64 {
	n := float64(len(samples))
	if n == 0 {
		return samples
	}

	var mean float64
	for _, s := range samples {
		mean += s
	}
	mean /= n

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= n
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		stddev = 1
	}

	out := make([]float64, len(samples))
	for i, s := range samples {
		v := (s - mean) / stddev
		out[i] = math.Max(-3, math.Min(3, v))
	}
	return out
}
