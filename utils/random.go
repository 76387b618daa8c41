package utils

import (
	"math"
	"math/rand/v2"
)

// Source yields uniform draws in [0, 1). The services never touch the
// global RNG directly so tests can feed deterministic sequences.
type Source func() float64

// DefaultSource draws from math/rand/v2's shared generator.
func DefaultSource() Source {
	return rand.Float64
}

// DrawLognormal draws a lognormal sample via the Box-Muller transform.
// mean and std parameterize the underlying normal, not the lognormal
// itself.
func DrawLognormal(src Source, mean, std float64) float64 {
	u := src()
	v := src()
	x := math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
	return math.Exp(x*std + mean)
}
