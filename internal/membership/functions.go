package membership

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidParameter = errors.New("invalid membership parameter")

// Function maps a crisp value to a membership degree, nominally in [0, 1].
type Function interface {
	Degree(x float64) float64
}

// Func adapts a plain function to Function.
type Func func(x float64) float64

func (f Func) Degree(x float64) float64 {
	return f(x)
}

// maxExpArg is the largest argument math.Exp accepts without overflowing to +Inf.
const maxExpArg = 709.78

// Triangular returns a triangle rising from a to a peak of 1 at b and falling to c.
// A zero-width edge is treated as vertical and a=b=c is the indicator of {a}.
// The peak wins on a vertical edge, so a shoulder such as Triangular(0, 0, 5)
// is 1 at x=0 rather than 0.
func Triangular(a, b, c float64) Func {
	return func(x float64) float64 {
		if a == b && b == c {
			if x == a {
				return 1
			}
			return 0
		}
		if x < a || x > c {
			return 0
		}
		if x == b {
			return 1
		}
		if x == a || x == c {
			return 0
		}
		if x < b {
			return (x - a) / (b - a)
		}
		return (c - x) / (c - b)
	}
}

// Trapezoidal returns a trapezoid that is 1 on [b, c] and 0 outside [a, d].
// With a=b or c=d the edge is a step and the plateau includes it, so
// Trapezoidal(0, 0, 2, 4) is 1 at x=0.
func Trapezoidal(a, b, c, d float64) Func {
	return func(x float64) float64 {
		if x < a || x > d {
			return 0
		}
		if x >= b && x <= c {
			return 1
		}
		if x == a || x == d {
			return 0
		}
		if x < b {
			return (x - a) / (b - a)
		}
		return (d - x) / (d - c)
	}
}

// Gaussian returns a bell curve with peak 1 at m. sigma must be positive.
func Gaussian(m, sigma float64) (Func, error) {
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return nil, fmt.Errorf("%w: gaussian sigma must be positive and finite, got %v", ErrInvalidParameter, sigma)
	}
	return func(x float64) float64 {
		z := (x - m) / sigma
		return math.Exp(-0.5 * z * z)
	}, nil
}

// Sigmoid returns a smooth step centred on m. Positive s rises, negative s falls.
func Sigmoid(m, s float64) Func {
	return func(x float64) float64 {
		exponent := -s * (x - m)
		if math.IsNaN(exponent) {
			return 0.5
		}
		if exponent > maxExpArg {
			return 0
		}
		if exponent < -maxExpArg {
			return 1
		}
		return 1.0 / (1.0 + math.Exp(exponent))
	}
}

// Sample evaluates fn at each x.
func Sample(fn Function, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = fn.Degree(x)
	}
	return out
}
