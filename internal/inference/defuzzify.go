package inference

// Universe returns n uniformly spaced points covering [min, max] inclusively.
func Universe(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max
	return out
}

// Trapezoid integrates the piecewise-linear curve through (x[i], y[i]).
func Trapezoid(y, x []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	total := 0.0
	for i := 1; i < n; i++ {
		total += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2.0
	}
	return total
}

// Centroid returns the centre of mass of mu over xs. ok is false when the
// curve has zero area and no centroid exists.
func Centroid(xs, mu []float64) (float64, bool) {
	weighted := make([]float64, len(mu))
	for i := range mu {
		weighted[i] = mu[i] * xs[i]
	}
	numerator := Trapezoid(weighted, xs)
	denominator := Trapezoid(mu, xs)
	if denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}
