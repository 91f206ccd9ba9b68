package stats

import "math"

// loessAt fits a locally weighted line (degree 1) or constant (degree 0) to the
// equally spaced series y, using positions from..to inclusive, and evaluates it at xs.
// Positions are 0-based. The bandwidth is the distance to the farthest point of the
// window, widened when the window asks for more points than the series has.
func loessAt(y []float64, q, degree int, xs float64, from, to int) (float64, bool) {
	n := len(y)
	h := math.Max(xs-float64(from), float64(to)-xs)
	if q > n {
		h += float64((q - n) / 2)
	}

	w := make([]float64, to-from+1)
	h9, h1 := 0.999*h, 0.001*h
	var a float64
	for j := from; j <= to; j++ {
		r := math.Abs(float64(j) - xs)
		if r > h9 {
			continue
		}
		wj := 1.0
		if r > h1 {
			u := r / h
			u = 1 - u*u*u
			wj = u * u * u
		}
		w[j-from] = wj
		a += wj
	}
	if a <= 0 {
		return 0, false
	}
	for i := range w {
		w[i] /= a
	}

	if h > 0 && degree > 0 {
		var center float64
		for j := from; j <= to; j++ {
			center += w[j-from] * float64(j)
		}
		b := xs - center
		var c float64
		for j := from; j <= to; j++ {
			d := float64(j) - center
			c += w[j-from] * d * d
		}
		if math.Sqrt(c) > 0.001*float64(n-1) {
			b /= c
			for j := from; j <= to; j++ {
				w[j-from] *= b*(float64(j)-center) + 1
			}
		}
	}

	var ys float64
	for j := from; j <= to; j++ {
		ys += w[j-from] * y[j]
	}
	return ys, true
}

// Loess smooths y at every position with a window of q neighbours.
func Loess(y []float64, q, degree int) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if q < 1 {
		q = 1
	}

	if q >= n {
		for i := range n {
			if v, ok := loessAt(y, q, degree, float64(i), 0, n-1); ok {
				out[i] = v
			} else {
				out[i] = y[i]
			}
		}
		return out
	}

	half := (q + 1) / 2
	left, right := 0, q-1
	for i := range n {
		if i+1 > half && right != n-1 {
			left++
			right++
		}
		if v, ok := loessAt(y, q, degree, float64(i), left, right); ok {
			out[i] = v
		} else {
			out[i] = y[i]
		}
	}
	return out
}

// LoessSpan smooths y with a window holding the given fraction of the points.
func LoessSpan(y []float64, span float64) []float64 {
	q := int(math.Ceil(span * float64(len(y))))
	return Loess(y, max(q, 3), 1)
}
