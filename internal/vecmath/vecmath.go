// Package vecmath provides arithmetic over fixed-size state vectors.
// All functions take and return arrays by value, so no result ever aliases
// an argument.
package vecmath

import "math"

// Vec is a four-component real vector.
type Vec = [4]float64

// Add returns a + b.
func Add(a, b Vec) Vec {
	return Vec{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

// Sub returns a - b.
func Sub(a, b Vec) Vec {
	return Vec{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

// Scale returns k * a.
func Scale(a Vec, k float64) Vec {
	return Vec{k * a[0], k * a[1], k * a[2], k * a[3]}
}

// AddScaled returns a + k*b.
func AddScaled(a Vec, k float64, b Vec) Vec {
	return Vec{a[0] + k*b[0], a[1] + k*b[1], a[2] + k*b[2], a[3] + k*b[3]}
}

// Norm returns the Euclidean length of a.
func Norm(a Vec) float64 {
	return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2] + a[3]*a[3])
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec) float64 {
	return Norm(Sub(a, b))
}

// TransposeMul returns mᵗ·v, i.e. component i is sum_j m[j][i]*v[j].
func TransposeMul(m [4][4]float64, v Vec) Vec {
	var out Vec
	for i := 0; i < 4; i++ {
		var sum float64
		for j := 0; j < 4; j++ {
			sum += m[j][i] * v[j]
		}
		out[i] = sum
	}
	return out
}

// Clamp limits each component of v to [0, hi[i]].
func Clamp(v, hi Vec) Vec {
	var out Vec
	for i := range v {
		out[i] = math.Max(0, math.Min(hi[i], v[i]))
	}
	return out
}

// IsFinite reports whether every component is neither NaN nor infinite.
func IsFinite(v Vec) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// ArgMax returns the index of the largest component. Ties resolve to the
// lowest index.
func ArgMax(v Vec) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
