package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDimension is returned when a vector does not have exactly four components.
var ErrInvalidDimension = errors.New("vector must have exactly 4 components")

// Vector4 is a state vector: one real value per axis.
// It is an array, so assignment copies it.
type Vector4 [4]float64

// ParseVector4 converts a slice of exactly four values into a Vector4.
// The returned vector never shares storage with vals.
func ParseVector4(vals []float64) (Vector4, error) {
	if len(vals) != 4 {
		return Vector4{}, fmt.Errorf("got %d components: %w", len(vals), ErrInvalidDimension)
	}
	var v Vector4
	copy(v[:], vals)
	return v, nil
}

// ParseVector4String parses "a,b,c,d" (commas or whitespace) into a Vector4.
func ParseVector4String(s string) (Vector4, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Vector4{}, fmt.Errorf("parsing component %q: %w", f, err)
		}
		vals = append(vals, x)
	}
	return ParseVector4(vals)
}

// Slice returns a fresh slice holding the components.
func (v Vector4) Slice() []float64 {
	out := make([]float64, 4)
	copy(out, v[:])
	return out
}

// At returns the component for axis a.
func (v Vector4) At(a Axis) float64 {
	return v[a]
}

// String formats the vector as [a, b, c, d] with four decimals.
func (v Vector4) String() string {
	return fmt.Sprintf("[%.4f, %.4f, %.4f, %.4f]", v[0], v[1], v[2], v[3])
}
