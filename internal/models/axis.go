package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Axis names one component of a state vector.
type Axis int

const (
	AxisA Axis = iota
	AxisB
	AxisC
	AxisD
)

// Axes lists every axis in order. Ties between axes always resolve to the
// earlier entry.
var Axes = [4]Axis{AxisA, AxisB, AxisC, AxisD}

var axisNames = [4]string{"A", "B", "C", "D"}

// Valid returns true if a is one of the four axes.
func (a Axis) Valid() bool {
	return a >= AxisA && a <= AxisD
}

// String returns the axis letter.
func (a Axis) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis converts a letter (case-insensitive) to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return AxisA, nil
	case "B":
		return AxisB, nil
	case "C":
		return AxisC, nil
	case "D":
		return AxisD, nil
	}
	return 0, fmt.Errorf("unknown axis %q (valid: A, B, C, D)", s)
}

// MarshalJSON encodes the axis as its letter.
func (a Axis) MarshalJSON() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid axis %d", int(a))
	}
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes an axis letter.
func (a *Axis) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("axis must be a string: %w", err)
	}
	parsed, err := ParseAxis(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// OptionalAxis is an axis that may be absent. The zero value is absent.
type OptionalAxis struct {
	axis Axis
	ok   bool
}

// SomeAxis returns an OptionalAxis holding a.
func SomeAxis(a Axis) OptionalAxis {
	return OptionalAxis{axis: a, ok: true}
}

// NoAxis returns an empty OptionalAxis.
func NoAxis() OptionalAxis {
	return OptionalAxis{}
}

// Get returns the axis and whether it is present.
func (o OptionalAxis) Get() (Axis, bool) {
	return o.axis, o.ok
}

// IsSome reports whether an axis is present.
func (o OptionalAxis) IsSome() bool {
	return o.ok
}

// Equal reports whether both values are absent or hold the same axis.
func (o OptionalAxis) Equal(other OptionalAxis) bool {
	if o.ok != other.ok {
		return false
	}
	return !o.ok || o.axis == other.axis
}

// String returns the axis letter, or "none" when absent.
func (o OptionalAxis) String() string {
	if !o.ok {
		return "none"
	}
	return o.axis.String()
}

// MarshalJSON encodes an absent axis as null.
func (o OptionalAxis) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return o.axis.MarshalJSON()
}

// UnmarshalJSON accepts null or an axis letter.
func (o *OptionalAxis) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = NoAxis()
		return nil
	}
	var a Axis
	if err := a.UnmarshalJSON(data); err != nil {
		return err
	}
	*o = SomeAxis(a)
	return nil
}
