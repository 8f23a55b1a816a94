package models

import (
	"errors"
	"testing"
)

func TestParseVector4(t *testing.T) {
	tests := []struct {
		name    string
		input   []float64
		wantErr bool
	}{
		{"four components", []float64{0.1, 0.2, 0.3, 0.4}, false},
		{"nil", nil, true},
		{"three components", []float64{1, 1, 1}, true},
		{"five components", []float64{1, 1, 1, 1, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVector4(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDimension) {
					t.Errorf("ParseVector4(%v) error = %v, want ErrInvalidDimension", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVector4(%v) unexpected error: %v", tt.input, err)
			}
			for i := range tt.input {
				if v[i] != tt.input[i] {
					t.Errorf("component %d = %v, want %v", i, v[i], tt.input[i])
				}
			}
		})
	}
}

func TestParseVector4_DoesNotAlias(t *testing.T) {
	in := []float64{0.1, 0.2, 0.3, 0.4}
	v, err := ParseVector4(in)
	if err != nil {
		t.Fatalf("ParseVector4: %v", err)
	}
	v[0] = 9
	if in[0] != 0.1 {
		t.Errorf("caller slice mutated: %v", in)
	}

	out := v.Slice()
	out[1] = 9
	if v[1] != 0.2 {
		t.Errorf("Slice() aliases the vector: %v", v)
	}
}

func TestParseVector4String(t *testing.T) {
	tests := []struct {
		input   string
		want    Vector4
		wantErr bool
	}{
		{"0.2,0.6,0.8,0.6", Vector4{0.2, 0.6, 0.8, 0.6}, false},
		{"0.2, 0.6, 0.8, 0.6", Vector4{0.2, 0.6, 0.8, 0.6}, false},
		{"1 1 1 1", Vector4{1, 1, 1, 1}, false},
		{"1,1,1", Vector4{}, true},
		{"1,x,1,1", Vector4{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVector4String(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVector4String(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseVector4String(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVector4String(t *testing.T) {
	if got := (Vector4{1, 0.5, 0.25, 0}).String(); got != "[1.0000, 0.5000, 0.2500, 0.0000]" {
		t.Errorf("String() = %q", got)
	}
}
