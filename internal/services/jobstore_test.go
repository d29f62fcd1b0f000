package services

import "testing"

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float64
	}{
		{"typical similarity", 0.85, 85},
		{"perfect match", 1.0, 100},
		{"zero", 0, 0},
		{"negative clamps to zero", -0.2, 0},
		{"above one clamps to hundred", 1.3, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeScore(tt.in)
			if got < tt.want-0.0001 || got > tt.want+0.0001 {
				t.Errorf("NormalizeScore(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
