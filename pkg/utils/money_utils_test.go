package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.005, 1.0}, // 1.005 is stored just below 1.005 in binary
		{1.015, 1.01},
		{2.675, 2.68},
		{1.92, 1.92},
		{28.315, 28.32},
		{-3.456, -3.46},
		{19.999, 20.00},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}
