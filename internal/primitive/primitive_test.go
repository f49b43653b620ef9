package primitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIfTrue(t *testing.T) {
	tests := []struct {
		name string
		cond bool
		want string
	}{
		{"returns true", true, "yes"},
		{"returns false", false, "no"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IfTrue(tt.cond, "yes", "no"))
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		v    int
		want int
	}{
		{"within", 10, 10},
		{"below", -5, 1},
		{"above", 5000, 1000},
		{"lower bound", 1, 1},
		{"upper bound", 1000, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.v, 1, 1000))
		})
	}
}
