package outwriter

import (
	"math"
	"testing"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/stretchr/testify/assert"
)

func TestGetMaxTableRepoWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		expected int
	}{
		{"narrow terminal", 80, 12},
		{"medium terminal", 130, 35},
		{"wide terminal", 300, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetMaxTableRepoWidth(&contract.Config{Width: tt.width}))
		})
	}
}

func TestSignedDelta(t *testing.T) {
	tests := []struct {
		name     string
		delta    float64
		expected string
	}{
		{"increase", 12.5, "+12.50 ▲"},
		{"decrease", -3, "-3.00 ▼"},
		{"zero", 0, "0.00"},
		{"missing", math.NaN(), "NA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, signedDelta(tt.delta, 2, false))
		})
	}
}

func TestLabelFuncsPlain(t *testing.T) {
	trend, causal := labelFuncs(&contract.Config{UseColors: false})
	assert.Equal(t, contract.IncreasingValue, trend(0.8, 0.001, 0.05))
	assert.Equal(t, contract.NoTrendValue, trend(0.8, 0.2, 0.05))
	assert.Equal(t, contract.UntestedValue, causal(false, false))
	assert.Equal(t, contract.CausalValue, causal(true, true))
}
