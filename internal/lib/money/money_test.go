package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 10.13, Round(10.125))
	assert.Equal(t, 0.3, Round(0.1+0.2))
	assert.Equal(t, 594.0, Round(593.999999))
}

func TestRound_Idempotent(t *testing.T) {
	values := []float64{0, 0.01, 1.005, 12.345, 99.999, 1234.5678, 0.1 + 0.2, 1e6 / 3}

	for _, v := range values {
		once := Round(v)
		assert.Equal(t, once, Round(once), "повторное округление %v", v)
	}
}

func TestSum(t *testing.T) {
	total := Sum(0.1, 0.2, 0.3)
	assert.Equal(t, "0.6", total.String())
	assert.True(t, Sum().IsZero())
}
