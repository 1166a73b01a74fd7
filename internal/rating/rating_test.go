package rating

import (
	"elo-ladder/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFactor(t *testing.T) {
	tests := []struct {
		name     string
		rating   int
		expected float64
	}{
		{"low tier", 1200, 40},
		{"just below mid tier", 1799, 40},
		{"mid tier boundary", 1800, 20},
		{"just below top tier", 2399, 20},
		{"top tier boundary", 2400, 10},
		{"far above top tier", 3000, 10},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, KFactor(test.rating))
		})
	}
}

func TestExpected(t *testing.T) {
	assert.Equal(t, 0.5, Expected(1200, 1200))
	assert.InDelta(t, 0.9693, Expected(1800, 1200), 0.0001)
	assert.InDelta(t, 0.0307, Expected(1200, 1800), 0.0001)
}

func TestComputeNewWinnerRating(t *testing.T) {
	tests := []struct {
		name     string
		winner   int
		loser    int
		expected int
	}{
		{"even match gains half of k", 1200, 1200, 1220},
		{"mid tier favourite gains nothing after truncation", 1800, 1200, 1800},
		{"top tier favourite gains nothing", 2400, 1200, 2400},
		{"underdog win", 1200, 1400, 1230},
		{"slight favourite", 1220, 1180, 1237},
		{"mid tier even match", 2000, 2000, 2010},
		{"top tier even match", 2500, 2500, 2505},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ComputeNewWinnerRating(test.winner, test.loser))
		})
	}
}

func TestComputeRejectsSelfPlay(t *testing.T) {
	_, err := Compute("a", "a", 1200, 1200, false)
	assert.ErrorIs(t, err, domain.ErrInvalidMatch)
}

func TestComputeConservesWithoutMultiplier(t *testing.T) {
	out, err := Compute("a", "b", 1200, 1200, false)
	require.NoError(t, err)

	assert.Equal(t, 20, out.Delta)
	assert.Equal(t, 1, out.Multiplier)
	assert.Equal(t, 1220, out.WinnerAfter)
	assert.Equal(t, 1180, out.LoserAfter)
	assert.Equal(t, out.WinnerBefore+out.LoserBefore, out.WinnerAfter+out.LoserAfter)
}

func TestComputeMultiplierDoublesOnlyWinnerGain(t *testing.T) {
	out, err := Compute("a", "b", 1220, 1180, true)
	require.NoError(t, err)

	assert.Equal(t, 17, out.Delta)
	assert.Equal(t, 2, out.Multiplier)
	assert.Equal(t, 1254, out.WinnerAfter)
	assert.Equal(t, 1163, out.LoserAfter)
}

func TestRevertInvertsCompute(t *testing.T) {
	for _, mult := range []bool{false, true} {
		out, err := Compute("a", "b", 1500, 1320, mult)
		require.NoError(t, err)

		m := domain.Match{
			RatingDelta:       out.Delta,
			WinnerRatingAfter: out.WinnerAfter,
			LoserRatingAfter:  out.LoserAfter,
			Multiplier:        out.Multiplier,
		}
		w, l := Revert(m, out.WinnerAfter, out.LoserAfter)
		assert.Equal(t, 1500, w)
		assert.Equal(t, 1320, l)
		assert.Equal(t, 1500, m.WinnerRatingBefore())
		assert.Equal(t, 1320, m.LoserRatingBefore())
	}
}
