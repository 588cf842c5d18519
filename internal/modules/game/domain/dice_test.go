package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinningNumbers(t *testing.T) {
	cases := []struct {
		name  string
		faces [6]int
		want  []int
	}{
		{"no repeats", [6]int{1, 2, 3, 4, 5, 6}, []int{}},
		{"one pair", [6]int{3, 1, 3, 4, 5, 6}, []int{3}},
		{"two winners sorted", [6]int{5, 2, 5, 2, 5, 1}, []int{2, 5}},
		{"triple counts once", [6]int{4, 4, 4, 1, 2, 3}, []int{4}},
		{"all same", [6]int{6, 6, 6, 6, 6, 6}, []int{6}},
		{"three pairs", [6]int{1, 1, 2, 2, 3, 3}, []int{1, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ElementsMatch(t, tc.want, WinningNumbers(tc.faces))
		})
	}
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "2, 5", ResultString([6]int{5, 2, 5, 2, 5, 1}))
	assert.Equal(t, "0", ResultString([6]int{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, "6", ResultString([6]int{6, 6, 6, 6, 6, 6}))
	assert.Equal(t, "1, 2, 3", ResultString([6]int{3, 2, 1, 1, 2, 3}))
}

func TestFaceCounts(t *testing.T) {
	counts := FaceCounts([6]int{5, 2, 5, 2, 5, 1})
	assert.Equal(t, 3, counts[5])
	assert.Equal(t, 2, counts[2])
	assert.Equal(t, 1, counts[1])
	assert.Equal(t, 0, counts[6])
}

func TestRollDiceBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		for _, f := range RollDice(rng) {
			require.GreaterOrEqual(t, f, MinFace)
			require.LessOrEqual(t, f, MaxFace)
		}
	}
}

func TestSetDiceRecomputesResult(t *testing.T) {
	round := NewRound(time.Now(), DefaultDurations)
	require.Empty(t, round.DiceResult)

	_, ok := round.DiceValues()
	require.False(t, ok)

	require.NoError(t, round.SetDice([6]int{2, 2, 5, 5, 5, 1}))
	assert.Equal(t, "2, 5", round.DiceResult)

	faces, ok := round.DiceValues()
	require.True(t, ok)
	assert.Equal(t, [6]int{2, 2, 5, 5, 5, 1}, faces)

	// Override recomputes rather than trusting any previous value.
	require.NoError(t, round.SetDice([6]int{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, NoWinnerResult, round.DiceResult)
}

func TestSetDiceRejectsBadFaces(t *testing.T) {
	round := NewRound(time.Now(), DefaultDurations)
	assert.ErrorIs(t, round.SetDice([6]int{0, 2, 3, 4, 5, 6}), ErrInvalidFace)
	assert.ErrorIs(t, round.SetDice([6]int{1, 2, 3, 4, 5, 7}), ErrInvalidFace)
}
