package domain

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

const (
	// MinFace and MaxFace bound a die face value.
	MinFace = 1
	MaxFace = 6

	// NoWinnerResult is the sentinel stored when no face repeats. Downstream
	// storage forbids an empty result, so "0" stands in for "no winner".
	NoWinnerResult = "0"
)

// RollDice produces six independent uniform faces.
func RollDice(rng *rand.Rand) [6]int {
	var faces [6]int
	for i := range faces {
		faces[i] = rng.Intn(MaxFace) + MinFace
	}
	return faces
}

// FaceCounts counts occurrences of each face value among the six dice.
func FaceCounts(faces [6]int) map[int]int {
	counts := make(map[int]int, 6)
	for _, f := range faces {
		counts[f]++
	}
	return counts
}

// WinningNumbers returns every face value occurring two or more times,
// ascending. Ties are not broken: several numbers can win at once.
func WinningNumbers(faces [6]int) []int {
	counts := FaceCounts(faces)
	winners := make([]int, 0, len(counts))
	for num, count := range counts {
		if count >= 2 {
			winners = append(winners, num)
		}
	}
	sort.Ints(winners)
	return winners
}

// ResultString renders the winning set as the stored wire form: sorted,
// comma-joined ("2, 5"), or NoWinnerResult when nothing repeats.
func ResultString(faces [6]int) string {
	winners := WinningNumbers(faces)
	if len(winners) == 0 {
		return NoWinnerResult
	}

	parts := make([]string, len(winners))
	for i, num := range winners {
		parts[i] = strconv.Itoa(num)
	}
	return strings.Join(parts, ", ")
}
