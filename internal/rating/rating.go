package rating

import (
	"elo-ladder/internal/domain"
	"math"
)

const deviation = 400

// KFactor is tiered on the winner's rating before the match.
func KFactor(winnerRating int) float64 {
	switch {
	case winnerRating >= 2400:
		return 10
	case winnerRating >= 1800:
		return 20
	default:
		return 40
	}
}

// Expected is the logistic expected score of the winner against the loser.
func Expected(winnerRating, loserRating int) float64 {
	return 1 / (1 + math.Pow(10, float64(loserRating-winnerRating)/deviation))
}

// ComputeNewWinnerRating returns r + k*(1-E) truncated toward zero.
func ComputeNewWinnerRating(winnerRating, loserRating int) int {
	k := KFactor(winnerRating)
	return int(float64(winnerRating) + k*(1-Expected(winnerRating, loserRating)))
}

type Outcome struct {
	WinnerBefore int
	LoserBefore  int
	WinnerAfter  int
	LoserAfter   int
	Delta        int // unmultiplied winner gain, equal to the loser's loss
	Multiplier   int
}

// Compute applies one match. The loser loses exactly Delta; with the
// multiplier enabled only the winner's gain is doubled.
func Compute(winnerID, loserID string, winnerRating, loserRating int, multiplier bool) (Outcome, error) {
	if winnerID == loserID {
		return Outcome{}, domain.ErrInvalidMatch
	}

	newWinner := ComputeNewWinnerRating(winnerRating, loserRating)
	delta := newWinner - winnerRating
	newLoser := loserRating - delta

	mult := 1
	if multiplier {
		mult = 2
		newWinner += delta
	}

	return Outcome{
		WinnerBefore: winnerRating,
		LoserBefore:  loserRating,
		WinnerAfter:  newWinner,
		LoserAfter:   newLoser,
		Delta:        delta,
		Multiplier:   mult,
	}, nil
}

// Revert is the inverse of Compute for a stored match, applied to the
// players' current ratings.
func Revert(m domain.Match, winnerCurrent, loserCurrent int) (int, int) {
	return winnerCurrent - m.RatingDelta*m.Multiplier, loserCurrent + m.RatingDelta
}
