// Package scoring converts a guessed score and a real result into points.
package scoring

// Outcome tags the rule that produced an award.
type Outcome string

const (
	OutcomeHighScoringExact Outcome = "HIGH_SCORING_EXACT"
	OutcomeExactDraw        Outcome = "EXACT_DRAW"
	OutcomeExactWin         Outcome = "EXACT_WIN"
	OutcomeCorrectDraw      Outcome = "CORRECT_DRAW"
	OutcomeCorrectWinner    Outcome = "CORRECT_WINNER"
	OutcomeMiss             Outcome = "MISS"
)

const (
	PointsHighScoringExact = 6
	PointsExactDraw        = 4
	PointsExactWin         = 3
	PointsCorrectDraw      = 2
	PointsCorrectWinner    = 1

	// highScoringTotal is the goal total from which an exact guess earns the bonus.
	highScoringTotal = 5
)

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Class is the outcome class of a score: home win, away win or draw.
type Class int

const (
	ClassDraw Class = iota
	ClassHome
	ClassAway
)

func (s Score) Class() Class {
	switch {
	case s.Home > s.Away:
		return ClassHome
	case s.Home < s.Away:
		return ClassAway
	default:
		return ClassDraw
	}
}

func (s Score) Total() int {
	return s.Home + s.Away
}

type Result struct {
	Points  int     `json:"points"`
	Outcome Outcome `json:"outcome"`
}

func (r Result) IsExact() bool {
	switch r.Outcome {
	case OutcomeHighScoringExact, OutcomeExactDraw, OutcomeExactWin:
		return true
	}
	return false
}

// Evaluate awards points for guess against real. Rules are checked in order
// and the first match wins: the high-scoring bonus before the plain exact
// cases, and exactness before the outcome class.
func Evaluate(guess, real Score) Result {
	if guess == real {
		switch {
		case real.Total() >= highScoringTotal:
			return Result{Points: PointsHighScoringExact, Outcome: OutcomeHighScoringExact}
		case real.Class() == ClassDraw:
			return Result{Points: PointsExactDraw, Outcome: OutcomeExactDraw}
		default:
			return Result{Points: PointsExactWin, Outcome: OutcomeExactWin}
		}
	}

	if guess.Class() == real.Class() {
		if real.Class() == ClassDraw {
			return Result{Points: PointsCorrectDraw, Outcome: OutcomeCorrectDraw}
		}
		return Result{Points: PointsCorrectWinner, Outcome: OutcomeCorrectWinner}
	}

	return Result{Points: 0, Outcome: OutcomeMiss}
}
