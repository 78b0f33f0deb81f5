package scoring

// copyStep is one row of the allowed-copies table: rounds with at least
// MinMatches matches tolerate Allowed identical guesses.
type copyStep struct {
	MinMatches int
	Allowed    int
}

// copyLimitTable is ordered by MinMatches descending.
var copyLimitTable = []copyStep{
	{MinMatches: 18, Allowed: 9},
	{MinMatches: 16, Allowed: 8},
	{MinMatches: 14, Allowed: 7},
	{MinMatches: 12, Allowed: 6},
	{MinMatches: 10, Allowed: 5},
	{MinMatches: 8, Allowed: 4},
	{MinMatches: 6, Allowed: 3},
}

const (
	// smallRoundAllowed applies to rounds with fewer than six matches.
	smallRoundAllowed = 2
	// unlimitedFrom is the round size from which copies are not limited.
	unlimitedFrom = 20
)

// AllowedCopies returns how many identical guesses a round of roundSize
// matches tolerates. ok is false when the round size is unlimited.
func AllowedCopies(roundSize int) (allowed int, ok bool) {
	if roundSize >= unlimitedFrom {
		return 0, false
	}
	for _, step := range copyLimitTable {
		if roundSize >= step.MinMatches {
			return step.Allowed, true
		}
	}
	return smallRoundAllowed, true
}

type CopyLimitResult struct {
	Violation bool `json:"violation"`
	Count     int  `json:"count"`
	Allowed   int  `json:"allowed"`
	Unlimited bool `json:"unlimited"`
}

// CountIdentical returns the number of matches both sides guessed with the
// same home and away numbers.
func CountIdentical(participant, rival map[int]Score) int {
	count := 0
	for matchID, guess := range participant {
		if other, ok := rival[matchID]; ok && other == guess {
			count++
		}
	}
	return count
}

// CheckCopyLimit decides whether participant copied too many of rival's
// guesses for a round of roundSize matches.
func CheckCopyLimit(participant, rival map[int]Score, roundSize int) CopyLimitResult {
	res := CopyLimitResult{Count: CountIdentical(participant, rival)}

	allowed, limited := AllowedCopies(roundSize)
	if !limited {
		res.Unlimited = true
		return res
	}
	res.Allowed = allowed
	res.Violation = res.Count > allowed
	return res
}
