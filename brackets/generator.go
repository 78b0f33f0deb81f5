// Package brackets holds the pure draw and pairing logic: group assignment,
// knockout seeding, return-leg mirroring and round-robin fixtures. Nothing
// here touches the store; randomness always comes from the caller's source.
package brackets

import (
	"errors"
	"math/rand"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants (minimum 2 required)")
	ErrInvalidGroupSize      = errors.New("group size must be positive")
	ErrIncompleteGroups      = errors.New("knockout seeding requires groups A-D with at least two qualifiers each")
	ErrBracketComplete       = errors.New("knockout bracket already has a champion")
	ErrUnresolvedDuels       = errors.New("previous knockout round has unresolved duels")
)

// Pairing is a home/away couple of participant ids.
type Pairing struct {
	HomeID int `json:"home_participant_id"`
	AwayID int `json:"away_participant_id"`
}

func (p Pairing) Swapped() Pairing {
	return Pairing{HomeID: p.AwayID, AwayID: p.HomeID}
}

// Shuffle returns a shuffled copy of ids using rng.
func Shuffle(rng *rand.Rand, ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
