package brackets

import (
	"fmt"
	"sort"

	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/standings"
)

// KnockoutGroups are the groups feeding the fixed cross bracket.
var KnockoutGroups = []string{"A", "B", "C", "D"}

const qualifiersPerGroup = 2

// SeedFromGroups takes ranked group tables and builds the cross bracket
// 1A-2B, 1B-2A, 1C-2D, 1D-2C. Either every pairing is produced or none.
func SeedFromGroups(tables map[string][]standings.Row) ([]Pairing, error) {
	for _, label := range KnockoutGroups {
		rows, ok := tables[label]
		if !ok {
			return nil, fmt.Errorf("%w: group %s is missing", ErrIncompleteGroups, label)
		}
		if len(rows) < qualifiersPerGroup {
			return nil, fmt.Errorf("%w: group %s has %d participants", ErrIncompleteGroups, label, len(rows))
		}
	}

	first := func(label string) int { return tables[label][0].ParticipantID }
	second := func(label string) int { return tables[label][1].ParticipantID }

	return []Pairing{
		{HomeID: first("A"), AwayID: second("B")},
		{HomeID: first("B"), AwayID: second("A")},
		{HomeID: first("C"), AwayID: second("D")},
		{HomeID: first("D"), AwayID: second("C")},
	}, nil
}

// PairSequential pairs a shuffled list 1v2, 3v4, ... An odd trailing
// participant gets no pairing and is returned as unpaired.
func PairSequential(shuffled []int) (pairs []Pairing, unpaired *int, err error) {
	if len(shuffled) < 2 {
		return nil, nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, len(shuffled))
	}

	pairs = make([]Pairing, 0, len(shuffled)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		pairs = append(pairs, Pairing{HomeID: shuffled[i], AwayID: shuffled[i+1]})
	}
	if len(shuffled)%2 == 1 {
		last := shuffled[len(shuffled)-1]
		unpaired = &last
	}
	return pairs, unpaired, nil
}

// AdvanceWinners builds the next knockout round from the duels of the
// previous one: winners of duels 1 and 2 meet, then 3 and 4, and so on, in
// duel id order. A tied duel is won by the participant ranked higher in
// seedRank (lower value).
func AdvanceWinners(duels []models.Duel, seedRank map[int]int) ([]Pairing, error) {
	if len(duels) <= 1 {
		return nil, ErrBracketComplete
	}

	ordered := make([]models.Duel, len(duels))
	copy(ordered, duels)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	winners := make([]int, 0, len(ordered))
	for _, d := range ordered {
		if d.Status != models.DuelStatusFinished {
			return nil, fmt.Errorf("%w: duel %d is %s", ErrUnresolvedDuels, d.ID, d.Status)
		}
		winners = append(winners, duelWinner(d, seedRank))
	}

	pairs, unpaired, err := PairSequential(winners)
	if err != nil {
		return nil, err
	}
	if unpaired != nil {
		return nil, fmt.Errorf("cannot advance an odd number of winners (%d)", len(winners))
	}
	return pairs, nil
}

func duelWinner(d models.Duel, seedRank map[int]int) int {
	if d.WinnerID != nil {
		return *d.WinnerID
	}
	home, okHome := seedRank[d.HomeParticipantID]
	away, okAway := seedRank[d.AwayParticipantID]
	if okAway && (!okHome || away < home) {
		return d.AwayParticipantID
	}
	return d.HomeParticipantID
}
