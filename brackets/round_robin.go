package brackets

import "fmt"

// byeID marks the empty slot added when a group has an odd size.
const byeID = 0

// RoundRobin builds a single round-robin schedule with the circle method:
// every participant meets every other participant once. Matchday k holds
// the pairings for the k-th group round. Home and away alternate between
// matchdays; byes are left out.
func RoundRobin(ids []int) ([][]Pairing, error) {
	if len(ids) < 2 {
		return nil, fmt.Errorf("RoundRobin: %w: found %d", ErrNotEnoughParticipants, len(ids))
	}

	slots := make([]int, len(ids))
	copy(slots, ids)
	if len(slots)%2 == 1 {
		slots = append(slots, byeID)
	}

	n := len(slots)
	matchdays := make([][]Pairing, 0, n-1)
	for day := 0; day < n-1; day++ {
		pairs := make([]Pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == byeID || away == byeID {
				continue
			}
			p := Pairing{HomeID: home, AwayID: away}
			if day%2 == 1 {
				p = p.Swapped()
			}
			pairs = append(pairs, p)
		}
		matchdays = append(matchdays, pairs)

		// Keep slot 0 fixed and rotate the rest clockwise.
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return matchdays, nil
}
