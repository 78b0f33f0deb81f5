package brackets

import "fmt"

// OverflowGroupLabel receives participants that do not fit the label set.
const OverflowGroupLabel = "Z"

var DefaultGroupLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

type GroupAssignment struct {
	ParticipantID int    `json:"participant_id"`
	Label         string `json:"group_label"`
}

// AssignGroups splits an already shuffled list into consecutive groups of
// groupSize: position i goes to labels[i/groupSize], or to the overflow
// group once the labels run out.
func AssignGroups(shuffled []int, groupSize int, labels []string) ([]GroupAssignment, error) {
	if groupSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGroupSize, groupSize)
	}
	if len(shuffled) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, len(shuffled))
	}

	out := make([]GroupAssignment, 0, len(shuffled))
	for i, id := range shuffled {
		label := OverflowGroupLabel
		if idx := i / groupSize; idx < len(labels) {
			label = labels[idx]
		}
		out = append(out, GroupAssignment{ParticipantID: id, Label: label})
	}
	return out, nil
}

// Groups collects assignments by label, keeping draw order inside each group.
func Groups(assignments []GroupAssignment) map[string][]int {
	groups := make(map[string][]int)
	for _, a := range assignments {
		groups[a.Label] = append(groups[a.Label], a.ParticipantID)
	}
	return groups
}
