package brackets

import "github.com/pedrowallacee/palpitarena-v2/models"

const returnLegSuffix = " (return leg)"

// ReturnLegName is the name looked up to detect an already mirrored round.
func ReturnLegName(firstLegName string) string {
	return firstLegName + returnLegSuffix
}

// MirroredRound is a return leg to be created for Source.
type MirroredRound struct {
	Source   models.Round
	Name     string
	Pairings []Pairing
}

// MirrorRounds produces one return leg per first-leg round, in input order,
// with home and away swapped in every duel. Rounds whose mirror name is
// already taken are skipped so repeated calls create nothing new.
func MirrorRounds(firstLegs []models.Round, existingNames map[string]bool) []MirroredRound {
	out := make([]MirroredRound, 0, len(firstLegs))
	for _, r := range firstLegs {
		name := ReturnLegName(r.Name)
		if existingNames[name] {
			continue
		}
		pairs := make([]Pairing, 0, len(r.Duels))
		for _, d := range r.Duels {
			pairs = append(pairs, Pairing{HomeID: d.AwayParticipantID, AwayID: d.HomeParticipantID})
		}
		out = append(out, MirroredRound{Source: r, Name: name, Pairings: pairs})
	}
	return out
}
