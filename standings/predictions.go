package standings

import (
	"github.com/pedrowallacee/palpitarena-v2/models"
)

// AggregatePredictions builds the record used by league_points championships,
// where there are no duels: points are the sum of awarded prediction points,
// exact hits count as wins, correct outcomes as draws and misses as losses.
func AggregatePredictions(participantID int, predictions []models.Prediction) models.Stats {
	var s models.Stats
	for _, p := range predictions {
		if p.ParticipantID != participantID || !p.Processed {
			continue
		}
		s.Played++
		s.Points += p.Points
		s.GoalsFor += p.Points
		switch {
		case p.IsExact:
			s.Won++
		case p.Points > 0:
			s.Drawn++
		default:
			s.Lost++
		}
	}
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	return s
}

// PredictionTable ranks participants of a league_points championship.
func PredictionTable(participants []models.Participant, predictions []models.Prediction) []Row {
	rows := make([]Row, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, Row{
			ParticipantID: p.ID,
			TeamName:      p.TeamName,
			Stats:         AggregatePredictions(p.ID, predictions),
		})
	}
	Sort(rows)
	return rows
}
