// Package standings derives aggregate records from finished duels and
// defines the single ranking order used by league tables, group tables and
// qualification cut-lines.
package standings

import (
	"cmp"
	"slices"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)

// Row is one line of a table.
type Row struct {
	ParticipantID int    `json:"participant_id"`
	TeamName      string `json:"team_name"`
	Position      int    `json:"position"`
	models.Stats
}

// Aggregate rebuilds the record of participantID from scratch using every
// finished duel it appears in. Pending duels and duels of other participants
// are ignored.
func Aggregate(participantID int, duels []models.Duel) models.Stats {
	var s models.Stats
	for i := range duels {
		d := &duels[i]
		if d.Status != models.DuelStatusFinished || !d.Involves(participantID) {
			continue
		}

		own, rival := duelScores(d, participantID)
		s.Played++
		s.GoalsFor += own
		s.GoalsAgainst += rival

		switch {
		case own > rival:
			s.Won++
			s.Points += PointsWin
		case own < rival:
			s.Lost++
			s.Points += PointsLoss
		default:
			s.Drawn++
			s.Points += PointsDraw
		}
	}
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	return s
}

func duelScores(d *models.Duel, participantID int) (own, rival int) {
	home, away := deref(d.HomeScore), deref(d.AwayScore)
	if d.HomeParticipantID == participantID {
		return home, away
	}
	return away, home
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// Compare orders rows for ranking: points, wins, goal difference and goals
// for descending, then team name ascending. Participant id breaks the last
// tie so the order is total even when two teams share a name.
func Compare(a, b Row) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Won, a.Won); c != 0 {
		return c
	}
	if c := cmp.Compare(b.GoalDifference, a.GoalDifference); c != 0 {
		return c
	}
	if c := cmp.Compare(b.GoalsFor, a.GoalsFor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TeamName, b.TeamName); c != 0 {
		return c
	}
	return cmp.Compare(a.ParticipantID, b.ParticipantID)
}

// Sort orders rows in place and assigns 1-based positions.
func Sort(rows []Row) {
	slices.SortFunc(rows, Compare)
	for i := range rows {
		rows[i].Position = i + 1
	}
}

// Table recomputes every participant's record from duels and returns the
// ranked table. Previous aggregates on the participants are ignored.
func Table(participants []models.Participant, duels []models.Duel) []Row {
	rows := make([]Row, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, Row{
			ParticipantID: p.ID,
			TeamName:      p.TeamName,
			Stats:         Aggregate(p.ID, duels),
		})
	}
	Sort(rows)
	return rows
}

// GroupTable ranks the members of one group using only the duels played
// between members of that group.
func GroupTable(label string, participants []models.Participant, duels []models.Duel) []Row {
	members := make([]models.Participant, 0)
	inGroup := make(map[int]bool)
	for _, p := range participants {
		if p.InGroup(label) {
			members = append(members, p)
			inGroup[p.ID] = true
		}
	}

	scoped := make([]models.Duel, 0)
	for _, d := range duels {
		if inGroup[d.HomeParticipantID] && inGroup[d.AwayParticipantID] {
			scoped = append(scoped, d)
		}
	}
	return Table(members, scoped)
}

// GroupTables builds a table for every group label present among participants.
func GroupTables(participants []models.Participant, duels []models.Duel) map[string][]Row {
	tables := make(map[string][]Row)
	for _, p := range participants {
		if p.GroupLabel == nil {
			continue
		}
		if _, done := tables[*p.GroupLabel]; done {
			continue
		}
		tables[*p.GroupLabel] = GroupTable(*p.GroupLabel, participants, duels)
	}
	return tables
}

// TopN returns the first n rows of an already sorted table.
func TopN(rows []Row, n int) []Row {
	if len(rows) < n {
		return rows
	}
	return rows[:n]
}
