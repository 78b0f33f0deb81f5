package standings

import (
	"reflect"
	"testing"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

func intPtr(v int) *int { return &v }

func finishedDuel(id, home, away, homeScore, awayScore int) models.Duel {
	return models.Duel{
		ID:                id,
		HomeParticipantID: home,
		AwayParticipantID: away,
		HomeScore:         intPtr(homeScore),
		AwayScore:         intPtr(awayScore),
		Status:            models.DuelStatusFinished,
	}
}

func TestAggregate(t *testing.T) {
	duels := []models.Duel{
		finishedDuel(1, 1, 2, 9, 4),
		finishedDuel(2, 3, 1, 6, 6),
		finishedDuel(3, 1, 4, 2, 7),
		finishedDuel(4, 2, 3, 5, 1),
		{ID: 5, HomeParticipantID: 1, AwayParticipantID: 3, HomeScore: intPtr(10), AwayScore: intPtr(0), Status: models.DuelStatusPending},
	}

	got := Aggregate(1, duels)
	want := models.Stats{
		Points:         4,
		Played:         3,
		Won:            1,
		Drawn:          1,
		Lost:           1,
		GoalsFor:       17,
		GoalsAgainst:   17,
		GoalDifference: 0,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate mismatch, expected:\n%+v\ngot:\n%+v", want, got)
	}
}

func TestAggregateIsFullReplace(t *testing.T) {
	duels := []models.Duel{finishedDuel(1, 1, 2, 3, 1)}
	first := Aggregate(1, duels)
	second := Aggregate(1, duels)
	if first != second {
		t.Errorf("repeated aggregation drifted: %+v vs %+v", first, second)
	}
}

func TestCompareOrder(t *testing.T) {
	rows := []Row{
		{ParticipantID: 1, TeamName: "Delta", Stats: models.Stats{Points: 6, Won: 2, GoalDifference: 3, GoalsFor: 10}},
		{ParticipantID: 2, TeamName: "Alpha", Stats: models.Stats{Points: 6, Won: 2, GoalDifference: 3, GoalsFor: 10}},
		{ParticipantID: 3, TeamName: "Bravo", Stats: models.Stats{Points: 7, Won: 2, GoalDifference: -1, GoalsFor: 4}},
		{ParticipantID: 4, TeamName: "Charlie", Stats: models.Stats{Points: 6, Won: 2, GoalDifference: 5, GoalsFor: 8}},
		{ParticipantID: 5, TeamName: "Echo", Stats: models.Stats{Points: 6, Won: 1, GoalDifference: 9, GoalsFor: 20}},
		{ParticipantID: 6, TeamName: "Foxtrot", Stats: models.Stats{Points: 6, Won: 2, GoalDifference: 3, GoalsFor: 12}},
	}
	Sort(rows)

	var order []int
	for i, r := range rows {
		order = append(order, r.ParticipantID)
		if r.Position != i+1 {
			t.Errorf("row %d has position %d", i, r.Position)
		}
	}
	want := []int{3, 4, 6, 2, 1, 5}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("sort order = %v, want %v", order, want)
	}
}

func TestCompareIsTotal(t *testing.T) {
	rows := []Row{
		{ParticipantID: 1, TeamName: "A", Stats: models.Stats{Points: 3}},
		{ParticipantID: 2, TeamName: "A", Stats: models.Stats{Points: 3}},
		{ParticipantID: 3, TeamName: "B", Stats: models.Stats{Points: 3}},
		{ParticipantID: 4, TeamName: "A", Stats: models.Stats{Points: 1, Won: 4}},
		{ParticipantID: 5, TeamName: "C", Stats: models.Stats{Points: 3, GoalsFor: 2}},
	}

	for _, a := range rows {
		if Compare(a, a) != 0 {
			t.Errorf("Compare(%d, %d) != 0", a.ParticipantID, a.ParticipantID)
		}
		for _, b := range rows {
			if a.ParticipantID == b.ParticipantID {
				continue
			}
			ab, ba := Compare(a, b), Compare(b, a)
			if ab == 0 || ab != -ba {
				t.Errorf("Compare not antisymmetric for %d/%d: %d, %d", a.ParticipantID, b.ParticipantID, ab, ba)
			}
			for _, c := range rows {
				if ab < 0 && Compare(b, c) < 0 && Compare(a, c) >= 0 {
					t.Errorf("Compare not transitive for %d < %d < %d", a.ParticipantID, b.ParticipantID, c.ParticipantID)
				}
			}
		}
	}
}

func TestGroupTableUsesOnlyGroupDuels(t *testing.T) {
	a, b := "A", "B"
	participants := []models.Participant{
		{ID: 1, TeamName: "One", GroupLabel: &a},
		{ID: 2, TeamName: "Two", GroupLabel: &a},
		{ID: 3, TeamName: "Three", GroupLabel: &b},
	}
	duels := []models.Duel{
		finishedDuel(1, 1, 2, 2, 5),
		finishedDuel(2, 1, 3, 9, 0),
	}

	table := GroupTable("A", participants, duels)
	if len(table) != 2 {
		t.Fatalf("expected 2 rows in group A, got %d", len(table))
	}
	if table[0].ParticipantID != 2 || table[0].Points != 3 {
		t.Errorf("group A leader = %+v, want participant 2 with 3 points", table[0])
	}
	if table[1].Played != 1 {
		t.Errorf("cross-group duel leaked into group table: %+v", table[1])
	}

	tables := GroupTables(participants, duels)
	if len(tables) != 2 || len(tables["B"]) != 1 {
		t.Errorf("GroupTables = %v", tables)
	}
}

func TestPredictionTable(t *testing.T) {
	participants := []models.Participant{{ID: 1, TeamName: "One"}, {ID: 2, TeamName: "Two"}}
	predictions := []models.Prediction{
		{ParticipantID: 1, Points: 6, IsExact: true, Processed: true},
		{ParticipantID: 1, Points: 0, Processed: true},
		{ParticipantID: 2, Points: 2, Processed: true},
		{ParticipantID: 2, Points: 1, Processed: true},
		{ParticipantID: 2, Points: 4, IsExact: true, Processed: true},
		{ParticipantID: 2, Points: 3, Processed: false},
	}

	table := PredictionTable(participants, predictions)
	if table[0].ParticipantID != 2 || table[0].Points != 7 || table[0].Won != 1 || table[0].Drawn != 2 {
		t.Errorf("leader = %+v", table[0])
	}
	if table[1].Points != 6 || table[1].Lost != 1 || table[1].Played != 2 {
		t.Errorf("runner-up = %+v", table[1])
	}
}
