package models

import "time"

// Participant is a league member. The aggregate fields are derived from
// finished duels (or scored predictions in league_points format) and are
// only ever written by the standings step of a round recalculation.
type Participant struct {
	ID             int       `json:"id" db:"id"`
	ChampionshipID int       `json:"championship_id" db:"championship_id"`
	UserID         int       `json:"user_id" db:"user_id"`
	TeamName       string    `json:"team_name" db:"team_name"`
	GroupLabel     *string   `json:"group_label,omitempty" db:"group_label"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	Stats
}

// Stats is the aggregate record of a participant within one scope.
type Stats struct {
	Points         int `json:"points" db:"points"`
	Played         int `json:"played" db:"played"`
	Won            int `json:"won" db:"won"`
	Drawn          int `json:"drawn" db:"drawn"`
	Lost           int `json:"lost" db:"lost"`
	GoalsFor       int `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int `json:"goals_against" db:"goals_against"`
	GoalDifference int `json:"goal_difference" db:"goal_difference"`
}

func (p *Participant) InGroup(label string) bool {
	return p.GroupLabel != nil && *p.GroupLabel == label
}
