package models

import "time"

type RoundStatus string

const (
	RoundStatusOpen      RoundStatus = "open"
	RoundStatusScheduled RoundStatus = "scheduled"
	RoundStatusClosed    RoundStatus = "closed"
	RoundStatusFinished  RoundStatus = "finished"
)

const (
	LegFirst  = 1
	LegReturn = 2
)

type Round struct {
	ID             int         `json:"id" db:"id"`
	ChampionshipID int         `json:"championship_id" db:"championship_id"`
	Name           string      `json:"name" db:"name"`
	Number         int         `json:"number" db:"number"`
	Leg            int         `json:"leg" db:"leg"`
	Deadline       time.Time   `json:"deadline" db:"deadline"`
	Status         RoundStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	Matches []Match `json:"matches,omitempty" db:"-"`
	Duels   []Duel  `json:"duels,omitempty" db:"-"`
}

// AcceptsDuels reports whether new pairings may still be attached to the round.
func (r *Round) AcceptsDuels() bool {
	return r.Status == RoundStatusOpen || r.Status == RoundStatusScheduled
}
