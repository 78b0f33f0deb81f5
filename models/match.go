package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusFinished  MatchStatus = "finished"
	MatchStatusPostponed MatchStatus = "postponed"
)

// Rank orders statuses by progress so that a stale feed entry never moves a
// match backwards.
func (s MatchStatus) Rank() int {
	switch s {
	case MatchStatusLive:
		return 1
	case MatchStatusFinished:
		return 2
	default:
		return 0
	}
}

type Match struct {
	ID         int         `json:"id" db:"id"`
	RoundID    int         `json:"round_id" db:"round_id"`
	ExternalID *int64      `json:"external_id,omitempty" db:"external_id"`
	HomeTeam   string      `json:"home_team" db:"home_team"`
	AwayTeam   string      `json:"away_team" db:"away_team"`
	Kickoff    time.Time   `json:"kickoff" db:"kickoff"`
	Status     MatchStatus `json:"status" db:"status"`
	HomeScore  *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore  *int        `json:"away_score,omitempty" db:"away_score"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// IsLocked reports whether guesses for the match are frozen.
func (m *Match) IsLocked(now time.Time) bool {
	return !now.Before(m.Kickoff) || m.Status != MatchStatusScheduled
}

// HasResult reports whether the match is finished with a known score.
func (m *Match) HasResult() bool {
	return m.Status == MatchStatusFinished && m.HomeScore != nil && m.AwayScore != nil
}

// IsSettled reports whether the match no longer affects a pending duel.
func (m *Match) IsSettled() bool {
	return m.Status == MatchStatusFinished || m.Status == MatchStatusPostponed
}
