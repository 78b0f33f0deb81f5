package models

import "time"

// Prediction - прогноз участника на один матч (уникален для пары матч/участник).
type Prediction struct {
	ID            int       `json:"id" db:"id"`
	MatchID       int       `json:"match_id" db:"match_id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	HomeGuess     int       `json:"home_guess" db:"home_guess"`
	AwayGuess     int       `json:"away_guess" db:"away_guess"`
	Points        int       `json:"points" db:"points"`
	Outcome       string    `json:"outcome,omitempty" db:"outcome"`
	IsExact       bool      `json:"is_exact" db:"is_exact"`
	Processed     bool      `json:"processed" db:"processed"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
