package models

import "time"

type DuelStatus string

const (
	DuelStatusPending  DuelStatus = "pending"
	DuelStatusFinished DuelStatus = "finished"
)

// Duel is a head-to-head pairing for one round. A finished duel with a nil
// WinnerID is a tie.
type Duel struct {
	ID                int        `json:"id" db:"id"`
	RoundID           int        `json:"round_id" db:"round_id"`
	HomeParticipantID int        `json:"home_participant_id" db:"home_participant_id"`
	AwayParticipantID int        `json:"away_participant_id" db:"away_participant_id"`
	HomeScore         *int       `json:"home_score,omitempty" db:"home_score"`
	AwayScore         *int       `json:"away_score,omitempty" db:"away_score"`
	WinnerID          *int       `json:"winner_id,omitempty" db:"winner_id"`
	Status            DuelStatus `json:"status" db:"status"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

func (d *Duel) Involves(participantID int) bool {
	return d.HomeParticipantID == participantID || d.AwayParticipantID == participantID
}

// RivalOf returns the opponent of participantID, or 0 if the participant is
// not part of the duel.
func (d *Duel) RivalOf(participantID int) int {
	switch participantID {
	case d.HomeParticipantID:
		return d.AwayParticipantID
	case d.AwayParticipantID:
		return d.HomeParticipantID
	}
	return 0
}
