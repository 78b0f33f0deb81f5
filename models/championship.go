package models

import "time"

// ChampionshipFormat определяет, какие компоненты движка применяются к чемпионату.
type ChampionshipFormat string

const (
	FormatLeaguePoints ChampionshipFormat = "league_points"
	FormatGroupStage   ChampionshipFormat = "group_stage"
	FormatKnockout     ChampionshipFormat = "knockout"
)

// HasDuels reports whether rounds of this format are decided head-to-head.
func (f ChampionshipFormat) HasDuels() bool {
	return f == FormatGroupStage || f == FormatKnockout
}

// ChampionshipStage соответствует ENUM championship_stage в БД.
type ChampionshipStage string

const (
	StageRegistration ChampionshipStage = "registration"
	StageLeague       ChampionshipStage = "league"
	StageGroupStage   ChampionshipStage = "group_stage"
	StageKnockout     ChampionshipStage = "knockout"
	StageFinished     ChampionshipStage = "finished"
)

type Championship struct {
	ID        int                `json:"id" db:"id"`
	Name      string             `json:"name" db:"name"`
	OwnerID   int                `json:"owner_id" db:"owner_id"`
	Format    ChampionshipFormat `json:"format" db:"format"`
	Stage     ChampionshipStage  `json:"stage" db:"stage"`
	Capacity  int                `json:"capacity" db:"capacity"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	DeletedAt *time.Time         `json:"-" db:"deleted_at"`

	Participants []Participant `json:"participants,omitempty" db:"-"`
	Rounds       []Round       `json:"rounds,omitempty" db:"-"`
}
