package feed

import (
	"strings"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

// statusTable maps provider short codes to match statuses.
var statusTable = map[string]models.MatchStatus{
	"TBD": models.MatchStatusScheduled,
	"NS":  models.MatchStatusScheduled,

	"1H":   models.MatchStatusLive,
	"HT":   models.MatchStatusLive,
	"2H":   models.MatchStatusLive,
	"ET":   models.MatchStatusLive,
	"BT":   models.MatchStatusLive,
	"P":    models.MatchStatusLive,
	"LIVE": models.MatchStatusLive,
	"INT":  models.MatchStatusLive,
	"SUSP": models.MatchStatusLive,

	"FT":  models.MatchStatusFinished,
	"AET": models.MatchStatusFinished,
	"PEN": models.MatchStatusFinished,

	"PST":  models.MatchStatusPostponed,
	"CANC": models.MatchStatusPostponed,
	"ABD":  models.MatchStatusPostponed,
}

// MapStatus translates a provider status code. ok is false for unknown codes,
// which callers must ignore rather than guess.
func MapStatus(code string) (status models.MatchStatus, ok bool) {
	status, ok = statusTable[strings.ToUpper(strings.TrimSpace(code))]
	return status, ok
}
