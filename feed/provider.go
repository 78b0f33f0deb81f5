// Package feed is the read-only boundary to the third-party match data
// provider. Callers only ever see MatchResult values and the engine's own
// match statuses.
package feed

import (
	"context"
	"errors"
	"time"
)

var ErrUnavailable = errors.New("match data feed unavailable")

// MatchResult is one fixture as reported by the provider. Status keeps the
// provider's raw short code; use MapStatus to translate it.
type MatchResult struct {
	ExternalMatchID int64  `json:"external_match_id"`
	HomeScore       *int   `json:"home_score,omitempty"`
	AwayScore       *int   `json:"away_score,omitempty"`
	Status          string `json:"status"`
}

type Provider interface {
	FetchResultsForDate(ctx context.Context, date time.Time) ([]MatchResult, error)
	FetchLiveMatches(ctx context.Context) ([]MatchResult, error)
}
