package services

import (
	"slices"
	"time"

	"github.com/pedrowallacee/palpitarena-v2/feed"
	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/scoring"
)

// mergeFeedResult applies a provider result to a stored match. Unknown codes
// and backwards transitions are ignored and a finished match is never touched.
func mergeFeedResult(m models.Match, r feed.MatchResult) (models.Match, bool) {
	status, ok := feed.MapStatus(r.Status)
	if !ok || m.Status == models.MatchStatusFinished {
		return m, false
	}
	if status != models.MatchStatusPostponed && status.Rank() < m.Status.Rank() {
		return m, false
	}

	next := m
	next.Status = status
	if r.HomeScore != nil && r.AwayScore != nil {
		home, away := *r.HomeScore, *r.AwayScore
		next.HomeScore, next.AwayScore = &home, &away
	}
	if status == models.MatchStatusFinished && (next.HomeScore == nil || next.AwayScore == nil) {
		return m, false
	}

	changed := next.Status != m.Status ||
		!equalIntPtr(next.HomeScore, m.HomeScore) ||
		!equalIntPtr(next.AwayScore, m.AwayScore)
	return next, changed
}

// scorePrediction evaluates a guess against a finished match.
func scorePrediction(p models.Prediction, m models.Match) (models.Prediction, bool) {
	if !m.HasResult() {
		return p, false
	}
	res := scoring.Evaluate(
		scoring.Score{Home: p.HomeGuess, Away: p.AwayGuess},
		scoring.Score{Home: *m.HomeScore, Away: *m.AwayScore},
	)

	next := p
	next.Points = res.Points
	next.Outcome = string(res.Outcome)
	next.IsExact = res.IsExact()
	next.Processed = true

	changed := next.Points != p.Points || next.Outcome != p.Outcome ||
		next.IsExact != p.IsExact || next.Processed != p.Processed
	return next, changed
}

// roundSettled: every match is finished or postponed and at least one finished.
func roundSettled(matches []models.Match) bool {
	anyResult := false
	for i := range matches {
		if !matches[i].IsSettled() {
			return false
		}
		if matches[i].HasResult() {
			anyResult = true
		}
	}
	return anyResult
}

// resolveDuel sums each side's prediction points over the finished matches
// of the round. points is keyed by participant then match.
func resolveDuel(d models.Duel, matches []models.Match, points map[int]map[int]int) (models.Duel, bool) {
	if !roundSettled(matches) {
		return d, false
	}

	home, away := 0, 0
	for i := range matches {
		if !matches[i].HasResult() {
			continue
		}
		home += points[d.HomeParticipantID][matches[i].ID]
		away += points[d.AwayParticipantID][matches[i].ID]
	}

	next := d
	next.HomeScore, next.AwayScore = &home, &away
	next.Status = models.DuelStatusFinished
	next.WinnerID = nil
	switch {
	case home > away:
		w := d.HomeParticipantID
		next.WinnerID = &w
	case away > home:
		w := d.AwayParticipantID
		next.WinnerID = &w
	}

	changed := d.Status != next.Status ||
		!equalIntPtr(d.HomeScore, next.HomeScore) ||
		!equalIntPtr(d.AwayScore, next.AwayScore) ||
		!equalIntPtr(d.WinnerID, next.WinnerID)
	return next, changed
}

func nextRoundStatus(r models.Round, matches []models.Match, now time.Time) models.RoundStatus {
	switch {
	case r.Status == models.RoundStatusFinished:
		return r.Status
	case roundSettled(matches):
		return models.RoundStatusFinished
	case r.AcceptsDuels() && !now.Before(r.Deadline):
		return models.RoundStatusClosed
	}
	return r.Status
}

// feedDates returns the distinct UTC kickoff days of unfinished matches that
// the provider knows about, in ascending order.
func feedDates(matches []models.Match) []time.Time {
	seen := make(map[time.Time]bool)
	dates := make([]time.Time, 0)
	for i := range matches {
		m := matches[i]
		if m.ExternalID == nil || m.Status == models.MatchStatusFinished {
			continue
		}
		k := m.Kickoff.UTC()
		day := time.Date(k.Year(), k.Month(), k.Day(), 0, 0, 0, 0, time.UTC)
		if !seen[day] {
			seen[day] = true
			dates = append(dates, day)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
