package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/pedrowallacee/palpitarena-v2/events"
	"github.com/pedrowallacee/palpitarena-v2/feed"
	"github.com/pedrowallacee/palpitarena-v2/locks"
	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/repositories"
	"github.com/pedrowallacee/palpitarena-v2/standings"
	"golang.org/x/sync/errgroup"
)

type RecalculationSummary struct {
	RoundID            int                `json:"round_id"`
	ChampionshipID     int                `json:"championship_id"`
	RoundStatus        models.RoundStatus `json:"round_status"`
	UpdatedMatches     int                `json:"updated_matches"`
	UpdatedPredictions int                `json:"updated_predictions"`
	ResolvedDuels      int                `json:"resolved_duels"`
	UpdatedStandings   int                `json:"updated_standings"`
	FeedDegraded       bool               `json:"feed_degraded"`
	Attempts           int                `json:"attempts"`
}

// RoundRecalculatedPayload is the body of the round.recalculated event.
type RoundRecalculatedPayload struct {
	Summary   RecalculationSummary `json:"summary"`
	Standings []standings.Row      `json:"standings"`
}

type RecalculationConfig struct {
	MaxAttempts      int
	FeedTimeout      time.Duration
	RoundLockTTL     time.Duration
	StandingsLockTTL time.Duration
	LockPoll         time.Duration
}

func DefaultRecalculationConfig() RecalculationConfig {
	return RecalculationConfig{
		MaxAttempts:      3,
		FeedTimeout:      10 * time.Second,
		RoundLockTTL:     5 * time.Minute,
		StandingsLockTTL: time.Minute,
		LockPoll:         100 * time.Millisecond,
	}
}

type RecalculationService interface {
	RecalculateRound(ctx context.Context, auth AuthContext, roundID int) (*RecalculationSummary, error)
}

type recalculationService struct {
	store     Store
	provider  feed.Provider
	locker    locks.Locker
	publisher events.Publisher
	clock     clock.Clock
	cfg       RecalculationConfig
	logger    *slog.Logger
}

// NewRecalculationService собирает оркестратор пересчёта тура.
// provider может быть nil: тогда пересчёт идёт только по сохранённым результатам.
func NewRecalculationService(
	store Store,
	provider feed.Provider,
	locker locks.Locker,
	publisher events.Publisher,
	clk clock.Clock,
	cfg RecalculationConfig,
	logger *slog.Logger,
) RecalculationService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.LockPoll <= 0 {
		cfg.LockPoll = 100 * time.Millisecond
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &recalculationService{
		store:     store,
		provider:  provider,
		locker:    locker,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *recalculationService) RecalculateRound(ctx context.Context, auth AuthContext, roundID int) (*RecalculationSummary, error) {
	round, err := s.store.Rounds.GetByID(ctx, nil, roundID)
	if err != nil {
		return nil, handleRepositoryError(err, "round", roundID)
	}
	championship, err := s.store.loadManagedChampionship(ctx, nil, auth, round.ChampionshipID)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.Matches.ListByRound(ctx, nil, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of round %d: %w", roundID, err)
	}

	results, degraded := s.syncFeed(ctx, roundID, matches)

	unlock, err := s.locker.Acquire(ctx, locks.RoundKey(roundID), s.cfg.RoundLockTTL)
	if err != nil {
		if errors.Is(err, locks.ErrLockHeld) {
			return nil, fmt.Errorf("%w: round %d", ErrRecalculationInProgress, roundID)
		}
		return nil, fmt.Errorf("failed to lock round %d: %w", roundID, err)
	}
	defer unlock()

	var (
		summary *RecalculationSummary
		table   []standings.Row
	)
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		summary, table, err = s.recalculateOnce(ctx, roundID, championship, results)
		if err == nil {
			summary.Attempts = attempt
			break
		}
		if !errors.Is(err, ErrTransientStore) || attempt == s.cfg.MaxAttempts {
			break
		}
		s.logger.WarnContext(ctx, "Transient store failure, retrying round recalculation",
			slog.Int("round_id", roundID), slog.Int("attempt", attempt), slog.Any("error", err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("recalculation of round %d failed: %w", roundID, err)
	}
	summary.FeedDegraded = degraded

	s.logger.InfoContext(ctx, "Round recalculated",
		slog.Int("round_id", roundID),
		slog.Int("championship_id", championship.ID),
		slog.Int("updated_matches", summary.UpdatedMatches),
		slog.Int("updated_predictions", summary.UpdatedPredictions),
		slog.Int("resolved_duels", summary.ResolvedDuels),
		slog.Bool("feed_degraded", degraded),
		slog.Int("attempts", summary.Attempts))

	if err := s.publisher.Publish(ctx, events.Event{
		Type:           events.TypeRoundRecalculated,
		ChampionshipID: championship.ID,
		RoundID:        roundID,
		OccurredAt:     s.clock.Now(),
		Payload:        RoundRecalculatedPayload{Summary: *summary, Standings: table},
	}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			slog.String("type", string(events.TypeRoundRecalculated)), slog.Int("round_id", roundID), slog.Any("error", err))
	}
	return summary, nil
}

// syncFeed fetches results for every kickoff day of unfinished matches plus
// the live list, in parallel. On any failure the round is recalculated from
// stored state only.
func (s *recalculationService) syncFeed(ctx context.Context, roundID int, matches []models.Match) (map[int64]feed.MatchResult, bool) {
	if s.provider == nil {
		return nil, false
	}
	dates := feedDates(matches)
	if len(dates) == 0 {
		return nil, false
	}

	batches := make([][]feed.MatchResult, len(dates)+1)
	g, gctx := errgroup.WithContext(ctx)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, s.cfg.FeedTimeout)
			defer cancel()
			res, err := s.provider.FetchResultsForDate(fctx, date)
			if err != nil {
				return fmt.Errorf("results for %s: %w", date.Format(time.DateOnly), err)
			}
			batches[i] = res
			return nil
		})
	}
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, s.cfg.FeedTimeout)
		defer cancel()
		res, err := s.provider.FetchLiveMatches(fctx)
		if err != nil {
			return fmt.Errorf("live matches: %w", err)
		}
		batches[len(dates)] = res
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "Continuing recalculation without feed",
			slog.Int("round_id", roundID),
			slog.Any("error", fmt.Errorf("%w: %v", ErrFeedUnavailable, err)))
		return nil, true
	}

	results := make(map[int64]feed.MatchResult)
	for _, batch := range batches {
		for _, r := range batch {
			prev, seen := results[r.ExternalMatchID]
			if !seen || feedRank(r) >= feedRank(prev) {
				results[r.ExternalMatchID] = r
			}
		}
	}
	return results, false
}

func feedRank(r feed.MatchResult) int {
	status, ok := feed.MapStatus(r.Status)
	if !ok {
		return -1
	}
	return status.Rank()
}

// recalculateOnce runs one full pass inside a single transaction. The
// championship lock taken for the standings step is held until after commit.
func (s *recalculationService) recalculateOnce(
	ctx context.Context,
	roundID int,
	championship *models.Championship,
	results map[int64]feed.MatchResult,
) (*RecalculationSummary, []standings.Row, error) {
	summary := &RecalculationSummary{RoundID: roundID, ChampionshipID: championship.ID}
	var table []standings.Row

	releaseStandings := func() {}
	defer func() { releaseStandings() }()

	err := s.store.Tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		round, err := s.store.Rounds.GetByID(ctx, exec, roundID)
		if err != nil {
			return handleRepositoryError(err, "round", roundID)
		}
		matches, err := s.store.Matches.ListByRound(ctx, exec, roundID)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}

		// 1. Результаты из внешнего источника
		for i := range matches {
			if matches[i].ExternalID == nil {
				continue
			}
			res, ok := results[*matches[i].ExternalID]
			if !ok {
				continue
			}
			next, changed := mergeFeedResult(matches[i], res)
			if !changed {
				continue
			}
			if err := s.store.Matches.UpdateResult(ctx, exec, &next); err != nil {
				return fmt.Errorf("failed to update match %d: %w", next.ID, err)
			}
			matches[i] = next
			summary.UpdatedMatches++
		}

		// 2. Начисление очков за прогнозы
		matchByID := make(map[int]models.Match, len(matches))
		for _, m := range matches {
			matchByID[m.ID] = m
		}
		predictions, err := s.store.Predictions.ListByRound(ctx, exec, roundID)
		if err != nil {
			return fmt.Errorf("failed to list predictions: %w", err)
		}
		points := make(map[int]map[int]int)
		for i := range predictions {
			p := predictions[i]
			if m, ok := matchByID[p.MatchID]; ok {
				next, changed := scorePrediction(p, m)
				if changed {
					if err := s.store.Predictions.UpdateScore(ctx, exec, &next); err != nil {
						return fmt.Errorf("failed to score prediction %d: %w", p.ID, err)
					}
					summary.UpdatedPredictions++
				}
				p = next
			}
			if points[p.ParticipantID] == nil {
				points[p.ParticipantID] = make(map[int]int)
			}
			points[p.ParticipantID][p.MatchID] = p.Points
		}

		// 3. Дуэли тура
		if championship.Format.HasDuels() {
			duels, err := s.store.Duels.ListByRound(ctx, exec, roundID)
			if err != nil {
				return fmt.Errorf("failed to list duels: %w", err)
			}
			for i := range duels {
				next, changed := resolveDuel(duels[i], matches, points)
				if changed {
					if err := s.store.Duels.UpdateResult(ctx, exec, &next); err != nil {
						return fmt.Errorf("failed to resolve duel %d: %w", next.ID, err)
					}
				}
				if next.Status == models.DuelStatusFinished {
					summary.ResolvedDuels++
				}
			}
		}

		// 4. Статус тура
		status := nextRoundStatus(*round, matches, s.clock.Now())
		if status != round.Status {
			if err := s.store.Rounds.UpdateStatus(ctx, exec, roundID, status); err != nil {
				return fmt.Errorf("failed to update round status: %w", err)
			}
		}
		summary.RoundStatus = status

		// 5. Таблица чемпионата под блокировкой чемпионата
		unlock, err := locks.AcquireWait(ctx, s.locker, locks.ChampionshipKey(championship.ID), s.cfg.StandingsLockTTL, s.cfg.LockPoll)
		if err != nil {
			return fmt.Errorf("failed to lock standings of championship %d: %w", championship.ID, err)
		}
		releaseStandings = unlock

		table, err = s.rebuildStandings(ctx, exec, championship)
		if err != nil {
			return err
		}
		summary.UpdatedStandings = len(table)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return summary, table, nil
}

// rebuildStandings replaces every active participant's aggregate.
func (s *recalculationService) rebuildStandings(ctx context.Context, exec repositories.SQLExecutor, championship *models.Championship) ([]standings.Row, error) {
	participants, err := s.store.Participants.ListActive(ctx, exec, championship.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	var table []standings.Row
	if championship.Format.HasDuels() {
		duels, err := s.store.Duels.ListByChampionship(ctx, exec, championship.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list championship duels: %w", err)
		}
		table = standings.Table(participants, duels)
	} else {
		predictions, err := s.store.Predictions.ListByChampionship(ctx, exec, championship.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list championship predictions: %w", err)
		}
		table = standings.PredictionTable(participants, predictions)
	}

	for _, row := range table {
		if err := s.store.Participants.UpdateStats(ctx, exec, row.ParticipantID, row.Stats); err != nil {
			return nil, fmt.Errorf("failed to write standings for participant %d: %w", row.ParticipantID, err)
		}
	}
	return table, nil
}
