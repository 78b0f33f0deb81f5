package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/itbasis/go-clock"
	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/repositories"
	"github.com/pedrowallacee/palpitarena-v2/scoring"
)

const maxGuessScore = 99

// Причины отклонения отдельного прогноза.
const (
	RejectMatchNotInRound = "match_not_in_round"
	RejectMatchLocked     = "match_locked"
	RejectInvalidScore    = "invalid_score"
	RejectDuplicate       = "duplicate_match"
	RejectCopyLimit       = "copy_limit_exceeded"
)

type GuessInput struct {
	MatchID   int `json:"match_id"`
	HomeGuess int `json:"home_guess"`
	AwayGuess int `json:"away_guess"`
}

type RejectedGuess struct {
	MatchID int    `json:"match_id"`
	Reason  string `json:"reason"`
}

type SubmissionResult struct {
	Accepted  []models.Prediction      `json:"accepted"`
	Rejected  []RejectedGuess          `json:"rejected"`
	CopyLimit *scoring.CopyLimitResult `json:"copy_limit,omitempty"`
}

type PredictionService interface {
	SubmitPredictions(ctx context.Context, auth AuthContext, roundID int, guesses []GuessInput) (*SubmissionResult, error)
	ValidateCopyLimit(participant, rival map[int]scoring.Score, roundSize int) scoring.CopyLimitResult
}

type predictionService struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger
}

func NewPredictionService(store Store, clk clock.Clock, logger *slog.Logger) PredictionService {
	return &predictionService{store: store, clock: clk, logger: logger}
}

func (s *predictionService) ValidateCopyLimit(participant, rival map[int]scoring.Score, roundSize int) scoring.CopyLimitResult {
	return scoring.CheckCopyLimit(participant, rival, roundSize)
}

// SubmitPredictions stores every acceptable guess and reports the others one
// by one. A rejected guess never aborts the rest of the submission.
func (s *predictionService) SubmitPredictions(ctx context.Context, auth AuthContext, roundID int, guesses []GuessInput) (*SubmissionResult, error) {
	if len(guesses) == 0 {
		return nil, fmt.Errorf("%w: no guesses submitted", ErrValidationRejected)
	}

	result := &SubmissionResult{
		Accepted: make([]models.Prediction, 0, len(guesses)),
		Rejected: make([]RejectedGuess, 0),
	}

	err := s.store.Tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		round, err := s.store.Rounds.GetByID(ctx, exec, roundID)
		if err != nil {
			return handleRepositoryError(err, "round", roundID)
		}
		championship, err := s.store.Championships.GetByID(ctx, exec, round.ChampionshipID)
		if err != nil {
			return handleRepositoryError(err, "championship", round.ChampionshipID)
		}
		participant, err := s.store.Participants.GetByUser(ctx, exec, round.ChampionshipID, auth.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return fmt.Errorf("%w: user %d is not a participant of championship %d", ErrForbiddenOperation, auth.UserID, round.ChampionshipID)
			}
			return fmt.Errorf("failed to load participant: %w", err)
		}

		matches, err := s.store.Matches.ListByRound(ctx, exec, roundID)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		matchByID := make(map[int]models.Match, len(matches))
		for _, m := range matches {
			matchByID[m.ID] = m
		}

		own, rival, err := s.roundGuesses(ctx, exec, championship, roundID, participant.ID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		roundClosed := !now.Before(round.Deadline) || !round.AcceptsDuels()
		seen := make(map[int]bool, len(guesses))

		for _, g := range guesses {
			m, ok := matchByID[g.MatchID]
			switch {
			case !ok:
				result.reject(g.MatchID, RejectMatchNotInRound)
				continue
			case seen[g.MatchID]:
				result.reject(g.MatchID, RejectDuplicate)
				continue
			case roundClosed || m.IsLocked(now):
				result.reject(g.MatchID, RejectMatchLocked)
				continue
			case g.HomeGuess < 0 || g.AwayGuess < 0 || g.HomeGuess > maxGuessScore || g.AwayGuess > maxGuessScore:
				result.reject(g.MatchID, RejectInvalidScore)
				continue
			}
			seen[g.MatchID] = true

			if rival != nil {
				tentative := make(map[int]scoring.Score, len(own)+1)
				for k, v := range own {
					tentative[k] = v
				}
				tentative[g.MatchID] = scoring.Score{Home: g.HomeGuess, Away: g.AwayGuess}
				check := s.ValidateCopyLimit(tentative, rival, len(matches))
				if check.Violation {
					result.CopyLimit = &check
					result.reject(g.MatchID, RejectCopyLimit)
					continue
				}
				own = tentative
			}

			p := &models.Prediction{
				MatchID:       g.MatchID,
				ParticipantID: participant.ID,
				HomeGuess:     g.HomeGuess,
				AwayGuess:     g.AwayGuess,
			}
			if err := s.store.Predictions.Upsert(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to save prediction for match %d: %w", g.MatchID, err)
			}
			result.Accepted = append(result.Accepted, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Predictions submitted",
		slog.Int("round_id", roundID),
		slog.Int("user_id", auth.UserID),
		slog.Int("accepted", len(result.Accepted)),
		slog.Int("rejected", len(result.Rejected)))
	return result, nil
}

// roundGuesses returns the participant's stored guesses for the round and,
// when the round pairs them in a duel, the rival's. rival is nil when there
// is no one to compare against.
func (s *predictionService) roundGuesses(
	ctx context.Context,
	exec repositories.SQLExecutor,
	championship *models.Championship,
	roundID, participantID int,
) (own, rival map[int]scoring.Score, err error) {
	predictions, err := s.store.Predictions.ListByRound(ctx, exec, roundID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list predictions: %w", err)
	}

	rivalID := 0
	if championship.Format.HasDuels() {
		duels, err := s.store.Duels.ListByRound(ctx, exec, roundID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list duels: %w", err)
		}
		for i := range duels {
			if id := duels[i].RivalOf(participantID); id != 0 {
				rivalID = id
				break
			}
		}
	}

	own = make(map[int]scoring.Score)
	if rivalID != 0 {
		rival = make(map[int]scoring.Score)
	}
	for _, p := range predictions {
		score := scoring.Score{Home: p.HomeGuess, Away: p.AwayGuess}
		switch p.ParticipantID {
		case participantID:
			own[p.MatchID] = score
		case rivalID:
			if rival != nil {
				rival[p.MatchID] = score
			}
		}
	}
	return own, rival, nil
}

func (r *SubmissionResult) reject(matchID int, reason string) {
	r.Rejected = append(r.Rejected, RejectedGuess{MatchID: matchID, Reason: reason})
}
