package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/pedrowallacee/palpitarena-v2/brackets"
	"github.com/pedrowallacee/palpitarena-v2/events"
	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/repositories"
	"github.com/pedrowallacee/palpitarena-v2/standings"
)

type BracketConfig struct {
	GroupSize       int
	GroupLabels     []string
	ReturnLegOffset time.Duration
}

func DefaultBracketConfig() BracketConfig {
	return BracketConfig{
		GroupSize:       4,
		GroupLabels:     brackets.DefaultGroupLabels,
		ReturnLegOffset: 7 * 24 * time.Hour,
	}
}

// KnockoutDraw is the result of a direct knockout draw. Unpaired is the
// participant left out when the count is odd.
type KnockoutDraw struct {
	RoundID  int           `json:"round_id"`
	Duels    []models.Duel `json:"duels"`
	Unpaired *int          `json:"unpaired_participant_id,omitempty"`
}

type BracketService interface {
	DrawGroups(ctx context.Context, auth AuthContext, championshipID int) (map[string][]models.Participant, error)
	GenerateGroupFixtures(ctx context.Context, auth AuthContext, championshipID int) (int, error)
	GenerateKnockoutFromGroups(ctx context.Context, auth AuthContext, championshipID int) ([]models.Duel, error)
	DrawDirectKnockout(ctx context.Context, auth AuthContext, championshipID int) (*KnockoutDraw, error)
	AdvanceKnockout(ctx context.Context, auth AuthContext, championshipID int) ([]models.Duel, error)
	GenerateReturnLegs(ctx context.Context, auth AuthContext, championshipID int) (int, error)
}

type bracketService struct {
	store     Store
	publisher events.Publisher
	clock     clock.Clock
	cfg       BracketConfig
	logger    *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewBracketService создаёт сервис жеребьёвки. rng задаёт источник случайности;
// nil означает источник, засеянный текущим временем.
func NewBracketService(
	store Store,
	publisher events.Publisher,
	clk clock.Clock,
	rng *rand.Rand,
	cfg BracketConfig,
	logger *slog.Logger,
) BracketService {
	if rng == nil {
		rng = rand.New(rand.NewSource(clk.Now().UnixNano()))
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if len(cfg.GroupLabels) == 0 {
		cfg.GroupLabels = brackets.DefaultGroupLabels
	}
	return &bracketService{
		store:     store,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
		rng:       rng,
	}
}

func (s *bracketService) shuffle(ids []int) []int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return brackets.Shuffle(s.rng, ids)
}

func (s *bracketService) publish(ctx context.Context, t events.Type, championshipID, roundID int, payload interface{}) {
	if err := s.publisher.Publish(ctx, events.Event{
		Type:           t,
		ChampionshipID: championshipID,
		RoundID:        roundID,
		OccurredAt:     s.clock.Now(),
		Payload:        payload,
	}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			slog.String("type", string(t)), slog.Int("championship_id", championshipID), slog.Any("error", err))
	}
}

func participantIDs(participants []models.Participant) []int {
	ids := make([]int, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	return ids
}

// targetRound is the earliest open or scheduled first-leg round, after
// minNumber, that has no duels yet.
func targetRound(rounds []models.Round, duels []models.Duel, minNumber int) *models.Round {
	used := make(map[int]bool)
	for _, d := range duels {
		used[d.RoundID] = true
	}
	for i := range rounds {
		r := rounds[i]
		if r.Number > minNumber && r.Leg != models.LegReturn && r.AcceptsDuels() && !used[r.ID] {
			return &r
		}
	}
	return nil
}

func toDuels(roundID int, pairs []brackets.Pairing) []*models.Duel {
	duels := make([]*models.Duel, 0, len(pairs))
	for _, p := range pairs {
		duels = append(duels, &models.Duel{
			RoundID:           roundID,
			HomeParticipantID: p.HomeID,
			AwayParticipantID: p.AwayID,
			Status:            models.DuelStatusPending,
		})
	}
	return duels
}

func derefDuels(duels []*models.Duel) []models.Duel {
	out := make([]models.Duel, len(duels))
	for i, d := range duels {
		out[i] = *d
	}
	return out
}

func requireFormat(c *models.Championship, format models.ChampionshipFormat) error {
	if c.Format != format {
		return preconditionf("championship %d has format %s, %s required", c.ID, c.Format, format)
	}
	return nil
}

func requireStage(c *models.Championship, stages ...models.ChampionshipStage) error {
	for _, st := range stages {
		if c.Stage == st {
			return nil
		}
	}
	return preconditionf("championship %d is in stage %s", c.ID, c.Stage)
}

func (s *bracketService) DrawGroups(ctx context.Context, auth AuthContext, championshipID int) (map[string][]models.Participant, error) {
	groups := make(map[string][]models.Participant)

	err := s.store.Tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		c, err := s.store.loadManagedChampionship(ctx, exec, auth, championshipID)
		if err != nil {
			return err
		}
		if err := requireFormat(c, models.FormatGroupStage); err != nil {
			return err
		}
		if err := requireStage(c, models.StageRegistration, models.StageGroupStage); err != nil {
			return err
		}

		existing, err := s.store.Duels.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list duels: %w", err)
		}
		if len(existing) > 0 {
			return preconditionf("championship %d already has group fixtures", championshipID)
		}

		participants, err := s.store.Participants.ListActive(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		assignments, err := brackets.AssignGroups(s.shuffle(participantIDs(participants)), s.cfg.GroupSize, s.cfg.GroupLabels)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
		}

		labels := make(map[int]string, len(assignments))
		for _, a := range assignments {
			labels[a.ParticipantID] = a.Label
		}
		if err := s.store.Participants.UpdateGroupLabels(ctx, exec, labels); err != nil {
			return fmt.Errorf("failed to save group draw: %w", err)
		}
		if err := s.store.Championships.UpdateStage(ctx, exec, championshipID, models.StageGroupStage); err != nil {
			return fmt.Errorf("failed to update championship stage: %w", err)
		}

		byID := make(map[int]models.Participant, len(participants))
		for _, p := range participants {
			byID[p.ID] = p
		}
		for _, a := range assignments {
			p := byID[a.ParticipantID]
			label := a.Label
			p.GroupLabel = &label
			groups[label] = append(groups[label], p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Groups drawn", slog.Int("championship_id", championshipID), slog.Int("groups", len(groups)))
	s.publish(ctx, events.TypeGroupsDrawn, championshipID, 0, groups)
	return groups, nil
}

func (s *bracketService) GenerateGroupFixtures(ctx context.Context, auth AuthContext, championshipID int) (int, error) {
	var created []models.Duel

	err := s.store.Tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		c, err := s.store.loadManagedChampionship(ctx, exec, auth, championshipID)
		if err != nil {
			return err
		}
		if err := requireFormat(c, models.FormatGroupStage); err != nil {
			return err
		}
		if err := requireStage(c, models.StageGroupStage); err != nil {
			return err
		}

		participants, err := s.store.Participants.ListActive(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		members := make(map[string][]int)
		for _, p := range participants {
			if p.GroupLabel == nil {
				return preconditionf("participant %d has no group", p.ID)
			}
			members[*p.GroupLabel] = append(members[*p.GroupLabel], p.ID)
		}

		existing, err := s.store.Duels.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list duels: %w", err)
		}
		if len(existing) > 0 {
			return preconditionf("championship %d already has fixtures", championshipID)
		}

		labels := make([]string, 0, len(members))
		for label := range members {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		// Группа из одного участника матчей не играет.
		var matchdays [][]brackets.Pairing
		for _, label := range labels {
			if len(members[label]) < 2 {
				continue
			}
			schedule, err := brackets.RoundRobin(members[label])
			if err != nil {
				return fmt.Errorf("%w: group %s: %v", ErrPreconditionFailed, label, err)
			}
			for day, pairs := range schedule {
				if day == len(matchdays) {
					matchdays = append(matchdays, nil)
				}
				matchdays[day] = append(matchdays[day], pairs...)
			}
		}
		if len(matchdays) == 0 {
			return preconditionf("no group has two participants")
		}

		rounds, err := s.store.Rounds.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list rounds: %w", err)
		}
		free := make([]models.Round, 0, len(rounds))
		for _, r := range rounds {
			if r.AcceptsDuels() {
				free = append(free, r)
			}
		}
		if len(free) < len(matchdays) {
			return preconditionf("group fixtures need %d open rounds, found %d", len(matchdays), len(free))
		}

		for day, pairs := range matchdays {
			duels := toDuels(free[day].ID, pairs)
			if err := s.store.Duels.CreateBatch(ctx, exec, duels); err != nil {
				return handleRepositoryError(err, "round", free[day].ID)
			}
			created = append(created, derefDuels(duels)...)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Group fixtures generated", slog.Int("championship_id", championshipID), slog.Int("duels", len(created)))
	s.publish(ctx, events.TypeGroupFixtures, championshipID, 0, created)
	return len(created), nil
}

func (s *bracketService) GenerateKnockoutFromGroups(ctx context.Context, auth AuthContext, championshipID int) ([]models.Duel, error) {
	var (
		created []models.Duel
		roundID int
	)

	err := s.store.Tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		c, err := s.store.loadManagedChampionship(ctx, exec, auth, championshipID)
		if err != nil {
			return err
		}
		if err := requireFormat(c, models.FormatGroupStage); err != nil {
			return err
		}
		if err := requireStage(c, models.StageGroupStage); err != nil {
			return err
		}

		participants, err := s.store.Participants.ListActive(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		duels, err := s.store.Duels.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list duels: %w", err)
		}

		pairs, err := brackets.SeedFromGroups(standings.GroupTables(participants, duels))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
		}

		rounds, err := s.store.Rounds.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list rounds: %w", err)
		}
		target := targetRound(rounds, duels, 0)
		if target == nil {
			return preconditionf("no open round without duels for the knockout stage")
		}

		newDuels := toDuels(target.ID, pairs)
		if err := s.store.Duels.CreateBatch(ctx, exec, newDuels); err != nil {
			return handleRepositoryError(err, "round", target.ID)
		}
		if err := s.store.Championships.UpdateStage(ctx, exec, championshipID, models.StageKnockout); err != nil {
			return fmt.Errorf("failed to update championship stage: %w", err)
		}
		created = derefDuels(newDuels)
		roundID = target.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Knockout generated from groups", slog.Int("championship_id", championshipID), slog.Int("round_id", roundID))
	s.publish(ctx, events.TypeBracketGenerated, championshipID, roundID, created)
	return created, nil
}

func (s *bracketService) DrawDirectKnockout(ctx context.Context, auth AuthContext, championshipID int) (*KnockoutDraw, error) {
	draw := &KnockoutDraw{}

	err := s.store.Tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		c, err := s.store.loadManagedChampionship(ctx, exec, auth, championshipID)
		if err != nil {
			return err
		}
		if err := requireFormat(c, models.FormatKnockout); err != nil {
			return err
		}
		if err := requireStage(c, models.StageRegistration); err != nil {
			return err
		}

		participants, err := s.store.Participants.ListActive(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		pairs, unpaired, err := brackets.PairSequential(s.shuffle(participantIDs(participants)))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
		}

		rounds, err := s.store.Rounds.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list rounds: %w", err)
		}
		duels, err := s.store.Duels.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list duels: %w", err)
		}
		target := targetRound(rounds, duels, 0)
		if target == nil {
			return preconditionf("no open round without duels for the knockout draw")
		}

		newDuels := toDuels(target.ID, pairs)
		if err := s.store.Duels.CreateBatch(ctx, exec, newDuels); err != nil {
			return handleRepositoryError(err, "round", target.ID)
		}
		if err := s.store.Championships.UpdateStage(ctx, exec, championshipID, models.StageKnockout); err != nil {
			return fmt.Errorf("failed to update championship stage: %w", err)
		}
		draw.RoundID = target.ID
		draw.Duels = derefDuels(newDuels)
		draw.Unpaired = unpaired
		return nil
	})
	if err != nil {
		return nil, err
	}

	if draw.Unpaired != nil {
		s.logger.WarnContext(ctx, "Odd participant count, one participant left out of the knockout",
			slog.Int("championship_id", championshipID), slog.Int("participant_id", *draw.Unpaired))
	}
	s.publish(ctx, events.TypeBracketGenerated, championshipID, draw.RoundID, draw)
	return draw, nil
}

// AdvanceKnockout pairs the winners of the latest knockout round into the
// next open round. When that round has a return leg, both legs are summed. Ties go to the participant ranked higher in the league table.
func (s *bracketService) AdvanceKnockout(ctx context.Context, auth AuthContext, championshipID int) ([]models.Duel, error) {
	var (
		created []models.Duel
		roundID int
	)

	err := s.store.Tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		c, err := s.store.loadManagedChampionship(ctx, exec, auth, championshipID)
		if err != nil {
			return err
		}
		if err := requireStage(c, models.StageKnockout); err != nil {
			return err
		}

		rounds, err := s.store.Rounds.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list rounds: %w", err)
		}
		duels, err := s.store.Duels.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list duels: %w", err)
		}
		participants, err := s.store.Participants.ListActive(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}

		byRound := duelsByRound(duels)
		latest := latestFirstLegWithDuels(rounds, byRound)
		if latest == nil {
			return preconditionf("championship %d has no knockout duels", championshipID)
		}

		tie := byRound[latest.ID]
		if ret := roundByName(rounds, brackets.ReturnLegName(latest.Name)); ret != nil && len(byRound[ret.ID]) > 0 {
			tie = aggregateLegs(tie, byRound[ret.ID])
		}

		seedRank := make(map[int]int)
		for _, row := range standings.Table(participants, duels) {
			seedRank[row.ParticipantID] = row.Position
		}

		pairs, err := brackets.AdvanceWinners(tie, seedRank)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
		}

		target := targetRound(rounds, duels, latest.Number)
		if target == nil {
			return preconditionf("no open round after round %d for the next knockout stage", latest.Number)
		}
		newDuels := toDuels(target.ID, pairs)
		if err := s.store.Duels.CreateBatch(ctx, exec, newDuels); err != nil {
			return handleRepositoryError(err, "round", target.ID)
		}
		created = derefDuels(newDuels)
		roundID = target.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeBracketGenerated, championshipID, roundID, created)
	return created, nil
}

func (s *bracketService) GenerateReturnLegs(ctx context.Context, auth AuthContext, championshipID int) (int, error) {
	var created []brackets.MirroredRound

	err := s.store.Tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		c, err := s.store.loadManagedChampionship(ctx, exec, auth, championshipID)
		if err != nil {
			return err
		}
		if !c.Format.HasDuels() {
			return preconditionf("championship %d has no duels to mirror", championshipID)
		}

		rounds, err := s.store.Rounds.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list rounds: %w", err)
		}
		duels, err := s.store.Duels.ListByChampionship(ctx, exec, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list duels: %w", err)
		}
		byRound := duelsByRound(duels)

		existing := make(map[string]bool, len(rounds))
		firstLegs := make([]models.Round, 0)
		lastNumber := 0
		for _, r := range rounds {
			existing[r.Name] = true
			if r.Number > lastNumber {
				lastNumber = r.Number
			}
			if r.Leg == models.LegFirst && len(byRound[r.ID]) > 0 {
				r.Duels = byRound[r.ID]
				firstLegs = append(firstLegs, r)
			}
		}

		for _, mirror := range brackets.MirrorRounds(firstLegs, existing) {
			lastNumber++
			round := &models.Round{
				ChampionshipID: championshipID,
				Name:           mirror.Name,
				Number:         lastNumber,
				Leg:            models.LegReturn,
				Deadline:       mirror.Source.Deadline.Add(s.cfg.ReturnLegOffset),
				Status:         models.RoundStatusScheduled,
			}
			if err := s.store.Rounds.Create(ctx, exec, round); err != nil {
				return handleRepositoryError(err, "championship", championshipID)
			}
			if err := s.store.Duels.CreateBatch(ctx, exec, toDuels(round.ID, mirror.Pairings)); err != nil {
				return handleRepositoryError(err, "round", round.ID)
			}
			created = append(created, mirror)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(created) > 0 {
		s.logger.InfoContext(ctx, "Return legs created", slog.Int("championship_id", championshipID), slog.Int("rounds", len(created)))
		s.publish(ctx, events.TypeReturnLegsCreated, championshipID, 0, len(created))
	}
	return len(created), nil
}

func duelsByRound(duels []models.Duel) map[int][]models.Duel {
	out := make(map[int][]models.Duel)
	for _, d := range duels {
		out[d.RoundID] = append(out[d.RoundID], d)
	}
	return out
}

// latestFirstLegWithDuels ignores return legs: they are numbered after every
// existing round and are reached through their first leg's name.
func latestFirstLegWithDuels(rounds []models.Round, byRound map[int][]models.Duel) *models.Round {
	var latest *models.Round
	for i := range rounds {
		if rounds[i].Leg == models.LegReturn || len(byRound[rounds[i].ID]) == 0 {
			continue
		}
		if latest == nil || rounds[i].Number > latest.Number {
			latest = &rounds[i]
		}
	}
	return latest
}

func roundByName(rounds []models.Round, name string) *models.Round {
	for i := range rounds {
		if rounds[i].Name == name {
			return &rounds[i]
		}
	}
	return nil
}

// aggregateLegs folds each return-leg duel into its first leg, keyed by the
// first leg's home participant, and decides the winner on the summed score.
func aggregateLegs(first, second []models.Duel) []models.Duel {
	byHome := make(map[int]models.Duel, len(second))
	for _, d := range second {
		byHome[d.AwayParticipantID] = d
	}

	out := make([]models.Duel, 0, len(first))
	for _, d := range first {
		ret, ok := byHome[d.HomeParticipantID]
		if !ok {
			out = append(out, d)
			continue
		}
		agg := d
		if d.Status != models.DuelStatusFinished || ret.Status != models.DuelStatusFinished {
			agg.Status = models.DuelStatusPending
			out = append(out, agg)
			continue
		}
		home := deref(d.HomeScore) + deref(ret.AwayScore)
		away := deref(d.AwayScore) + deref(ret.HomeScore)
		agg.HomeScore, agg.AwayScore, agg.WinnerID = &home, &away, nil
		switch {
		case home > away:
			w := d.HomeParticipantID
			agg.WinnerID = &w
		case away > home:
			w := d.AwayParticipantID
			agg.WinnerID = &w
		}
		out = append(out, agg)
	}
	return out
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
