package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/standings"
	"golang.org/x/sync/errgroup"
)

// StandingsView is the read model served to clients: the stored league
// table plus group tables rebuilt from the duels.
type StandingsView struct {
	ChampionshipID int                        `json:"championship_id"`
	Format         models.ChampionshipFormat  `json:"format"`
	Stage          models.ChampionshipStage   `json:"stage"`
	Table          []standings.Row            `json:"table"`
	Groups         map[string][]standings.Row `json:"groups,omitempty"`
}

type StandingsService interface {
	GetStandings(ctx context.Context, championshipID int) (*StandingsView, error)
}

type standingsService struct {
	store  Store
	logger *slog.Logger
}

func NewStandingsService(store Store, logger *slog.Logger) StandingsService {
	return &standingsService{store: store, logger: logger}
}

func (s *standingsService) GetStandings(ctx context.Context, championshipID int) (*StandingsView, error) {
	var (
		championship *models.Championship
		participants []models.Participant
		duels        []models.Duel
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.store.Championships.GetByID(gctx, nil, championshipID)
		if err != nil {
			return handleRepositoryError(err, "championship", championshipID)
		}
		championship = c
		return nil
	})
	g.Go(func() error {
		p, err := s.store.Participants.ListActive(gctx, nil, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		participants = p
		return nil
	})
	g.Go(func() error {
		d, err := s.store.Duels.ListByChampionship(gctx, nil, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list duels: %w", err)
		}
		duels = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := make([]standings.Row, 0, len(participants))
	for _, p := range participants {
		table = append(table, standings.Row{ParticipantID: p.ID, TeamName: p.TeamName, Stats: p.Stats})
	}
	standings.Sort(table)

	view := &StandingsView{
		ChampionshipID: championship.ID,
		Format:         championship.Format,
		Stage:          championship.Stage,
		Table:          table,
	}
	if championship.Format == models.FormatGroupStage {
		view.Groups = standings.GroupTables(participants, duels)
	}
	return view, nil
}
