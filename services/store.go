package services

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/pedrowallacee/palpitarena-v2/db"
	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/repositories"
)

// TxRunner runs fn inside one store transaction; fn receives the executor to
// hand to repositories.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

// Store bundles the repositories the services share.
type Store struct {
	Tx            TxRunner
	Championships repositories.ChampionshipRepository
	Participants  repositories.ParticipantRepository
	Rounds        repositories.RoundRepository
	Matches       repositories.MatchRepository
	Predictions   repositories.PredictionRepository
	Duels         repositories.DuelRepository
}

func NewPostgresStore(conn *sql.DB, logger *slog.Logger) Store {
	return Store{
		Tx:            db.NewTxRunner(conn, logger),
		Championships: repositories.NewPostgresChampionshipRepository(conn),
		Participants:  repositories.NewPostgresParticipantRepository(conn),
		Rounds:        repositories.NewPostgresRoundRepository(conn),
		Matches:       repositories.NewPostgresMatchRepository(conn),
		Predictions:   repositories.NewPostgresPredictionRepository(conn),
		Duels:         repositories.NewPostgresDuelRepository(conn),
	}
}

// loadManagedChampionship fetches the championship and checks the caller may manage it.
func (s Store) loadManagedChampionship(ctx context.Context, exec repositories.SQLExecutor, auth AuthContext, championshipID int) (*models.Championship, error) {
	c, err := s.Championships.GetByID(ctx, exec, championshipID)
	if err != nil {
		return nil, handleRepositoryError(err, "championship", championshipID)
	}
	if err := authorizeManage(auth, c); err != nil {
		return nil, err
	}
	return c, nil
}
