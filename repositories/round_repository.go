package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

var (
	ErrRoundNotFound     = errors.New("round not found")
	ErrRoundNameConflict = errors.New("round name already exists in this championship")
	ErrRoundInvalidRef   = errors.New("round championship conflict or invalid")
)

type RoundRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error)
	ListByChampionship(ctx context.Context, exec SQLExecutor, championshipID int) ([]models.Round, error)
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error) {
	query := `
		SELECT id, championship_id, name, number, leg, deadline, status, created_at
		FROM rounds
		WHERE id = $1`

	round := &models.Round{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(
		&round.ID, &round.ChampionshipID, &round.Name, &round.Number, &round.Leg,
		&round.Deadline, &round.Status, &round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

// ListByChampionship возвращает туры в порядке номера.
func (r *postgresRoundRepository) ListByChampionship(ctx context.Context, exec SQLExecutor, championshipID int) ([]models.Round, error) {
	query := `
		SELECT id, championship_id, name, number, leg, deadline, status, created_at
		FROM rounds
		WHERE championship_id = $1
		ORDER BY number, id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, championshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		if err := rows.Scan(
			&round.ID, &round.ChampionshipID, &round.Name, &round.Number, &round.Leg,
			&round.Deadline, &round.Status, &round.CreatedAt,
		); err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO rounds (championship_id, name, number, leg, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		round.ChampionshipID, round.Name, round.Number, round.Leg, round.Deadline, round.Status,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return mapConstraintError(err, ErrRoundNameConflict, ErrRoundInvalidRef)
	}
	return nil
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE rounds SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
