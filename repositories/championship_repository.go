package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

var ErrChampionshipNotFound = errors.New("championship not found")

type ChampionshipRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Championship, error)
	UpdateStage(ctx context.Context, exec SQLExecutor, id int, stage models.ChampionshipStage) error
}

type postgresChampionshipRepository struct {
	db *sql.DB
}

func NewPostgresChampionshipRepository(db *sql.DB) ChampionshipRepository {
	return &postgresChampionshipRepository{db: db}
}

func (r *postgresChampionshipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// GetByID не возвращает удалённые (soft delete) чемпионаты.
func (r *postgresChampionshipRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Championship, error) {
	query := `
		SELECT id, name, owner_id, format, stage, capacity, created_at, deleted_at
		FROM championships
		WHERE id = $1 AND deleted_at IS NULL`

	c := &models.Championship{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.OwnerID, &c.Format, &c.Stage, &c.Capacity, &c.CreatedAt, &c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresChampionshipRepository) UpdateStage(ctx context.Context, exec SQLExecutor, id int, stage models.ChampionshipStage) error {
	query := `UPDATE championships SET stage = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, stage, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}
