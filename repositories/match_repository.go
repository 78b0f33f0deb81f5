package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]models.Match, error) {
	query := `
		SELECT id, round_id, external_id, home_team, away_team, kickoff, status, home_score, away_score, updated_at
		FROM matches
		WHERE round_id = $1
		ORDER BY kickoff, id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(
			&m.ID, &m.RoundID, &m.ExternalID, &m.HomeTeam, &m.AwayTeam, &m.Kickoff,
			&m.Status, &m.HomeScore, &m.AwayScore, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// UpdateResult сохраняет статус и счёт. Завершённый матч назад не откатывается.
func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches SET status = $1, home_score = $2, away_score = $3, updated_at = NOW()
		WHERE id = $4 AND (status <> 'finished' OR $1 = 'finished')
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, m.Status, m.HomeScore, m.AwayScore, m.ID).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return err
	}
	return nil
}
