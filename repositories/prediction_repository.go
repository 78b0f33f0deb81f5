package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

var (
	ErrPredictionNotFound   = errors.New("prediction not found")
	ErrPredictionInvalidRef = errors.New("prediction match or participant conflict or invalid")
)

type PredictionRepository interface {
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]models.Prediction, error)
	ListByChampionship(ctx context.Context, exec SQLExecutor, championshipID int) ([]models.Prediction, error)
	Upsert(ctx context.Context, exec SQLExecutor, prediction *models.Prediction) error
	UpdateScore(ctx context.Context, exec SQLExecutor, prediction *models.Prediction) error
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

func (r *postgresPredictionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const predictionColumns = `
	p.id, p.match_id, p.participant_id, p.home_guess, p.away_guess,
	p.points, p.outcome, p.is_exact, p.processed, p.created_at, p.updated_at`

func (r *postgresPredictionRepository) list(ctx context.Context, exec SQLExecutor, query string, arg int) ([]models.Prediction, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]models.Prediction, 0)
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(
			&p.ID, &p.MatchID, &p.ParticipantID, &p.HomeGuess, &p.AwayGuess,
			&p.Points, &p.Outcome, &p.IsExact, &p.Processed, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *postgresPredictionRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]models.Prediction, error) {
	query := `SELECT` + predictionColumns + `
		FROM predictions p
		JOIN matches m ON m.id = p.match_id
		WHERE m.round_id = $1
		ORDER BY p.participant_id, p.match_id`
	return r.list(ctx, exec, query, roundID)
}

func (r *postgresPredictionRepository) ListByChampionship(ctx context.Context, exec SQLExecutor, championshipID int) ([]models.Prediction, error) {
	query := `SELECT` + predictionColumns + `
		FROM predictions p
		JOIN matches m ON m.id = p.match_id
		JOIN rounds r ON r.id = m.round_id
		WHERE r.championship_id = $1
		ORDER BY p.participant_id, p.match_id`
	return r.list(ctx, exec, query, championshipID)
}

// Upsert создаёт или заменяет прогноз (уникален для пары матч/участник).
// Смена прогноза сбрасывает начисленные очки.
func (r *postgresPredictionRepository) Upsert(ctx context.Context, exec SQLExecutor, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (match_id, participant_id, home_guess, away_guess)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id, participant_id) DO UPDATE SET
			home_guess = EXCLUDED.home_guess,
			away_guess = EXCLUDED.away_guess,
			points = 0, outcome = '', is_exact = FALSE, processed = FALSE,
			updated_at = NOW()
		RETURNING id, points, outcome, is_exact, processed, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, p.MatchID, p.ParticipantID, p.HomeGuess, p.AwayGuess).Scan(
		&p.ID, &p.Points, &p.Outcome, &p.IsExact, &p.Processed, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return mapConstraintError(err, nil, ErrPredictionInvalidRef)
	}
	return nil
}

func (r *postgresPredictionRepository) UpdateScore(ctx context.Context, exec SQLExecutor, p *models.Prediction) error {
	query := `
		UPDATE predictions SET points = $1, outcome = $2, is_exact = $3, processed = $4, updated_at = NOW()
		WHERE id = $5`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, p.Points, p.Outcome, p.IsExact, p.Processed, p.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}
