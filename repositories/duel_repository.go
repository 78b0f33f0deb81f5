package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

var (
	ErrDuelNotFound   = errors.New("duel not found")
	ErrDuelConflict   = errors.New("participant already has a duel in this round")
	ErrDuelInvalidRef = errors.New("duel round or participant conflict or invalid")
)

type DuelRepository interface {
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]models.Duel, error)
	ListByChampionship(ctx context.Context, exec SQLExecutor, championshipID int) ([]models.Duel, error)
	CreateBatch(ctx context.Context, exec SQLExecutor, duels []*models.Duel) error
	UpdateResult(ctx context.Context, exec SQLExecutor, duel *models.Duel) error
}

type postgresDuelRepository struct {
	db *sql.DB
}

func NewPostgresDuelRepository(db *sql.DB) DuelRepository {
	return &postgresDuelRepository{db: db}
}

func (r *postgresDuelRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const duelColumns = `
	d.id, d.round_id, d.home_participant_id, d.away_participant_id,
	d.home_score, d.away_score, d.winner_id, d.status, d.created_at`

func (r *postgresDuelRepository) list(ctx context.Context, exec SQLExecutor, query string, arg int) ([]models.Duel, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	duels := make([]models.Duel, 0)
	for rows.Next() {
		var d models.Duel
		if err := rows.Scan(
			&d.ID, &d.RoundID, &d.HomeParticipantID, &d.AwayParticipantID,
			&d.HomeScore, &d.AwayScore, &d.WinnerID, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		duels = append(duels, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return duels, nil
}

func (r *postgresDuelRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]models.Duel, error) {
	query := `SELECT` + duelColumns + `
		FROM duels d
		WHERE d.round_id = $1
		ORDER BY d.id`
	return r.list(ctx, exec, query, roundID)
}

func (r *postgresDuelRepository) ListByChampionship(ctx context.Context, exec SQLExecutor, championshipID int) ([]models.Duel, error) {
	query := `SELECT` + duelColumns + `
		FROM duels d
		JOIN rounds r ON r.id = d.round_id
		WHERE r.championship_id = $1
		ORDER BY r.number, d.id`
	return r.list(ctx, exec, query, championshipID)
}

// CreateBatch вставляет все дуэли одним запросом.
func (r *postgresDuelRepository) CreateBatch(ctx context.Context, exec SQLExecutor, duels []*models.Duel) error {
	if len(duels) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(duels))
	valueArgs := make([]interface{}, 0, len(duels)*4)
	for i, d := range duels {
		if d.Status == "" {
			d.Status = models.DuelStatusPending
		}
		base := i * 4
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs, d.RoundID, d.HomeParticipantID, d.AwayParticipantID, d.Status)
	}

	query := fmt.Sprintf(`
		INSERT INTO duels (round_id, home_participant_id, away_participant_id, status)
		VALUES %s
		RETURNING id, created_at`, strings.Join(valueStrings, ","))

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, valueArgs...)
	if err != nil {
		return mapConstraintError(err, ErrDuelConflict, ErrDuelInvalidRef)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(duels) {
			return fmt.Errorf("insert returned more rows than duels (%d)", len(duels))
		}
		if err := rows.Scan(&duels[i].ID, &duels[i].CreatedAt); err != nil {
			return err
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return mapConstraintError(err, ErrDuelConflict, ErrDuelInvalidRef)
	}
	if i != len(duels) {
		return fmt.Errorf("inserted %d duels, expected %d", i, len(duels))
	}
	return nil
}

func (r *postgresDuelRepository) UpdateResult(ctx context.Context, exec SQLExecutor, d *models.Duel) error {
	query := `
		UPDATE duels SET home_score = $1, away_score = $2, winner_id = $3, status = $4
		WHERE id = $5`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, d.HomeScore, d.AwayScore, d.WinnerID, d.Status, d.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDuelNotFound)
}
