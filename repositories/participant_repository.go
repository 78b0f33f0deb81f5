package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

var ErrParticipantNotFound = errors.New("participant not found")

type ParticipantRepository interface {
	ListActive(ctx context.Context, exec SQLExecutor, championshipID int) ([]models.Participant, error)
	GetByUser(ctx context.Context, exec SQLExecutor, championshipID, userID int) (*models.Participant, error)
	UpdateGroupLabels(ctx context.Context, exec SQLExecutor, labels map[int]string) error
	UpdateStats(ctx context.Context, exec SQLExecutor, participantID int, stats models.Stats) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const participantColumns = `
	id, championship_id, user_id, team_name, group_label, is_active, created_at, updated_at,
	points, played, won, drawn, lost, goals_for, goals_against, goal_difference`

func scanParticipant(row interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return row.Scan(
		&p.ID, &p.ChampionshipID, &p.UserID, &p.TeamName, &p.GroupLabel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.Points, &p.Played, &p.Won, &p.Drawn, &p.Lost, &p.GoalsFor, &p.GoalsAgainst, &p.GoalDifference,
	)
}

func (r *postgresParticipantRepository) ListActive(ctx context.Context, exec SQLExecutor, championshipID int) ([]models.Participant, error) {
	query := `SELECT` + participantColumns + `
		FROM participants
		WHERE championship_id = $1 AND is_active = TRUE
		ORDER BY id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, championshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if err := scanParticipant(rows, &p); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) GetByUser(ctx context.Context, exec SQLExecutor, championshipID, userID int) (*models.Participant, error) {
	query := `SELECT` + participantColumns + `
		FROM participants
		WHERE championship_id = $1 AND user_id = $2 AND is_active = TRUE`

	p := &models.Participant{}
	if err := scanParticipant(r.getExecutor(exec).QueryRowContext(ctx, query, championshipID, userID), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) UpdateGroupLabels(ctx context.Context, exec SQLExecutor, labels map[int]string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET group_label = $1, updated_at = NOW() WHERE id = $2 AND is_active = TRUE`
	for participantID, label := range labels {
		result, err := executor.ExecContext(ctx, query, label, participantID)
		if err != nil {
			return fmt.Errorf("failed to set group %s for participant %d: %w", label, participantID, err)
		}
		if err := checkAffectedRows(result, ErrParticipantNotFound); err != nil {
			return fmt.Errorf("participant %d: %w", participantID, err)
		}
	}
	return nil
}

func (r *postgresParticipantRepository) UpdateStats(ctx context.Context, exec SQLExecutor, participantID int, s models.Stats) error {
	query := `
		UPDATE participants SET
			points = $1, played = $2, won = $3, drawn = $4, lost = $5,
			goals_for = $6, goals_against = $7, goal_difference = $8,
			updated_at = NOW()
		WHERE id = $9`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		s.Points, s.Played, s.Won, s.Drawn, s.Lost, s.GoalsFor, s.GoalsAgainst, s.GoalDifference,
		participantID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
