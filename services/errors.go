package services

import (
	"errors"
	"fmt"

	"github.com/pedrowallacee/palpitarena-v2/db"
	"github.com/pedrowallacee/palpitarena-v2/repositories"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Состояние чемпионата не позволяет выполнить операцию
	ErrPreconditionFailed = errors.New("precondition failed")

	// Входные данные отклонены
	ErrValidationRejected = errors.New("validation rejected")

	// Внешний источник результатов недоступен; пересчёт продолжается без него
	ErrFeedUnavailable = errors.New("results feed unavailable")

	// Временный сбой хранилища; операцию можно повторить целиком
	ErrTransientStore = db.ErrTransient

	ErrForbiddenOperation      = errors.New("operation not allowed for the current user")
	ErrRecalculationInProgress = errors.New("round recalculation already in progress")
)

// handleRepositoryError сводит ошибки "не найдено" репозиториев к ErrNotFound.
func handleRepositoryError(err error, what string, id int) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrChampionshipNotFound),
		errors.Is(err, repositories.ErrRoundNotFound),
		errors.Is(err, repositories.ErrParticipantNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrDuelNotFound),
		errors.Is(err, repositories.ErrPredictionNotFound):
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	case errors.Is(err, repositories.ErrDuelConflict),
		errors.Is(err, repositories.ErrRoundNameConflict):
		return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}

func preconditionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPreconditionFailed, fmt.Sprintf(format, args...))
}
