package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pedrowallacee/palpitarena-v2/db"
)

// SQLExecutor is either the pool or an open transaction. Passing nil makes a
// repository fall back to the pool.
type SQLExecutor = db.Executor

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// mapConstraintError переводит ошибки ограничений PostgreSQL в ошибки репозитория.
func mapConstraintError(err error, conflict, invalidRef error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		if conflict != nil {
			return fmt.Errorf("%w: %s", conflict, pqErr.Constraint)
		}
	case "23503": // foreign_key_violation
		if invalidRef != nil {
			return fmt.Errorf("%w: %s", invalidRef, pqErr.Constraint)
		}
	}
	return err
}
