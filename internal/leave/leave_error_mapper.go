package leave

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	leaveerrors "leavedesk/internal/leave/errors"
)

// mapRepositoryError translates driver-level failures into user-facing
// apperrors; anything unrecognized propagates and surfaces as a 500.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23503: the leaves.employee_id foreign key points at a missing row.
		if pgErr.Code == "23503" {
			return leaveerrors.ErrEmployeeNotFound
		}
	}

	return err
}
