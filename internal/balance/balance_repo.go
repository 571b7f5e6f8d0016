package balance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// Ensure returns the (employee, year) row, creating it with defaults on
	// first access. Safe under concurrent callers.
	Ensure(ctx context.Context, employeeID string, year int, defaultQuota decimal.Decimal) (*LeaveBalance, error)
	// AddPaidLeaveUsed applies a delta to the paid counter. Positive deltas
	// are guarded by the quota in the same statement; a false return means
	// the quota would have been exceeded and nothing was written. Negative
	// deltas (refunds) always apply.
	AddPaidLeaveUsed(ctx context.Context, employeeID string, year int, delta decimal.Decimal) (bool, error)
	MarkBirthdayUsed(ctx context.Context, employeeID string, year int) error
	MarkAnniversaryUsed(ctx context.Context, employeeID string, year int) error
	IncrementEmergencyCount(ctx context.Context, employeeID string, year int, delta int) error
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const selectColumns = `
	id::text, employee_id::text, year,
	paid_leave_quota, paid_leave_used,
	emergency_leave_used_count,
	birthday_leave_used, anniversary_leave_used,
	maternity_leave_quota, maternity_leave_used,
	paternity_leave_quota, paternity_leave_used,
	created_at, updated_at
`

func (r *repository) Ensure(ctx context.Context, employeeID string, year int, defaultQuota decimal.Decimal) (*LeaveBalance, error) {
	exec := r.execer()

	insert := `
        INSERT INTO leave_balances (id, employee_id, year, paid_leave_quota)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (employee_id, year) DO NOTHING
    `
	if _, err := exec.ExecContext(ctx, insert, uuid.New(), employeeID, year, defaultQuota); err != nil {
		return nil, err
	}

	query := `SELECT ` + selectColumns + ` FROM leave_balances WHERE employee_id = $1 AND year = $2`
	row := exec.QueryRowContext(ctx, query, employeeID, year)
	return scanBalance(row)
}

func (r *repository) AddPaidLeaveUsed(ctx context.Context, employeeID string, year int, delta decimal.Decimal) (bool, error) {
	exec := r.execer()

	// The quota guard lives in the WHERE clause so a stale read between
	// validation and mutation can never push used past quota.
	query := `
        UPDATE leave_balances
        SET paid_leave_used = paid_leave_used + $1, updated_at = now()
        WHERE employee_id = $2 AND year = $3
          AND ($1 <= 0 OR paid_leave_used + $1 <= paid_leave_quota)
    `
	res, err := exec.ExecContext(ctx, query, delta, employeeID, year)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) MarkBirthdayUsed(ctx context.Context, employeeID string, year int) error {
	return r.setFlag(ctx, "birthday_leave_used", employeeID, year)
}

func (r *repository) MarkAnniversaryUsed(ctx context.Context, employeeID string, year int) error {
	return r.setFlag(ctx, "anniversary_leave_used", employeeID, year)
}

func (r *repository) setFlag(ctx context.Context, column, employeeID string, year int) error {
	query := `UPDATE leave_balances SET ` + column + ` = TRUE, updated_at = now() WHERE employee_id = $1 AND year = $2`
	_, err := r.execer().ExecContext(ctx, query, employeeID, year)
	return err
}

func (r *repository) IncrementEmergencyCount(ctx context.Context, employeeID string, year int, delta int) error {
	query := `
        UPDATE leave_balances
        SET emergency_leave_used_count = GREATEST(emergency_leave_used_count + $1, 0), updated_at = now()
        WHERE employee_id = $2 AND year = $3
    `
	_, err := r.execer().ExecContext(ctx, query, delta, employeeID, year)
	return err
}

func scanBalance(row *sql.Row) (*LeaveBalance, error) {
	var (
		b          LeaveBalance
		id, empID  string
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := row.Scan(
		&id, &empID, &b.Year,
		&b.PaidLeaveQuota, &b.PaidLeaveUsed,
		&b.EmergencyLeaveUsedCount,
		&b.BirthdayLeaveUsed, &b.AnniversaryLeaveUsed,
		&b.MaternityLeaveQuota, &b.MaternityLeaveUsed,
		&b.PaternityLeaveQuota, &b.PaternityLeaveUsed,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	b.EmployeeID, err = uuid.Parse(empID)
	if err != nil {
		return nil, err
	}
	b.CreatedAt = createdAt
	b.UpdatedAt = updatedAt
	return &b, nil
}
