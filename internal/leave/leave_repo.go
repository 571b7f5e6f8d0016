package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Insert(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindAll(ctx context.Context) ([]Leave, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	UpdateStatus(ctx context.Context, l *Leave) error
	// CountEmergencyInMonth counts emergency requests starting inside
	// [monthStart, monthEnd) that are neither rejected nor cancelled.
	CountEmergencyInMonth(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) (int64, error)
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

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const leaveColumns = `
	id::text, employee_id::text, leave_type, start_date, end_date,
	total_days, duration, reason, notes, status,
	created_by::text, approved_by::text, approval_date, rejection_reason,
	created_at, updated_at
`

func (r *repository) Insert(ctx context.Context, l *Leave) error {
	query := `
        INSERT INTO leaves (
            id, employee_id, leave_type, start_date, end_date,
            total_days, duration, reason, notes, status, created_by
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := r.querier().ExecContext(
		ctx, query,
		l.ID, l.EmployeeID, l.LeaveType, l.StartDate, l.EndDate,
		l.TotalDays, l.Duration, l.Reason, l.Notes, l.Status, l.CreatedBy,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves WHERE id = $1 AND deleted_at IS NULL`
	row := r.querier().QueryRowContext(ctx, query, id)
	return scanLeave(row)
}

func (r *repository) FindAll(ctx context.Context) ([]Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves WHERE deleted_at IS NULL ORDER BY start_date DESC`
	rows, err := r.querier().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeaves(rows)
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves WHERE employee_id = $1 AND deleted_at IS NULL ORDER BY start_date DESC`
	rows, err := r.querier().QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeaves(rows)
}

func (r *repository) UpdateStatus(ctx context.Context, l *Leave) error {
	query := `
        UPDATE leaves
        SET status = $1, approved_by = $2, approval_date = $3, rejection_reason = $4, updated_at = now()
        WHERE id = $5
    `
	_, err := r.querier().ExecContext(
		ctx, query,
		l.Status, l.ApprovedBy, l.ApprovalDate, l.RejectionReason, l.ID,
	)
	return err
}

func (r *repository) CountEmergencyInMonth(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) (int64, error) {
	query := `
        SELECT COUNT(*)
        FROM leaves
        WHERE employee_id = $1
          AND leave_type = 'emergency'
          AND status NOT IN ('rejected', 'cancelled')
          AND start_date >= $2 AND start_date < $3
          AND deleted_at IS NULL
    `
	var count int64
	err := r.querier().QueryRowContext(ctx, query, employeeID, monthStart, monthEnd).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeave(row rowScanner) (*Leave, error) {
	var (
		l               Leave
		id, employeeID  string
		createdBy       string
		notes           sql.NullString
		approvedBy      sql.NullString
		approvalDate    sql.NullTime
		rejectionReason sql.NullString
	)
	err := row.Scan(
		&id, &employeeID, &l.LeaveType, &l.StartDate, &l.EndDate,
		&l.TotalDays, &l.Duration, &l.Reason, &notes, &l.Status,
		&createdBy, &approvedBy, &approvalDate, &rejectionReason,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if l.EmployeeID, err = uuid.Parse(employeeID); err != nil {
		return nil, err
	}
	if l.CreatedBy, err = uuid.Parse(createdBy); err != nil {
		return nil, err
	}
	if notes.Valid {
		l.Notes = &notes.String
	}
	if approvedBy.Valid {
		approver, err := uuid.Parse(approvedBy.String)
		if err != nil {
			return nil, err
		}
		l.ApprovedBy = &approver
	}
	if approvalDate.Valid {
		l.ApprovalDate = &approvalDate.Time
	}
	if rejectionReason.Valid {
		l.RejectionReason = &rejectionReason.String
	}
	return &l, nil
}

func collectLeaves(rows *sql.Rows) ([]Leave, error) {
	var leaves []Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, *l)
	}
	return leaves, rows.Err()
}
