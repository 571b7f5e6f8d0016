package activity

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=activity_repo.go -destination=mock/activity_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	InsertWFH(ctx context.Context, r *WorkFromHomeRequest) error
	// CountWFHInQuarter counts requested dates inside [quarterStart,
	// quarterEnd) that were not rejected; pending and approved both consume
	// the quarterly cap.
	CountWFHInQuarter(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time) (int64, error)
	FindWFHByID(ctx context.Context, id string) (*WorkFromHomeRequest, error)
	FindWFHByEmployee(ctx context.Context, employeeID string) ([]WorkFromHomeRequest, error)
	UpdateWFHStatus(ctx context.Context, r *WorkFromHomeRequest) error

	InsertPartialDay(ctx context.Context, r *PartialDayRequest) error
	// SumPartialDayHoursInMonth sums non-rejected durations (hours) over
	// [monthStart, monthEnd).
	SumPartialDayHoursInMonth(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) (decimal.Decimal, error)
	FindPartialDayByID(ctx context.Context, id string) (*PartialDayRequest, error)
	FindPartialDayByEmployee(ctx context.Context, employeeID string) ([]PartialDayRequest, error)
	UpdatePartialDayStatus(ctx context.Context, r *PartialDayRequest) error

	InsertRegularization(ctx context.Context, r *RegularizationRequest) error
	FindRegularizationByID(ctx context.Context, id string) (*RegularizationRequest, error)
	FindRegularizationByEmployee(ctx context.Context, employeeID string) ([]RegularizationRequest, error)
	UpdateRegularizationStatus(ctx context.Context, r *RegularizationRequest) error
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

type rowScanner interface {
	Scan(dest ...any) error
}

// --- work from home ---

const wfhColumns = `
	id::text, employee_id::text, date, request_type, start_time, end_time,
	reason, status, approved_by::text, approval_date, notes, created_at, updated_at
`

func (r *repository) InsertWFH(ctx context.Context, req *WorkFromHomeRequest) error {
	query := `
        INSERT INTO work_from_home_requests (
            id, employee_id, date, request_type, start_time, end_time, reason, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.querier().ExecContext(
		ctx, query,
		req.ID, req.EmployeeID, req.Date, req.RequestType,
		req.StartTime, req.EndTime, req.Reason, req.Status,
	)
	return err
}

func (r *repository) CountWFHInQuarter(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time) (int64, error) {
	query := `
        SELECT COUNT(*)
        FROM work_from_home_requests
        WHERE employee_id = $1
          AND status <> 'rejected'
          AND date >= $2 AND date < $3
    `
	var count int64
	err := r.querier().QueryRowContext(ctx, query, employeeID, quarterStart, quarterEnd).Scan(&count)
	return count, err
}

func (r *repository) FindWFHByID(ctx context.Context, id string) (*WorkFromHomeRequest, error) {
	query := `SELECT ` + wfhColumns + ` FROM work_from_home_requests WHERE id = $1`
	return scanWFH(r.querier().QueryRowContext(ctx, query, id))
}

func (r *repository) FindWFHByEmployee(ctx context.Context, employeeID string) ([]WorkFromHomeRequest, error) {
	query := `SELECT ` + wfhColumns + ` FROM work_from_home_requests WHERE employee_id = $1 ORDER BY date DESC`
	rows, err := r.querier().QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorkFromHomeRequest
	for rows.Next() {
		req, err := scanWFH(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func (r *repository) UpdateWFHStatus(ctx context.Context, req *WorkFromHomeRequest) error {
	query := `
        UPDATE work_from_home_requests
        SET status = $1, approved_by = $2, approval_date = $3, notes = $4, updated_at = now()
        WHERE id = $5
    `
	_, err := r.querier().ExecContext(ctx, query, req.Status, req.ApprovedBy, req.ApprovalDate, req.Notes, req.ID)
	return err
}

func scanWFH(row rowScanner) (*WorkFromHomeRequest, error) {
	var (
		req          WorkFromHomeRequest
		id, empID    string
		startTime    sql.NullString
		endTime      sql.NullString
		approvedBy   sql.NullString
		approvalDate sql.NullTime
		notes        sql.NullString
	)
	err := row.Scan(
		&id, &empID, &req.Date, &req.RequestType, &startTime, &endTime,
		&req.Reason, &req.Status, &approvedBy, &approvalDate, &notes,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if req.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if req.EmployeeID, err = uuid.Parse(empID); err != nil {
		return nil, err
	}
	if startTime.Valid {
		req.StartTime = &startTime.String
	}
	if endTime.Valid {
		req.EndTime = &endTime.String
	}
	if err := applyApproval(approvedBy, approvalDate, &req.ApprovedBy, &req.ApprovalDate); err != nil {
		return nil, err
	}
	if notes.Valid {
		req.Notes = &notes.String
	}
	return &req, nil
}

// --- partial day ---

const partialDayColumns = `
	id::text, employee_id::text, date, start_time, end_time, duration,
	reason, status, approved_by::text, approval_date, notes, created_at, updated_at
`

func (r *repository) InsertPartialDay(ctx context.Context, req *PartialDayRequest) error {
	query := `
        INSERT INTO partial_day_requests (
            id, employee_id, date, start_time, end_time, duration, reason, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.querier().ExecContext(
		ctx, query,
		req.ID, req.EmployeeID, req.Date, req.StartTime, req.EndTime,
		req.Duration, req.Reason, req.Status,
	)
	return err
}

func (r *repository) SumPartialDayHoursInMonth(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) (decimal.Decimal, error) {
	query := `
        SELECT COALESCE(SUM(duration), 0)
        FROM partial_day_requests
        WHERE employee_id = $1
          AND status <> 'rejected'
          AND date >= $2 AND date < $3
    `
	var sum decimal.Decimal
	err := r.querier().QueryRowContext(ctx, query, employeeID, monthStart, monthEnd).Scan(&sum)
	return sum, err
}

func (r *repository) FindPartialDayByID(ctx context.Context, id string) (*PartialDayRequest, error) {
	query := `SELECT ` + partialDayColumns + ` FROM partial_day_requests WHERE id = $1`
	return scanPartialDay(r.querier().QueryRowContext(ctx, query, id))
}

func (r *repository) FindPartialDayByEmployee(ctx context.Context, employeeID string) ([]PartialDayRequest, error) {
	query := `SELECT ` + partialDayColumns + ` FROM partial_day_requests WHERE employee_id = $1 ORDER BY date DESC`
	rows, err := r.querier().QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PartialDayRequest
	for rows.Next() {
		req, err := scanPartialDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func (r *repository) UpdatePartialDayStatus(ctx context.Context, req *PartialDayRequest) error {
	query := `
        UPDATE partial_day_requests
        SET status = $1, approved_by = $2, approval_date = $3, notes = $4, updated_at = now()
        WHERE id = $5
    `
	_, err := r.querier().ExecContext(ctx, query, req.Status, req.ApprovedBy, req.ApprovalDate, req.Notes, req.ID)
	return err
}

func scanPartialDay(row rowScanner) (*PartialDayRequest, error) {
	var (
		req          PartialDayRequest
		id, empID    string
		approvedBy   sql.NullString
		approvalDate sql.NullTime
		notes        sql.NullString
	)
	err := row.Scan(
		&id, &empID, &req.Date, &req.StartTime, &req.EndTime, &req.Duration,
		&req.Reason, &req.Status, &approvedBy, &approvalDate, &notes,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if req.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if req.EmployeeID, err = uuid.Parse(empID); err != nil {
		return nil, err
	}
	if err := applyApproval(approvedBy, approvalDate, &req.ApprovedBy, &req.ApprovalDate); err != nil {
		return nil, err
	}
	if notes.Valid {
		req.Notes = &notes.String
	}
	return &req, nil
}

// --- regularization ---

const regularizationColumns = `
	id::text, employee_id::text, date, clock_in, clock_out,
	reason, status, approved_by::text, approval_date, notes, created_at, updated_at
`

func (r *repository) InsertRegularization(ctx context.Context, req *RegularizationRequest) error {
	query := `
        INSERT INTO regularization_requests (
            id, employee_id, date, clock_in, clock_out, reason, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.querier().ExecContext(
		ctx, query,
		req.ID, req.EmployeeID, req.Date, req.ClockIn, req.ClockOut, req.Reason, req.Status,
	)
	return err
}

func (r *repository) FindRegularizationByID(ctx context.Context, id string) (*RegularizationRequest, error) {
	query := `SELECT ` + regularizationColumns + ` FROM regularization_requests WHERE id = $1`
	return scanRegularization(r.querier().QueryRowContext(ctx, query, id))
}

func (r *repository) FindRegularizationByEmployee(ctx context.Context, employeeID string) ([]RegularizationRequest, error) {
	query := `SELECT ` + regularizationColumns + ` FROM regularization_requests WHERE employee_id = $1 ORDER BY date DESC`
	rows, err := r.querier().QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegularizationRequest
	for rows.Next() {
		req, err := scanRegularization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func (r *repository) UpdateRegularizationStatus(ctx context.Context, req *RegularizationRequest) error {
	query := `
        UPDATE regularization_requests
        SET status = $1, approved_by = $2, approval_date = $3, notes = $4, updated_at = now()
        WHERE id = $5
    `
	_, err := r.querier().ExecContext(ctx, query, req.Status, req.ApprovedBy, req.ApprovalDate, req.Notes, req.ID)
	return err
}

func scanRegularization(row rowScanner) (*RegularizationRequest, error) {
	var (
		req          RegularizationRequest
		id, empID    string
		approvedBy   sql.NullString
		approvalDate sql.NullTime
		notes        sql.NullString
	)
	err := row.Scan(
		&id, &empID, &req.Date, &req.ClockIn, &req.ClockOut,
		&req.Reason, &req.Status, &approvedBy, &approvalDate, &notes,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if req.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if req.EmployeeID, err = uuid.Parse(empID); err != nil {
		return nil, err
	}
	if err := applyApproval(approvedBy, approvalDate, &req.ApprovedBy, &req.ApprovalDate); err != nil {
		return nil, err
	}
	if notes.Valid {
		req.Notes = &notes.String
	}
	return &req, nil
}

func applyApproval(approvedBy sql.NullString, approvalDate sql.NullTime, byDst **uuid.UUID, dateDst **time.Time) error {
	if approvedBy.Valid {
		approver, err := uuid.Parse(approvedBy.String)
		if err != nil {
			return err
		}
		*byDst = &approver
	}
	if approvalDate.Valid {
		t := approvalDate.Time
		*dateDst = &t
	}
	return nil
}
