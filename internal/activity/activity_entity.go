package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	RequestTypeWFH            = "wfh"
	RequestTypePartialDay     = "partial"
	RequestTypeRegularization = "regularization"
)

// WorkFromHomeRequest is one row per requested date; a multi-date submission
// inserts several rows inside one transaction.
type WorkFromHomeRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_wfh_employee_date"`
	Date       time.Time `gorm:"type:date;not null;index:idx_wfh_employee_date"`
	// RequestType distinguishes full WFH days from hybrid arrangements.
	RequestType  string     `gorm:"type:varchar(30);not null;default:'wfh'"`
	StartTime    *string    `gorm:"type:varchar(8)"`
	EndTime      *string    `gorm:"type:varchar(8)"`
	Reason       string     `gorm:"type:text;not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'"`
	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovalDate *time.Time
	Notes        *string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (WorkFromHomeRequest) TableName() string {
	return "work_from_home_requests"
}

type PartialDayRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_partial_employee_date"`
	Date       time.Time `gorm:"type:date;not null;index:idx_partial_employee_date"`
	StartTime  string    `gorm:"type:varchar(8);not null"`
	EndTime    string    `gorm:"type:varchar(8);not null"`
	// Duration is hours away from work; the monthly cap is enforced in
	// minutes over the sum of these.
	Duration     decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Reason       string          `gorm:"type:text;not null"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending'"`
	ApprovedBy   *uuid.UUID      `gorm:"type:uuid"`
	ApprovalDate *time.Time
	Notes        *string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (PartialDayRequest) TableName() string {
	return "partial_day_requests"
}

type RegularizationRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_regularization_employee_date"`
	Date       time.Time `gorm:"type:date;not null;index:idx_regularization_employee_date"`
	ClockIn      string     `gorm:"type:varchar(8);not null"`
	ClockOut     string     `gorm:"type:varchar(8);not null"`
	Reason       string     `gorm:"type:text;not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'"`
	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovalDate *time.Time
	Notes        *string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (RegularizationRequest) TableName() string {
	return "regularization_requests"
}
