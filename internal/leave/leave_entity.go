package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	TypeSick        = "sick"
	TypeVacation    = "vacation"
	TypePersonal    = "personal"
	TypePaidLeave   = "paid_leave"
	TypeMaternity   = "maternity"
	TypePaternity   = "paternity"
	TypeUnpaid      = "unpaid"
	TypeEmergency   = "emergency"
	TypeBirthday    = "birthday"
	TypeAnniversary = "anniversary"
	TypeCompOff     = "comp_off"
	TypeOverseas    = "overseas"
	// TypePartial is a legacy alias still accepted on the wire; partial-day
	// time tracking lives in the activity module.
	TypePartial = "partial"
)

// ConsumesPaidQuota reports whether a leave type draws on the shared annual
// paid quota.
func ConsumesPaidQuota(leaveType string) bool {
	switch leaveType {
	case TypeVacation, TypeSick, TypePersonal, TypePaidLeave:
		return true
	}
	return false
}

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`

	LeaveType string    `gorm:"type:varchar(30);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`

	// TotalDays is the inclusive whole-day span; Duration carries the true
	// consumed amount (0.5 for a half day) and is what the balance reserves.
	TotalDays int             `gorm:"not null;default:1"`
	Duration  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:1"`

	Reason string  `gorm:"type:text;not null"`
	Notes  *string `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovalDate    *time.Time
	RejectionReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Leave) TableName() string {
	return "leaves"
}
