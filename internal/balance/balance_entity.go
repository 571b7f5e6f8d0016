package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance is the per-employee, per-calendar-year balance row. It is
// created lazily on first access and never deleted; year rollover simply
// produces a fresh row with reset flags.
type LeaveBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_year"`
	Year       int       `gorm:"not null;uniqueIndex:uq_leave_balances_employee_year"`

	// vacation, sick, personal and paid_leave all draw from this one quota.
	PaidLeaveQuota decimal.Decimal `gorm:"type:numeric(6,2);not null;default:15"`
	PaidLeaveUsed  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	// Informational only: emergency enforcement re-derives the count from
	// request history at validation time.
	EmergencyLeaveUsedCount int `gorm:"not null;default:0"`

	// One-shot flags, reset only by year rollover.
	BirthdayLeaveUsed    bool `gorm:"not null;default:false"`
	AnniversaryLeaveUsed bool `gorm:"not null;default:false"`

	// Reserved for future enforcement; maternity/paternity are currently
	// gated by fixed per-request caps, not these quotas.
	MaternityLeaveQuota decimal.Decimal `gorm:"type:numeric(6,2);not null;default:90"`
	MaternityLeaveUsed  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	PaternityLeaveQuota decimal.Decimal `gorm:"type:numeric(6,2);not null;default:15"`
	PaternityLeaveUsed  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// Remaining is the paid-leave balance still available this year.
func (b LeaveBalance) Remaining() decimal.Decimal {
	return b.PaidLeaveQuota.Sub(b.PaidLeaveUsed)
}
