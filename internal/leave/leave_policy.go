package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"leavedesk/internal/balance"
	"leavedesk/internal/policy"
)

// Result is the validator's only output. Exactly one of the acceptance and
// rejection outcomes holds per call; warnings never block.
type Result struct {
	Valid   bool
	Error   string
	Warning string
}

func accept() Result                 { return Result{Valid: true} }
func acceptWith(warning string) Result { return Result{Valid: true, Warning: warning} }
func reject(format string, args ...any) Result {
	return Result{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// EmployeeProfile carries the only employee attributes policy rules read.
type EmployeeProfile struct {
	Gender   string
	JoinDate *time.Time
}

type ValidationInput struct {
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	// TotalDays is the inclusive whole-day span; Duration the true consumed
	// amount (0.5 for half days).
	TotalDays int
	Duration  decimal.Decimal
	// EmergencyUsedThisMonth counts existing non-rejected, non-cancelled
	// emergency requests starting in the calendar month of StartDate.
	EmergencyUsedThisMonth int64
}

// Validator decides accept/reject/warn for a leave request against a balance
// snapshot. It never mutates anything; the lifecycle service owns writes.
type Validator struct {
	cfg policy.Config
	now func() time.Time
}

func NewValidator(cfg policy.Config) *Validator {
	return &Validator{cfg: cfg, now: time.Now}
}

// NewValidatorAt pins the clock; used by tests to probe notice boundaries.
func NewValidatorAt(cfg policy.Config, now func() time.Time) *Validator {
	return &Validator{cfg: cfg, now: now}
}

func (v *Validator) today() time.Time {
	return truncateToDay(v.now())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TotalDaysInclusive computes the whole-day span counting both endpoints.
func TotalDaysInclusive(start, end time.Time) int {
	return int(truncateToDay(end).Sub(truncateToDay(start)).Hours()/24) + 1
}

// Validate runs the rule block matching the request's leave type. Types with
// no block (unpaid, partial) are implicitly valid and consume no balance.
func (v *Validator) Validate(profile EmployeeProfile, bal *balance.LeaveBalance, in ValidationInput) Result {
	switch in.LeaveType {
	case TypeCompOff:
		return acceptWith("comp-off balance is not tracked; make sure the earned day is documented on the request")

	case TypeOverseas:
		return v.validateOverseas(profile, in)

	case TypeVacation, TypeSick, TypePersonal, TypePaidLeave:
		return v.validatePaid(bal, in)

	case TypeEmergency:
		return v.validateEmergency(in)

	case TypeBirthday:
		return v.validateBirthday(bal, in)

	case TypeAnniversary:
		return v.validateAnniversary(bal, in)

	case TypeMaternity:
		return v.validateMaternity(profile, in)

	case TypePaternity:
		return v.validatePaternity(in)
	}

	return accept()
}

func (v *Validator) validateOverseas(profile EmployeeProfile, in ValidationInput) Result {
	if profile.JoinDate == nil {
		return reject("overseas leave requires a recorded join date")
	}
	serviceYears := truncateToDay(in.StartDate).Sub(truncateToDay(*profile.JoinDate)).Hours() / 24 / 365.25
	if serviceYears < v.cfg.OverseasMinServiceYears {
		return reject("overseas leave requires at least %.0f years of service; current service is %.1f years",
			v.cfg.OverseasMinServiceYears, serviceYears)
	}
	return accept()
}

func (v *Validator) validatePaid(bal *balance.LeaveBalance, in ValidationInput) Result {
	required := v.cfg.RequiredNoticeDays(in.TotalDays)
	notice := int(truncateToDay(in.StartDate).Sub(v.today()).Hours() / 24)
	if notice < required {
		return reject("a %d-day request needs at least %d days notice; only %d given",
			in.TotalDays, required, notice)
	}

	if bal.PaidLeaveUsed.Add(in.Duration).GreaterThan(bal.PaidLeaveQuota) {
		return reject("insufficient paid leave balance: requested %s day(s), remaining %s",
			in.Duration.String(), bal.Remaining().String())
	}
	return accept()
}

func (v *Validator) validateEmergency(in ValidationInput) Result {
	if in.EmergencyUsedThisMonth >= int64(v.cfg.EmergencyMonthlyLimit) {
		return reject("emergency leave limit of %d per month already reached; file this request as unpaid leave instead",
			v.cfg.EmergencyMonthlyLimit)
	}
	return accept()
}

func (v *Validator) validateBirthday(bal *balance.LeaveBalance, in ValidationInput) Result {
	if bal.BirthdayLeaveUsed {
		return reject("birthday leave has already been used this year")
	}
	if in.TotalDays > v.cfg.BirthdayMaxDays {
		return reject("birthday leave is limited to %d day(s)", v.cfg.BirthdayMaxDays)
	}
	if wd := in.StartDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return acceptWith("the requested birthday leave falls on a weekend; the yearly quota will still be consumed")
	}
	return accept()
}

func (v *Validator) validateAnniversary(bal *balance.LeaveBalance, in ValidationInput) Result {
	if bal.AnniversaryLeaveUsed {
		return reject("anniversary leave has already been used this year")
	}
	if in.TotalDays > v.cfg.AnniversaryMaxDays {
		return reject("anniversary leave is limited to %d day(s)", v.cfg.AnniversaryMaxDays)
	}
	return accept()
}

func (v *Validator) validateMaternity(profile EmployeeProfile, in ValidationInput) Result {
	if !strings.EqualFold(profile.Gender, "female") {
		return reject("maternity leave is only available to female employees")
	}
	if profile.JoinDate == nil {
		return reject("maternity leave requires a recorded join date")
	}
	// Continuous service is measured up to today, not the request start.
	serviceDays := int(v.today().Sub(truncateToDay(*profile.JoinDate)).Hours() / 24)
	if serviceDays < v.cfg.MaternityMinServiceDays {
		return reject("maternity leave requires %d days of continuous service; current service is %d days",
			v.cfg.MaternityMinServiceDays, serviceDays)
	}
	if in.TotalDays > v.cfg.MaternityMaxDays {
		return reject("maternity leave is limited to %d days", v.cfg.MaternityMaxDays)
	}
	return accept()
}

func (v *Validator) validatePaternity(in ValidationInput) Result {
	if in.TotalDays > v.cfg.PaternityMaxDays {
		return reject("paternity leave is limited to %d days", v.cfg.PaternityMaxDays)
	}
	return accept()
}
