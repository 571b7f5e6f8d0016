package leave

import (
	"context"

	"github.com/shopspring/decimal"

	"leavedesk/internal/balance"
	"leavedesk/internal/policy"
)

// ApplyBalanceEffect is the single place where an accepted request touches the
// balance row. amount is positive when reserving at creation time and negative
// when refunding on reject/cancel. The (employee, year) row is ensured first,
// so a year rollover between validation and mutation still lands on a row.
//
// The returned bool is false only when a positive paid-quota delta lost the
// race against a concurrent reservation and was not applied.
func ApplyBalanceEffect(
	ctx context.Context,
	repo balance.Repository,
	cfg policy.Config,
	employeeID, leaveType string,
	amount decimal.Decimal,
	year int,
) (bool, error) {
	if _, err := repo.Ensure(ctx, employeeID, year, cfg.PaidLeaveAnnualQuota); err != nil {
		return false, err
	}

	switch {
	case ConsumesPaidQuota(leaveType):
		return repo.AddPaidLeaveUsed(ctx, employeeID, year, amount)

	case leaveType == TypeBirthday:
		// One-shot flags are sticky for the year: a later reject/cancel does
		// not hand the day back.
		if amount.IsPositive() {
			return true, repo.MarkBirthdayUsed(ctx, employeeID, year)
		}
		return true, nil

	case leaveType == TypeAnniversary:
		if amount.IsPositive() {
			return true, repo.MarkAnniversaryUsed(ctx, employeeID, year)
		}
		return true, nil

	case leaveType == TypeEmergency:
		// Informational counter only; enforcement re-derives the monthly
		// count from request history at validation time.
		delta := 1
		if amount.IsNegative() {
			delta = -1
		}
		return true, repo.IncrementEmergencyCount(ctx, employeeID, year, delta)
	}

	// unpaid, comp_off, overseas, maternity, paternity: no persistent counter.
	return true, nil
}
