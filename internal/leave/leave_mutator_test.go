package leave_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"leavedesk/internal/balance"
	"leavedesk/internal/leave"
	"leavedesk/internal/policy"
)

type fakeBalanceRepository struct {
	ensureFn        func(ctx context.Context, employeeID string, year int, defaultQuota decimal.Decimal) (*balance.LeaveBalance, error)
	addPaidFn       func(ctx context.Context, employeeID string, year int, delta decimal.Decimal) (bool, error)
	markBirthdayFn  func(ctx context.Context, employeeID string, year int) error
	markAnniversary func(ctx context.Context, employeeID string, year int) error
	incrementEmerFn func(ctx context.Context, employeeID string, year int, delta int) error
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) Ensure(ctx context.Context, employeeID string, year int, defaultQuota decimal.Decimal) (*balance.LeaveBalance, error) {
	if f.ensureFn != nil {
		return f.ensureFn(ctx, employeeID, year, defaultQuota)
	}
	return &balance.LeaveBalance{PaidLeaveQuota: defaultQuota}, nil
}

func (f *fakeBalanceRepository) AddPaidLeaveUsed(ctx context.Context, employeeID string, year int, delta decimal.Decimal) (bool, error) {
	if f.addPaidFn != nil {
		return f.addPaidFn(ctx, employeeID, year, delta)
	}
	return true, nil
}

func (f *fakeBalanceRepository) MarkBirthdayUsed(ctx context.Context, employeeID string, year int) error {
	if f.markBirthdayFn != nil {
		return f.markBirthdayFn(ctx, employeeID, year)
	}
	return nil
}

func (f *fakeBalanceRepository) MarkAnniversaryUsed(ctx context.Context, employeeID string, year int) error {
	if f.markAnniversary != nil {
		return f.markAnniversary(ctx, employeeID, year)
	}
	return nil
}

func (f *fakeBalanceRepository) IncrementEmergencyCount(ctx context.Context, employeeID string, year int, delta int) error {
	if f.incrementEmerFn != nil {
		return f.incrementEmerFn(ctx, employeeID, year, delta)
	}
	return nil
}

func TestApplyBalanceEffect_PaidTypes(t *testing.T) {
	ctx := context.Background()
	cfg := policy.Default()

	t.Run("reservation forwards the positive delta", func(t *testing.T) {
		var gotDelta decimal.Decimal
		repo := &fakeBalanceRepository{
			addPaidFn: func(ctx context.Context, employeeID string, year int, delta decimal.Decimal) (bool, error) {
				gotDelta = delta
				return true, nil
			},
		}

		applied, err := leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypeVacation, decimal.NewFromInt(3), 2026)

		assert.NoError(t, err)
		assert.True(t, applied)
		assert.True(t, gotDelta.Equal(decimal.NewFromInt(3)))
	})

	t.Run("losing the quota guard reports not applied", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			addPaidFn: func(ctx context.Context, employeeID string, year int, delta decimal.Decimal) (bool, error) {
				return false, nil
			},
		}

		applied, err := leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypeSick, decimal.NewFromInt(1), 2026)

		assert.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("reserve then refund nets to zero", func(t *testing.T) {
		total := decimal.Zero
		repo := &fakeBalanceRepository{
			addPaidFn: func(ctx context.Context, employeeID string, year int, delta decimal.Decimal) (bool, error) {
				total = total.Add(delta)
				return true, nil
			},
		}

		amount := decimal.NewFromFloat(0.5)
		_, err := leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypePaidLeave, amount, 2026)
		assert.NoError(t, err)
		_, err = leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypePaidLeave, amount.Neg(), 2026)
		assert.NoError(t, err)

		assert.True(t, total.IsZero())
	})
}

func TestApplyBalanceEffect_StickyFlags(t *testing.T) {
	ctx := context.Background()
	cfg := policy.Default()

	t.Run("birthday reservation sets the flag", func(t *testing.T) {
		marked := false
		repo := &fakeBalanceRepository{
			markBirthdayFn: func(ctx context.Context, employeeID string, year int) error {
				marked = true
				return nil
			},
		}

		applied, err := leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypeBirthday, decimal.NewFromInt(1), 2026)

		assert.NoError(t, err)
		assert.True(t, applied)
		assert.True(t, marked)
	})

	t.Run("birthday refund leaves the flag alone", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			markBirthdayFn: func(ctx context.Context, employeeID string, year int) error {
				t.Fatal("flag must not be touched on refund")
				return nil
			},
		}

		applied, err := leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypeBirthday, decimal.NewFromInt(-1), 2026)

		assert.NoError(t, err)
		assert.True(t, applied)
	})

	t.Run("anniversary behaves the same way", func(t *testing.T) {
		marked := false
		repo := &fakeBalanceRepository{
			markAnniversary: func(ctx context.Context, employeeID string, year int) error {
				marked = true
				return nil
			},
		}

		_, err := leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypeAnniversary, decimal.NewFromInt(1), 2026)
		assert.NoError(t, err)
		assert.True(t, marked)

		marked = false
		_, err = leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypeAnniversary, decimal.NewFromInt(-1), 2026)
		assert.NoError(t, err)
		assert.False(t, marked)
	})
}

func TestApplyBalanceEffect_Emergency(t *testing.T) {
	ctx := context.Background()
	cfg := policy.Default()

	deltas := []int{}
	repo := &fakeBalanceRepository{
		incrementEmerFn: func(ctx context.Context, employeeID string, year int, delta int) error {
			deltas = append(deltas, delta)
			return nil
		},
	}

	_, err := leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypeEmergency, decimal.NewFromInt(1), 2026)
	assert.NoError(t, err)
	_, err = leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leave.TypeEmergency, decimal.NewFromInt(-1), 2026)
	assert.NoError(t, err)

	assert.Equal(t, []int{1, -1}, deltas)
}

func TestApplyBalanceEffect_UntrackedTypes(t *testing.T) {
	ctx := context.Background()
	cfg := policy.Default()

	repo := &fakeBalanceRepository{
		addPaidFn: func(ctx context.Context, employeeID string, year int, delta decimal.Decimal) (bool, error) {
			t.Fatal("paid counter must not move")
			return false, nil
		},
		markBirthdayFn: func(ctx context.Context, employeeID string, year int) error {
			t.Fatal("flags must not move")
			return nil
		},
		incrementEmerFn: func(ctx context.Context, employeeID string, year int, delta int) error {
			t.Fatal("emergency counter must not move")
			return nil
		},
	}

	for _, leaveType := range []string{leave.TypeUnpaid, leave.TypeCompOff, leave.TypeOverseas, leave.TypeMaternity, leave.TypePaternity} {
		applied, err := leave.ApplyBalanceEffect(ctx, repo, cfg, "emp", leaveType, decimal.NewFromInt(1), 2026)
		assert.NoError(t, err, leaveType)
		assert.True(t, applied, leaveType)
	}
}
