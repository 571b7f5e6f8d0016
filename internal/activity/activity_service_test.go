package activity_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"leavedesk/internal/activity"
	activityerrors "leavedesk/internal/activity/errors"
	"leavedesk/internal/domain"
	"leavedesk/internal/policy"
)

type fakeActivityRepository struct {
	insertWFHFn        func(ctx context.Context, r *activity.WorkFromHomeRequest) error
	countWFHFn         func(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time) (int64, error)
	findWFHByIDFn      func(ctx context.Context, id string) (*activity.WorkFromHomeRequest, error)
	findWFHByEmpFn     func(ctx context.Context, employeeID string) ([]activity.WorkFromHomeRequest, error)
	updateWFHFn        func(ctx context.Context, r *activity.WorkFromHomeRequest) error
	insertPartialFn    func(ctx context.Context, r *activity.PartialDayRequest) error
	sumPartialFn       func(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) (decimal.Decimal, error)
	findPartialByIDFn  func(ctx context.Context, id string) (*activity.PartialDayRequest, error)
	findPartialByEmpFn func(ctx context.Context, employeeID string) ([]activity.PartialDayRequest, error)
	updatePartialFn    func(ctx context.Context, r *activity.PartialDayRequest) error
	insertRegFn        func(ctx context.Context, r *activity.RegularizationRequest) error
	findRegByIDFn      func(ctx context.Context, id string) (*activity.RegularizationRequest, error)
	findRegByEmpFn     func(ctx context.Context, employeeID string) ([]activity.RegularizationRequest, error)
	updateRegFn        func(ctx context.Context, r *activity.RegularizationRequest) error
}

func (f *fakeActivityRepository) WithTx(tx *sql.Tx) activity.Repository { return f }

func (f *fakeActivityRepository) InsertWFH(ctx context.Context, r *activity.WorkFromHomeRequest) error {
	if f.insertWFHFn != nil {
		return f.insertWFHFn(ctx, r)
	}
	return nil
}

func (f *fakeActivityRepository) CountWFHInQuarter(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time) (int64, error) {
	if f.countWFHFn != nil {
		return f.countWFHFn(ctx, employeeID, quarterStart, quarterEnd)
	}
	return 0, nil
}

func (f *fakeActivityRepository) FindWFHByID(ctx context.Context, id string) (*activity.WorkFromHomeRequest, error) {
	if f.findWFHByIDFn != nil {
		return f.findWFHByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeActivityRepository) FindWFHByEmployee(ctx context.Context, employeeID string) ([]activity.WorkFromHomeRequest, error) {
	if f.findWFHByEmpFn != nil {
		return f.findWFHByEmpFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeActivityRepository) UpdateWFHStatus(ctx context.Context, r *activity.WorkFromHomeRequest) error {
	if f.updateWFHFn != nil {
		return f.updateWFHFn(ctx, r)
	}
	return nil
}

func (f *fakeActivityRepository) InsertPartialDay(ctx context.Context, r *activity.PartialDayRequest) error {
	if f.insertPartialFn != nil {
		return f.insertPartialFn(ctx, r)
	}
	return nil
}

func (f *fakeActivityRepository) SumPartialDayHoursInMonth(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) (decimal.Decimal, error) {
	if f.sumPartialFn != nil {
		return f.sumPartialFn(ctx, employeeID, monthStart, monthEnd)
	}
	return decimal.Zero, nil
}

func (f *fakeActivityRepository) FindPartialDayByID(ctx context.Context, id string) (*activity.PartialDayRequest, error) {
	if f.findPartialByIDFn != nil {
		return f.findPartialByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeActivityRepository) FindPartialDayByEmployee(ctx context.Context, employeeID string) ([]activity.PartialDayRequest, error) {
	if f.findPartialByEmpFn != nil {
		return f.findPartialByEmpFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeActivityRepository) UpdatePartialDayStatus(ctx context.Context, r *activity.PartialDayRequest) error {
	if f.updatePartialFn != nil {
		return f.updatePartialFn(ctx, r)
	}
	return nil
}

func (f *fakeActivityRepository) InsertRegularization(ctx context.Context, r *activity.RegularizationRequest) error {
	if f.insertRegFn != nil {
		return f.insertRegFn(ctx, r)
	}
	return nil
}

func (f *fakeActivityRepository) FindRegularizationByID(ctx context.Context, id string) (*activity.RegularizationRequest, error) {
	if f.findRegByIDFn != nil {
		return f.findRegByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeActivityRepository) FindRegularizationByEmployee(ctx context.Context, employeeID string) ([]activity.RegularizationRequest, error) {
	if f.findRegByEmpFn != nil {
		return f.findRegByEmpFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeActivityRepository) UpdateRegularizationStatus(ctx context.Context, r *activity.RegularizationRequest) error {
	if f.updateRegFn != nil {
		return f.updateRegFn(ctx, r)
	}
	return nil
}

type fakeAccessControl struct {
	enforceFn func(req domain.EnforceRequest) (bool, error)
}

func (f *fakeAccessControl) Enforce(req domain.EnforceRequest) (bool, error) {
	if f.enforceFn != nil {
		return f.enforceFn(req)
	}
	return false, nil
}

type activityServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service activity.Service
	repo    *fakeActivityRepository
	access  *fakeAccessControl
}

func setupActivityServiceTest(t *testing.T) *activityServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeActivityRepository{}
	access := &fakeAccessControl{}
	svc := activity.NewService(db, repo, nil, access, policy.Default())

	return &activityServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		access:  access,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func futureDate(daysAhead int) string {
	return time.Now().UTC().AddDate(0, 0, daysAhead).Format("2006-01-02")
}

func TestActivityService_SubmitWorkFromHome(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("batch of two future dates commits as a whole", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		var inserted []string
		deps.repo.insertWFHFn = func(ctx context.Context, r *activity.WorkFromHomeRequest) error {
			assert.Equal(t, actorID, r.EmployeeID.String())
			assert.Equal(t, activity.StatusPending, r.Status)
			inserted = append(inserted, r.Date.Format("2006-01-02"))
			return nil
		}

		resp, err := deps.service.SubmitWorkFromHome(ctx, actorID, activity.WorkFromHomeSubmission{
			Dates:  []string{futureDate(2), futureDate(3)},
			Reason: "focus days",
		})

		assert.NoError(t, err)
		assert.Len(t, resp.IDs, 2)
		assert.Equal(t, []string{futureDate(2), futureDate(3)}, inserted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("quarterly cap counts the batch itself", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.countWFHFn = func(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time) (int64, error) {
			assert.Equal(t, actorID, employeeID)
			assert.Equal(t, quarterStart.AddDate(0, 3, 0), quarterEnd)
			return 1, nil
		}

		// One existing hit plus a two-date batch: the second date trips the
		// cap and the whole submission rolls back.
		_, err := deps.service.SubmitWorkFromHome(ctx, actorID, activity.WorkFromHomeSubmission{
			Dates:  []string{futureDate(2), futureDate(3)},
			Reason: "focus days",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "quarter")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("cap already reached rejects the first date", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.countWFHFn = func(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time) (int64, error) {
			return 2, nil
		}
		deps.repo.insertWFHFn = func(ctx context.Context, r *activity.WorkFromHomeRequest) error {
			t.Fatal("nothing may be inserted past the cap")
			return nil
		}

		_, err := deps.service.SubmitWorkFromHome(ctx, actorID, activity.WorkFromHomeSubmission{
			Dates:  []string{futureDate(2)},
			Reason: "focus day",
		})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("date beyond the past window is rejected before any write", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		tooOld := time.Now().UTC().AddDate(0, -1, -3).Format("2006-01-02")
		_, err := deps.service.SubmitWorkFromHome(ctx, actorID, activity.WorkFromHomeSubmission{
			Dates:  []string{tooOld},
			Reason: "backfill",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "past")
	})

	t.Run("recent past date inside the window is accepted", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		recent := time.Now().UTC().AddDate(0, 0, -5).Format("2006-01-02")
		resp, err := deps.service.SubmitWorkFromHome(ctx, actorID, activity.WorkFromHomeSubmission{
			Dates:  []string{recent},
			Reason: "forgot to file",
		})

		assert.NoError(t, err)
		assert.Len(t, resp.IDs, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.SubmitWorkFromHome(ctx, actorID, activity.WorkFromHomeSubmission{
			Dates:  []string{"15-06-2026"},
			Reason: "bad format",
		})

		assert.ErrorIs(t, err, activityerrors.ErrInvalidDateFormat)
	})
}

func TestActivityService_SubmitPartialDay(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("cumulative minutes reaching exactly the cap is accepted", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		// 450 existing minutes as 7.5 hours; 50 more lands exactly on 500.
		deps.repo.sumPartialFn = func(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) (decimal.Decimal, error) {
			return decimal.NewFromFloat(7.5), nil
		}

		var stored decimal.Decimal
		deps.repo.insertPartialFn = func(ctx context.Context, r *activity.PartialDayRequest) error {
			stored = r.Duration
			return nil
		}

		resp, err := deps.service.SubmitPartialDay(ctx, actorID, activity.PartialDaySubmission{
			Date:      "2026-06-10",
			StartTime: "14:00",
			EndTime:   "14:50",
			Reason:    "school pickup",
		})

		assert.NoError(t, err)
		assert.Len(t, resp.IDs, 1)
		assert.True(t, stored.Equal(decimal.NewFromInt(50).Div(decimal.NewFromInt(60))))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("one minute over the cap is rejected", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.sumPartialFn = func(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) (decimal.Decimal, error) {
			return decimal.NewFromFloat(7.5), nil
		}
		deps.repo.insertPartialFn = func(ctx context.Context, r *activity.PartialDayRequest) error {
			t.Fatal("over-cap request must not be stored")
			return nil
		}

		_, err := deps.service.SubmitPartialDay(ctx, actorID, activity.PartialDaySubmission{
			Date:      "2026-06-10",
			StartTime: "14:00",
			EndTime:   "14:51",
			Reason:    "school pickup",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "minutes")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("inverted time range is rejected", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.SubmitPartialDay(ctx, actorID, activity.PartialDaySubmission{
			Date:      "2026-06-10",
			StartTime: "15:00",
			EndTime:   "14:00",
			Reason:    "typo",
		})

		assert.ErrorIs(t, err, activityerrors.ErrInvalidTimeRange)
	})
}

func TestActivityService_SubmitRegularization(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("well-formed clock pair is stored pending", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		var stored *activity.RegularizationRequest
		deps.repo.insertRegFn = func(ctx context.Context, r *activity.RegularizationRequest) error {
			stored = r
			return nil
		}

		resp, err := deps.service.SubmitRegularization(ctx, actorID, activity.RegularizationSubmission{
			Date:     "2026-06-01",
			ClockIn:  "09:12",
			ClockOut: "18:03",
			Reason:   "badge reader was down",
		})

		assert.NoError(t, err)
		assert.Len(t, resp.IDs, 1)
		assert.Equal(t, activity.StatusPending, stored.Status)
		assert.Equal(t, actorID, stored.EmployeeID.String())
	})

	t.Run("clock_in after clock_out is rejected", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.SubmitRegularization(ctx, actorID, activity.RegularizationSubmission{
			Date:     "2026-06-01",
			ClockIn:  "18:00",
			ClockOut: "09:00",
			Reason:   "swapped fields",
		})

		assert.ErrorIs(t, err, activityerrors.ErrInvalidClockRange)
	})

	t.Run("filing for another employee needs activity:decide", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		deps.access.enforceFn = func(req domain.EnforceRequest) (bool, error) {
			assert.Equal(t, "activity", req.Resource)
			assert.Equal(t, "decide", req.Action)
			return false, nil
		}

		_, err := deps.service.SubmitRegularization(ctx, actorID, activity.RegularizationSubmission{
			EmployeeID: uuid.New().String(),
			Date:       "2026-06-01",
			ClockIn:    "09:00",
			ClockOut:   "17:00",
			Reason:     "on behalf",
		})

		assert.ErrorIs(t, err, activityerrors.ErrSubmitForOthersForbidden)
	})
}

func TestActivityService_Decide(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()

	pendingWFH := func() *activity.WorkFromHomeRequest {
		return &activity.WorkFromHomeRequest{
			ID:          uuid.New(),
			EmployeeID:  uuid.New(),
			Date:        time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
			RequestType: activity.RequestTypeWFH,
			Reason:      "focus day",
			Status:      activity.StatusPending,
		}
	}

	t.Run("approve stamps approver and date", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		row := pendingWFH()
		deps.access.enforceFn = func(req domain.EnforceRequest) (bool, error) { return true, nil }
		deps.repo.findWFHByIDFn = func(ctx context.Context, id string) (*activity.WorkFromHomeRequest, error) {
			assert.Equal(t, row.ID.String(), id)
			return row, nil
		}

		var updated *activity.WorkFromHomeRequest
		deps.repo.updateWFHFn = func(ctx context.Context, r *activity.WorkFromHomeRequest) error {
			updated = r
			return nil
		}

		resp, err := deps.service.Decide(ctx, adminID, activity.DecideRequest{
			ID:     row.ID.String(),
			Type:   activity.RequestTypeWFH,
			Action: "approve",
		})

		assert.NoError(t, err)
		assert.Equal(t, activity.StatusApproved, resp.Status)
		assert.Equal(t, adminID, updated.ApprovedBy.String())
		assert.NotNil(t, updated.ApprovalDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject on a partial-day request", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		row := &activity.PartialDayRequest{
			ID:         uuid.New(),
			EmployeeID: uuid.New(),
			Date:       time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
			StartTime:  "14:00",
			EndTime:    "16:00",
			Duration:   decimal.NewFromInt(2),
			Reason:     "errand",
			Status:     activity.StatusPending,
		}
		deps.access.enforceFn = func(req domain.EnforceRequest) (bool, error) { return true, nil }
		deps.repo.findPartialByIDFn = func(ctx context.Context, id string) (*activity.PartialDayRequest, error) {
			return row, nil
		}

		notes := "not enough coverage that afternoon"
		resp, err := deps.service.Decide(ctx, adminID, activity.DecideRequest{
			ID:     row.ID.String(),
			Type:   activity.RequestTypePartialDay,
			Action: "reject",
			Notes:  &notes,
		})

		assert.NoError(t, err)
		assert.Equal(t, activity.StatusRejected, resp.Status)
		assert.Equal(t, &notes, resp.Notes)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already-decided request is refused", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		row := pendingWFH()
		row.Status = activity.StatusApproved
		deps.access.enforceFn = func(req domain.EnforceRequest) (bool, error) { return true, nil }
		deps.repo.findWFHByIDFn = func(ctx context.Context, id string) (*activity.WorkFromHomeRequest, error) {
			return row, nil
		}

		_, err := deps.service.Decide(ctx, adminID, activity.DecideRequest{
			ID:     row.ID.String(),
			Type:   activity.RequestTypeWFH,
			Action: "reject",
		})

		assert.ErrorIs(t, err, activityerrors.ErrNotPending)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.access.enforceFn = func(req domain.EnforceRequest) (bool, error) { return true, nil }

		_, err := deps.service.Decide(ctx, adminID, activity.DecideRequest{
			ID:     uuid.New().String(),
			Type:   activity.RequestTypeRegularization,
			Action: "approve",
		})

		assert.ErrorIs(t, err, activityerrors.ErrRequestNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("without activity:decide the decision is forbidden", func(t *testing.T) {
		deps := setupActivityServiceTest(t)
		defer deps.db.Close()

		deps.access.enforceFn = func(req domain.EnforceRequest) (bool, error) { return false, nil }

		_, err := deps.service.Decide(ctx, adminID, activity.DecideRequest{
			ID:     uuid.New().String(),
			Type:   activity.RequestTypeWFH,
			Action: "approve",
		})

		assert.Error(t, err)
	})
}

func TestActivityService_GetOwnRequests(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	deps := setupActivityServiceTest(t)
	defer deps.db.Close()

	deps.repo.findWFHByEmpFn = func(ctx context.Context, employeeID string) ([]activity.WorkFromHomeRequest, error) {
		assert.Equal(t, actorID.String(), employeeID)
		return []activity.WorkFromHomeRequest{{
			ID: uuid.New(), EmployeeID: actorID,
			Date: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC), RequestType: activity.RequestTypeWFH,
			Reason: "focus", Status: activity.StatusPending,
		}}, nil
	}
	deps.repo.findPartialByEmpFn = func(ctx context.Context, employeeID string) ([]activity.PartialDayRequest, error) {
		return nil, nil
	}
	deps.repo.findRegByEmpFn = func(ctx context.Context, employeeID string) ([]activity.RegularizationRequest, error) {
		return []activity.RegularizationRequest{{
			ID: uuid.New(), EmployeeID: actorID,
			Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), ClockIn: "09:00", ClockOut: "17:00",
			Reason: "badge", Status: activity.StatusApproved,
		}}, nil
	}

	resp, err := deps.service.GetOwnRequests(ctx, actorID.String())

	assert.NoError(t, err)
	assert.Len(t, resp.WorkFromHome, 1)
	assert.Empty(t, resp.PartialDay)
	assert.Len(t, resp.Regularization, 1)
	assert.Equal(t, "2026-06-20", resp.WorkFromHome[0].Date)
}
