package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	activityerrors "leavedesk/internal/activity/errors"
	"leavedesk/internal/domain"
	"leavedesk/internal/events"
	"leavedesk/internal/messaging/kafka"
	"leavedesk/internal/policy"
	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/shared/contextutil"
)

// AccessControl is the slice of the RBAC service this module needs.
type AccessControl interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

//go:generate mockgen -source=activity_service.go -destination=mock/activity_service_mock.go -package=mock
type Service interface {
	SubmitWorkFromHome(ctx context.Context, actorID string, req WorkFromHomeSubmission) (SubmissionResponse, error)
	SubmitPartialDay(ctx context.Context, actorID string, req PartialDaySubmission) (SubmissionResponse, error)
	SubmitRegularization(ctx context.Context, actorID string, req RegularizationSubmission) (SubmissionResponse, error)
	Decide(ctx context.Context, actorID string, req DecideRequest) (RequestResponse, error)
	GetOwnRequests(ctx context.Context, actorID string) (OwnRequestsResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	access AccessControl
	cfg    policy.Config
	logger *zap.Logger
	now    func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	access AccessControl,
	cfg policy.Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("activity.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activity.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		access: access,
		cfg:    cfg,
		logger: l,
		now:    time.Now,
	}
}

// SubmitWorkFromHome records one row per requested date. All dates are
// validated against the window and quarterly cap rules before anything is
// inserted, and the batch commits or rolls back as a whole.
func (s *service) SubmitWorkFromHome(ctx context.Context, actorID string, req WorkFromHomeSubmission) (SubmissionResponse, error) {
	employeeID, err := uuid.Parse(actorID)
	if err != nil {
		return SubmissionResponse{}, activityerrors.ErrInvalidEmployeeID
	}

	today := truncateToDay(s.now().UTC())
	dates := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return SubmissionResponse{}, activityerrors.ErrInvalidDateFormat
		}
		if err := s.checkWFHWindow(date, today); err != nil {
			return SubmissionResponse{}, err
		}
		dates = append(dates, date)
	}

	requestType := req.RequestType
	if requestType == "" {
		requestType = RequestTypeWFH
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("wfh submission begin tx failed", zap.Error(err))
		return SubmissionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	quarterStart, quarterEnd := quarterBounds(today)
	existing, err := qtx.CountWFHInQuarter(ctx, actorID, quarterStart, quarterEnd)
	if err != nil {
		s.logger.Error("wfh quarter count failed", zap.Error(err))
		return SubmissionResponse{}, err
	}

	ids := make([]string, 0, len(dates))
	for i, date := range dates {
		if existing+int64(i) >= int64(s.cfg.WFHQuarterlyCap) {
			return SubmissionResponse{}, apperror.New(
				apperror.CodePolicyViolation,
				fmt.Sprintf("work-from-home limit of %d requests per quarter reached", s.cfg.WFHQuarterlyCap),
				http.StatusBadRequest,
			)
		}

		row := &WorkFromHomeRequest{
			ID:          uuid.New(),
			EmployeeID:  employeeID,
			Date:        date,
			RequestType: requestType,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Reason:      req.Reason,
			Status:      StatusPending,
		}
		if err := qtx.InsertWFH(ctx, row); err != nil {
			s.logger.Error("wfh insert failed", zap.String("date", date.Format("2006-01-02")), zap.Error(err))
			return SubmissionResponse{}, err
		}
		ids = append(ids, row.ID.String())
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("wfh submission commit failed", zap.Error(err))
		return SubmissionResponse{}, err
	}

	s.logger.Info("wfh submission accepted",
		zap.String("employee_id", actorID),
		zap.Int("dates", len(ids)),
	)
	return SubmissionResponse{IDs: ids}, nil
}

func (s *service) SubmitPartialDay(ctx context.Context, actorID string, req PartialDaySubmission) (SubmissionResponse, error) {
	employeeID, err := uuid.Parse(actorID)
	if err != nil {
		return SubmissionResponse{}, activityerrors.ErrInvalidEmployeeID
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return SubmissionResponse{}, activityerrors.ErrInvalidDateFormat
	}

	minutes, err := minutesBetween(req.StartTime, req.EndTime)
	if err != nil {
		return SubmissionResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("partial-day submission begin tx failed", zap.Error(err))
		return SubmissionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	existingHours, err := qtx.SumPartialDayHoursInMonth(ctx, actorID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		s.logger.Error("partial-day month sum failed", zap.Error(err))
		return SubmissionResponse{}, err
	}

	capMinutes := decimal.NewFromInt(int64(s.cfg.PartialDayMonthlyCapMinutes))
	total := existingHours.Mul(decimal.NewFromInt(60)).Add(minutes)
	if total.GreaterThan(capMinutes) {
		return SubmissionResponse{}, apperror.New(
			apperror.CodePolicyViolation,
			fmt.Sprintf("partial-day limit of %d minutes per month exceeded (%s minutes requested this month)",
				s.cfg.PartialDayMonthlyCapMinutes, total.String()),
			http.StatusBadRequest,
		)
	}

	row := &PartialDayRequest{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Duration:   minutes.Div(decimal.NewFromInt(60)),
		Reason:     req.Reason,
		Status:     StatusPending,
	}
	if err := qtx.InsertPartialDay(ctx, row); err != nil {
		s.logger.Error("partial-day insert failed", zap.Error(err))
		return SubmissionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("partial-day submission commit failed", zap.Error(err))
		return SubmissionResponse{}, err
	}

	s.logger.Info("partial-day submission accepted",
		zap.String("employee_id", actorID),
		zap.String("date", req.Date),
	)
	return SubmissionResponse{IDs: []string{row.ID.String()}}, nil
}

// SubmitRegularization has no quota or notice policy; the admin decision is
// the control. Only the clock range is validated.
func (s *service) SubmitRegularization(ctx context.Context, actorID string, req RegularizationSubmission) (SubmissionResponse, error) {
	employeeID := actorID
	if req.EmployeeID != "" && req.EmployeeID != actorID {
		allowed, err := s.access.Enforce(domain.EnforceRequest{
			EmployeeID: actorID, Resource: "activity", Action: "decide",
		})
		if err != nil {
			return SubmissionResponse{}, err
		}
		if !allowed {
			return SubmissionResponse{}, activityerrors.ErrSubmitForOthersForbidden
		}
		employeeID = req.EmployeeID
	}

	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return SubmissionResponse{}, activityerrors.ErrInvalidEmployeeID
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return SubmissionResponse{}, activityerrors.ErrInvalidDateFormat
	}

	clockIn, err := parseClock(req.ClockIn)
	if err != nil {
		return SubmissionResponse{}, err
	}
	clockOut, err := parseClock(req.ClockOut)
	if err != nil {
		return SubmissionResponse{}, err
	}
	if !clockIn.Before(clockOut) {
		return SubmissionResponse{}, activityerrors.ErrInvalidClockRange
	}

	row := &RegularizationRequest{
		ID:         uuid.New(),
		EmployeeID: employeeUUID,
		Date:       date,
		ClockIn:    req.ClockIn,
		ClockOut:   req.ClockOut,
		Reason:     req.Reason,
		Status:     StatusPending,
	}
	if err := s.repo.InsertRegularization(ctx, row); err != nil {
		s.logger.Error("regularization insert failed", zap.Error(err))
		return SubmissionResponse{}, err
	}

	s.logger.Info("regularization submission accepted",
		zap.String("employee_id", employeeID),
		zap.String("date", req.Date),
	)
	return SubmissionResponse{IDs: []string{row.ID.String()}}, nil
}

func (s *service) Decide(ctx context.Context, actorID string, req DecideRequest) (RequestResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RequestResponse{}, activityerrors.ErrInvalidEmployeeID
	}

	allowed, err := s.access.Enforce(domain.EnforceRequest{
		EmployeeID: actorID, Resource: "activity", Action: "decide",
	})
	if err != nil {
		return RequestResponse{}, err
	}
	if !allowed {
		return RequestResponse{}, apperror.ErrForbidden
	}

	status := StatusApproved
	if req.Action == "reject" {
		status = StatusRejected
	}
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("activity decision begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	var resp RequestResponse
	var employeeID string
	switch req.Type {
	case RequestTypeWFH:
		row, err := qtx.FindWFHByID(ctx, req.ID)
		if err != nil {
			return RequestResponse{}, mapLookupError(err)
		}
		if row.Status != StatusPending {
			return RequestResponse{}, activityerrors.ErrNotPending
		}
		row.Status = status
		row.ApprovedBy = &actorUUID
		row.ApprovalDate = &now
		row.Notes = req.Notes
		if err := qtx.UpdateWFHStatus(ctx, row); err != nil {
			return RequestResponse{}, err
		}
		resp = mapWFHToResponse(*row)
		employeeID = row.EmployeeID.String()
	case RequestTypePartialDay:
		row, err := qtx.FindPartialDayByID(ctx, req.ID)
		if err != nil {
			return RequestResponse{}, mapLookupError(err)
		}
		if row.Status != StatusPending {
			return RequestResponse{}, activityerrors.ErrNotPending
		}
		row.Status = status
		row.ApprovedBy = &actorUUID
		row.ApprovalDate = &now
		row.Notes = req.Notes
		if err := qtx.UpdatePartialDayStatus(ctx, row); err != nil {
			return RequestResponse{}, err
		}
		resp = mapPartialDayToResponse(*row)
		employeeID = row.EmployeeID.String()
	case RequestTypeRegularization:
		row, err := qtx.FindRegularizationByID(ctx, req.ID)
		if err != nil {
			return RequestResponse{}, mapLookupError(err)
		}
		if row.Status != StatusPending {
			return RequestResponse{}, activityerrors.ErrNotPending
		}
		row.Status = status
		row.ApprovedBy = &actorUUID
		row.ApprovalDate = &now
		row.Notes = req.Notes
		if err := qtx.UpdateRegularizationStatus(ctx, row); err != nil {
			return RequestResponse{}, err
		}
		resp = mapRegularizationToResponse(*row)
		employeeID = row.EmployeeID.String()
	default:
		return RequestResponse{}, apperror.InvalidField("type")
	}

	s.writeDecisionEvent(ctx, tx, req.ID, req.Type, employeeID, status, actorID, now)

	if err := tx.Commit(); err != nil {
		s.logger.Error("activity decision commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.logger.Info("activity decision recorded",
		zap.String("request_id", req.ID),
		zap.String("request_type", req.Type),
		zap.String("status", status),
	)
	return resp, nil
}

func (s *service) GetOwnRequests(ctx context.Context, actorID string) (OwnRequestsResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return OwnRequestsResponse{}, activityerrors.ErrInvalidEmployeeID
	}

	wfh, err := s.repo.FindWFHByEmployee(ctx, actorID)
	if err != nil {
		return OwnRequestsResponse{}, err
	}
	partial, err := s.repo.FindPartialDayByEmployee(ctx, actorID)
	if err != nil {
		return OwnRequestsResponse{}, err
	}
	regularization, err := s.repo.FindRegularizationByEmployee(ctx, actorID)
	if err != nil {
		return OwnRequestsResponse{}, err
	}

	resp := OwnRequestsResponse{
		WorkFromHome:   make([]RequestResponse, len(wfh)),
		PartialDay:     make([]RequestResponse, len(partial)),
		Regularization: make([]RequestResponse, len(regularization)),
	}
	for i, row := range wfh {
		resp.WorkFromHome[i] = mapWFHToResponse(row)
	}
	for i, row := range partial {
		resp.PartialDay[i] = mapPartialDayToResponse(row)
	}
	for i, row := range regularization {
		resp.Regularization[i] = mapRegularizationToResponse(row)
	}
	return resp, nil
}

// checkWFHWindow allows future dates (a day-granular date after today always
// satisfies the one day notice) and past dates up to the configured window.
func (s *service) checkWFHWindow(date, today time.Time) error {
	if date.After(today) {
		return nil
	}
	windowStart := today.AddDate(0, -s.cfg.WFHPastWindowMonths, 0)
	if date.Before(windowStart) {
		return apperror.New(
			apperror.CodePolicyViolation,
			fmt.Sprintf("work-from-home date %s is more than %d month(s) in the past",
				date.Format("2006-01-02"), s.cfg.WFHPastWindowMonths),
			http.StatusBadRequest,
		)
	}
	return nil
}

func (s *service) writeDecisionEvent(ctx context.Context, tx *sql.Tx, requestID, requestType, employeeID, status, actorID string, occurredAt time.Time) {
	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(events.ActivityRequestDecidedEvent{
		EventType:   "activity.request_decided",
		RequestID:   requestID,
		RequestType: requestType,
		EmployeeID:  employeeID,
		Status:      status,
		ActorID:     actorID,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		s.logger.Error("outbox payload marshal failed", zap.Error(err))
		return
	}
	err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "activity",
		AggregateID:   requestID,
		EventType:     "activity.request_decided",
		Topic:         events.ActivityRequestDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		s.logger.Error("outbox persist failed", zap.Error(err))
	}
}

func mapLookupError(err error) error {
	if err == sql.ErrNoRows {
		return activityerrors.ErrRequestNotFound
	}
	return err
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// quarterBounds returns the fixed calendar quarter containing t as a
// half-open interval.
func quarterBounds(t time.Time) (time.Time, time.Time) {
	quarter := (int(t.Month()) - 1) / 3
	start := time.Date(t.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

func parseClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, activityerrors.ErrInvalidTimeFormat
	}
	return t, nil
}

func minutesBetween(start, end string) (decimal.Decimal, error) {
	startTime, err := parseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	endTime, err := parseClock(end)
	if err != nil {
		return decimal.Zero, err
	}
	if !startTime.Before(endTime) {
		return decimal.Zero, activityerrors.ErrInvalidTimeRange
	}
	return decimal.NewFromInt(int64(endTime.Sub(startTime) / time.Minute)), nil
}

func mapWFHToResponse(r WorkFromHomeRequest) RequestResponse {
	resp := RequestResponse{
		ID:          r.ID.String(),
		EmployeeID:  r.EmployeeID.String(),
		Date:        r.Date.Format("2006-01-02"),
		RequestType: r.RequestType,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Reason:      r.Reason,
		Status:      r.Status,
		Notes:       r.Notes,
	}
	applyApprovalResponse(&resp, r.ApprovedBy, r.ApprovalDate)
	return resp
}

func mapPartialDayToResponse(r PartialDayRequest) RequestResponse {
	resp := RequestResponse{
		ID:         r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		Date:       r.Date.Format("2006-01-02"),
		StartTime:  &r.StartTime,
		EndTime:    &r.EndTime,
		Duration:   r.Duration.String(),
		Reason:     r.Reason,
		Status:     r.Status,
		Notes:      r.Notes,
	}
	applyApprovalResponse(&resp, r.ApprovedBy, r.ApprovalDate)
	return resp
}

func mapRegularizationToResponse(r RegularizationRequest) RequestResponse {
	resp := RequestResponse{
		ID:         r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		Date:       r.Date.Format("2006-01-02"),
		ClockIn:    r.ClockIn,
		ClockOut:   r.ClockOut,
		Reason:     r.Reason,
		Status:     r.Status,
		Notes:      r.Notes,
	}
	applyApprovalResponse(&resp, r.ApprovedBy, r.ApprovalDate)
	return resp
}

func applyApprovalResponse(resp *RequestResponse, approvedBy *uuid.UUID, approvalDate *time.Time) {
	if approvedBy != nil {
		v := approvedBy.String()
		resp.ApprovedBy = &v
	}
	if approvalDate != nil {
		v := approvalDate.Format(time.RFC3339)
		resp.ApprovalDate = &v
	}
}
