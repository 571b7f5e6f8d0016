package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"leavedesk/internal/balance"
	"leavedesk/internal/domain"
	"leavedesk/internal/employee"
	"leavedesk/internal/events"
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/messaging/kafka"
	"leavedesk/internal/policy"
	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/shared/contextutil"
)

const balanceCacheTTL = 5 * time.Minute

func balanceCacheKey(employeeID string, year int) string {
	return fmt.Sprintf("leave:balance:%s:%d", employeeID, year)
}

// AccessControl is the slice of the RBAC service this module needs.
type AccessControl interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actorID string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actorID, id string) (LeaveResponse, error)
	UpdateStatus(ctx context.Context, actorID, id string, req UpdateLeaveStatusRequest) (LeaveResponse, error)
	GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	balanceRepo balance.Repository
	employees   employee.Repository
	outbox      kafka.OutboxRepository
	access      AccessControl
	validator   *Validator
	cfg         policy.Config
	rdb         *redis.Client
	sf          *singleflight.Group
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	balanceRepo balance.Repository,
	employees employee.Repository,
	outbox kafka.OutboxRepository,
	access AccessControl,
	cfg policy.Config,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		balanceRepo: balanceRepo,
		employees:   employees,
		outbox:      outbox,
		access:      access,
		validator:   NewValidator(cfg),
		cfg:         cfg,
		rdb:         rdb,
		sf:          &singleflight.Group{},
		logger:      l,
		now:         time.Now,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	employeeID := actorID
	if req.EmployeeID != "" && req.EmployeeID != actorID {
		allowed, err := s.access.Enforce(domain.EnforceRequest{
			EmployeeID: actorID, Resource: "leave", Action: "approve",
		})
		if err != nil {
			return LeaveResponse{}, err
		}
		if !allowed {
			return LeaveResponse{}, leaveerrors.ErrCreateForOthersForbidden
		}
		employeeID = req.EmployeeID
	}

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	totalDays := TotalDaysInclusive(startDate, endDate)
	duration := decimal.NewFromInt(int64(totalDays))
	if req.IsHalfDay {
		if !startDate.Equal(endDate) {
			return LeaveResponse{}, leaveerrors.ErrHalfDayRange
		}
		duration = decimal.NewFromFloat(0.5)
	}

	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		s.logger.Error("create leave employee lookup failed", zap.Error(err))
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qBalance := s.balanceRepo.WithTx(tx)

	year := s.now().UTC().Year()
	bal, err := qBalance.Ensure(ctx, employeeID, year, s.cfg.PaidLeaveAnnualQuota)
	if err != nil {
		s.logger.Error("create leave ensure balance failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	var emergencyUsed int64
	if req.LeaveType == TypeEmergency {
		monthStart := time.Date(startDate.Year(), startDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		emergencyUsed, err = qtx.CountEmergencyInMonth(ctx, employeeID, monthStart, monthStart.AddDate(0, 1, 0))
		if err != nil {
			s.logger.Error("create leave emergency count failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	result := s.validator.Validate(
		EmployeeProfile{Gender: emp.Gender, JoinDate: emp.JoinDate},
		bal,
		ValidationInput{
			LeaveType:              req.LeaveType,
			StartDate:              startDate,
			EndDate:                endDate,
			TotalDays:              totalDays,
			Duration:               duration,
			EmergencyUsedThisMonth: emergencyUsed,
		},
	)
	if !result.Valid {
		s.logger.Info("create leave rejected by policy",
			zap.String("employee_id", employeeID),
			zap.String("leave_type", req.LeaveType),
			zap.String("reason", result.Error),
		)
		return LeaveResponse{}, apperror.New(apperror.CodePolicyViolation, result.Error, http.StatusBadRequest)
	}

	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: emp.ID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  totalDays,
		Duration:   duration,
		Reason:     req.Reason,
		Notes:      req.Notes,
		Status:     StatusPending,
		CreatedBy:  actorUUID,
	}

	if err := qtx.Insert(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	applied, err := ApplyBalanceEffect(ctx, qBalance, s.cfg, employeeID, req.LeaveType, duration, year)
	if err != nil {
		s.logger.Error("create leave balance reserve failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !applied {
		// Another request consumed the remaining balance between our
		// snapshot and the guarded increment.
		return LeaveResponse{}, leaveerrors.ErrQuotaRace
	}

	s.writeOutboxEvent(ctx, tx, events.LeaveRequestedTopic, "leave.requested", l.ID.String(), events.LeaveRequestedEvent{
		EventType:  "leave.requested",
		LeaveID:    l.ID.String(),
		EmployeeID: employeeID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		OccurredAt: s.now().UTC(),
	})

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateBalanceCache(ctx, employeeID, year)
	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("leave_type", l.LeaveType),
	)

	resp := mapToResponse(*l)
	resp.Warning = result.Warning
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, actorID string) ([]LeaveResponse, error) {
	canReadAll, err := s.access.Enforce(domain.EnforceRequest{
		EmployeeID: actorID, Resource: "leave", Action: "approve",
	})
	if err != nil {
		return nil, err
	}

	var leaves []Leave
	if canReadAll {
		leaves, err = s.repo.FindAll(ctx)
	} else {
		leaves, err = s.repo.FindAllByEmployee(ctx, actorID)
	}
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if l.EmployeeID.String() != actorID {
		canReadAll, err := s.access.Enforce(domain.EnforceRequest{
			EmployeeID: actorID, Resource: "leave", Action: "approve",
		})
		if err != nil {
			return LeaveResponse{}, err
		}
		if !canReadAll {
			return LeaveResponse{}, apperror.ErrForbidden
		}
	}
	return mapToResponse(*l), nil
}

func (s *service) UpdateStatus(ctx context.Context, actorID, id string, req UpdateLeaveStatusRequest) (LeaveResponse, error) {
	s.logger.Debug("leave status transition requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", req.Status),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	// Authorization happens before any mutation: approve/reject need an
	// elevated role; cancel is owner-or-elevated.
	switch req.Status {
	case StatusApproved, StatusRejected:
		allowed, err := s.access.Enforce(domain.EnforceRequest{
			EmployeeID: actorID, Resource: "leave", Action: "approve",
		})
		if err != nil {
			return LeaveResponse{}, err
		}
		if !allowed {
			return LeaveResponse{}, leaveerrors.ErrApprovalForbidden
		}
	case StatusCancelled:
		if l.EmployeeID.String() != actorID {
			allowed, err := s.access.Enforce(domain.EnforceRequest{
				EmployeeID: actorID, Resource: "leave", Action: "approve",
			})
			if err != nil {
				return LeaveResponse{}, err
			}
			if !allowed {
				return LeaveResponse{}, leaveerrors.ErrCancelForbidden
			}
		}
	}

	if l.Status != StatusPending {
		s.logger.Warn("leave status transition refused",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", req.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	if req.Status == StatusRejected && len(req.RejectionReason) < 10 {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave status transition begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qBalance := s.balanceRepo.WithTx(tx)

	now := s.now().UTC()
	l.Status = req.Status
	switch req.Status {
	case StatusApproved:
		// The days were reserved at creation; approval only confirms them.
		l.ApprovedBy = &actorUUID
		l.ApprovalDate = &now
		l.RejectionReason = nil
	case StatusRejected:
		l.ApprovedBy = &actorUUID
		l.ApprovalDate = &now
		reason := req.RejectionReason
		l.RejectionReason = &reason
	case StatusCancelled:
		l.ApprovedBy = nil
		l.ApprovalDate = nil
		l.RejectionReason = nil
	}

	if err := qtx.UpdateStatus(ctx, l); err != nil {
		s.logger.Error("leave status transition persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	year := now.Year()
	if req.Status == StatusRejected || req.Status == StatusCancelled {
		// Refund exactly once: the pending reservation is handed back.
		if _, err := ApplyBalanceEffect(ctx, qBalance, s.cfg, l.EmployeeID.String(), l.LeaveType, l.Duration.Neg(), year); err != nil {
			s.logger.Error("leave refund failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	s.writeOutboxEvent(ctx, tx, events.LeaveStatusChangedTopic, "leave.status_changed", l.ID.String(), events.LeaveStatusChangedEvent{
		EventType:  "leave.status_changed",
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		Status:     l.Status,
		ActorID:    actorID,
		OccurredAt: now,
	})

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave status transition commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateBalanceCache(ctx, l.EmployeeID.String(), year)
	s.logger.Info("leave status transition success",
		zap.String("leave_id", id),
		zap.String("status", l.Status),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error) {
	year := s.now().UTC().Year()
	key := balanceCacheKey(employeeID, year)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var resp BalanceResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		bal, err := s.balanceRepo.Ensure(ctx, employeeID, year, s.cfg.PaidLeaveAnnualQuota)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		resp := mapToBalanceResponse(*bal)

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, key, payload, balanceCacheTTL).Err(); err != nil {
					s.logger.Warn("balance cache set failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return BalanceResponse{}, err
	}
	return v.(BalanceResponse), nil
}

func (s *service) invalidateBalanceCache(ctx context.Context, employeeID string, year int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, balanceCacheKey(employeeID, year)).Err(); err != nil {
		s.logger.Warn("balance cache invalidation failed", zap.String("employee_id", employeeID), zap.Error(err))
	}
}

// writeOutboxEvent records a notification event in the same transaction as
// the state change. Failures are logged and swallowed: the request's outcome
// never depends on notification delivery.
func (s *service) writeOutboxEvent(ctx context.Context, tx *sql.Tx, topic, eventType, aggregateID string, payload any) {
	if s.outbox == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("outbox payload marshal failed", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		s.logger.Error("outbox persist failed", zap.String("event_type", eventType), zap.Error(err))
	}
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		Duration:   l.Duration.String(),
		Reason:     l.Reason,
		Notes:      l.Notes,
		Status:     l.Status,
		CreatedBy:  l.CreatedBy.String(),
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovalDate != nil {
		v := l.ApprovalDate.Format(time.RFC3339)
		resp.ApprovalDate = &v
	}
	resp.RejectionReason = l.RejectionReason
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}

func mapToBalanceResponse(b balance.LeaveBalance) BalanceResponse {
	return BalanceResponse{
		EmployeeID:              b.EmployeeID.String(),
		Year:                    b.Year,
		PaidLeaveQuota:          b.PaidLeaveQuota.String(),
		PaidLeaveUsed:           b.PaidLeaveUsed.String(),
		PaidLeaveRemaining:      b.Remaining().String(),
		EmergencyLeaveUsedCount: b.EmergencyLeaveUsedCount,
		BirthdayLeaveUsed:       b.BirthdayLeaveUsed,
		AnniversaryLeaveUsed:    b.AnniversaryLeaveUsed,
		MaternityLeaveQuota:     b.MaternityLeaveQuota.String(),
		MaternityLeaveUsed:      b.MaternityLeaveUsed.String(),
		PaternityLeaveQuota:     b.PaternityLeaveQuota.String(),
		PaternityLeaveUsed:      b.PaternityLeaveUsed.String(),
	}
}
