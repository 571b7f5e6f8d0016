// Package notification turns leave lifecycle events into messages for the
// affected employee. Actual mail transport is an external system; Sender is
// the seam it plugs into, and delivery failures never travel back to the API.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"leavedesk/internal/events"
)

type Message struct {
	EmployeeID string
	Subject    string
	Body       string
}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes the message to the service log. It stands in for the mail
// gateway in environments without one.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("notification.sender")}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification dispatched",
		zap.String("employee_id", msg.EmployeeID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

type Service struct {
	sender Sender
	logger *zap.Logger
}

func NewService(sender Sender, logger ...*zap.Logger) *Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &Service{sender: sender, logger: l}
}

func (s *Service) NotifyLeaveRequested(ctx context.Context, e events.LeaveRequestedEvent) {
	s.deliver(ctx, Message{
		EmployeeID: e.EmployeeID,
		Subject:    "Leave request submitted",
		Body: fmt.Sprintf("Your %s leave request for %s to %s (%d day(s)) was submitted and is pending approval.",
			e.LeaveType, e.StartDate, e.EndDate, e.TotalDays),
	})
}

func (s *Service) NotifyLeaveStatusChanged(ctx context.Context, e events.LeaveStatusChangedEvent) {
	s.deliver(ctx, Message{
		EmployeeID: e.EmployeeID,
		Subject:    "Leave request " + e.Status,
		Body:       fmt.Sprintf("Your leave request %s is now %s.", e.LeaveID, e.Status),
	})
}

func (s *Service) NotifyActivityRequestDecided(ctx context.Context, e events.ActivityRequestDecidedEvent) {
	s.deliver(ctx, Message{
		EmployeeID: e.EmployeeID,
		Subject:    fmt.Sprintf("%s request %s", e.RequestType, e.Status),
		Body:       fmt.Sprintf("Your %s request %s is now %s.", e.RequestType, e.RequestID, e.Status),
	})
}

// deliver is best-effort: a failed send is logged and dropped.
func (s *Service) deliver(ctx context.Context, msg Message) {
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("employee_id", msg.EmployeeID),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}
