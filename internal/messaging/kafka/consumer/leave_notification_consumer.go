package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"leavedesk/internal/events"
	"leavedesk/internal/notification"
)

// ConsumeLeaveRequested feeds leave.requested events to the notifier.
func ConsumeLeaveRequested(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier *notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("consumer.leave_requested")
	consumeLoop(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		var event events.LeaveRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Malformed payloads are dropped, not retried forever.
			log.Warn("skip undecodable event", zap.Error(err))
			return nil
		}
		notifier.NotifyLeaveRequested(ctx, event)
		return nil
	})
}

// ConsumeLeaveStatusChanged feeds status transition events to the notifier.
func ConsumeLeaveStatusChanged(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier *notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("consumer.leave_status")
	consumeLoop(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		var event events.LeaveStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn("skip undecodable event", zap.Error(err))
			return nil
		}
		notifier.NotifyLeaveStatusChanged(ctx, event)
		return nil
	})
}

// ConsumeActivityDecisions feeds WFH/partial-day/regularization decisions to
// the notifier.
func ConsumeActivityDecisions(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier *notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("consumer.activity_decision")
	consumeLoop(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		var event events.ActivityRequestDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn("skip undecodable event", zap.Error(err))
			return nil
		}
		notifier.NotifyActivityRequestDecided(ctx, event)
		return nil
	})
}
