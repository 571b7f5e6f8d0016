package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"leavedesk/internal/events"
	"leavedesk/internal/messaging/kafka/consumer"
	"leavedesk/internal/notification"
)

const notifierGroupID = "leavedesk-notifier"

// RunNotifier consumes leave and activity events and hands them to the
// notification service.
func RunNotifier() error {
	logger := zap.L().Named("app.notifier")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	notifier := notification.NewService(notification.NewLogSender(logger), logger)

	newReader := func(topic string) *kafkago.Reader {
		return kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        []string{kafkaBroker},
			Topic:          topic,
			GroupID:        notifierGroupID,
			CommitInterval: 0,
			StartOffset:    kafkago.FirstOffset,
		})
	}

	requestedReader := newReader(events.LeaveRequestedTopic)
	defer requestedReader.Close()
	statusReader := newReader(events.LeaveStatusChangedTopic)
	defer statusReader.Close()
	decisionReader := newReader(events.ActivityRequestDecidedTopic)
	defer decisionReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeLeaveRequested(ctx, requestedReader, notifier, logger)
	go consumer.ConsumeLeaveStatusChanged(ctx, statusReader, notifier, logger)
	go consumer.ConsumeActivityDecisions(ctx, decisionReader, notifier, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("notifier shutting down")
	cancel()

	return nil
}
