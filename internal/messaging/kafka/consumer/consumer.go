package consumer

import (
	"context"
	"errors"
	"io"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// handlerFunc processes one decoded message; a returned error leaves the
// offset uncommitted so the message is re-delivered.
type handlerFunc func(ctx context.Context, msg kafkago.Message) error

func consumeLoop(ctx context.Context, reader *kafkago.Reader, logger *zap.Logger, handle handlerFunc) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				logger.Info("consumer stopped")
				return
			}
			logger.Error("fetch message failed", zap.Error(err))
			continue
		}

		if err := handle(ctx, msg); err != nil {
			logger.Error("handle message failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error("commit message failed", zap.Error(err))
		}
	}
}
