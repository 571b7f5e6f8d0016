package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"leavedesk/internal/shared/contextutil"
)

// StdoutAuditLogger writes audit entries through the process logger. A
// database-backed trail can replace it behind the same interface.
type StdoutAuditLogger struct {
	logger *zap.Logger
}

func NewStdoutAuditLogger(logger ...*zap.Logger) *StdoutAuditLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &StdoutAuditLogger{logger: l}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	l.logger.Info("audit event",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("actor_id", contextutil.GetActorID(ctx)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
