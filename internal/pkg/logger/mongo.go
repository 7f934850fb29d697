package logger

import (
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

// NewMongoMonitor 记录 Mongo 慢命令与失败命令
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, e *event.CommandSucceededEvent) {
			if e.Duration > 200*time.Millisecond {
				log.WarnContext(ctx, "Mongo Command Slow",
					log.String("command", e.CommandName),
					log.Duration("latency", e.Duration),
				)
			}
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "Mongo Command Error",
				log.String("command", e.CommandName),
				log.Duration("latency", e.Duration),
				log.String("err", e.Failure),
			)
		},
	}
}
