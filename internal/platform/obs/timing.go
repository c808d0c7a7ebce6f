package obs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey string

const RunIDKey ctxKey = "run_id"

// Attach a fresh run id to ctx so every timed operation of one command
// invocation can be correlated in the logs.
func WithRunID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, RunIDKey, id), id
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// Time logs the duration of an operation. Call the returned func with a
// pointer to the operation's named error result:
//
//	defer obs.Time(ctx, logger, "graph.build")(&err)
func Time(ctx context.Context, logger *zap.Logger, name string) func(errp *error) {
	start := time.Now()

	runID := RunID(ctx)

	return func(errp *error) {
		if logger == nil {
			return
		}
		dur := time.Since(start)

		fields := []zap.Field{
			zap.String("run_id", runID),
			zap.String("op", name),
			zap.Int64("dur_ms", dur.Milliseconds()),
		}
		if errp != nil && *errp != nil {
			logger.Warn("operation failed", append(fields, zap.Error(*errp))...)
			return
		}
		logger.Info("operation finished", fields...)
	}
}
