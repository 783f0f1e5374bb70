package obs

import (
	"context"
	"time"
	"waste-route-service/internal/platform/logger"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

var log = logger.New("obs")

// RequestID returns the id assigned by the HTTP middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs the duration of an operation when the returned func is deferred
// with a pointer to the operation's named error result.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Warnf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Debugf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}
