package devserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// DemoRejectedName is the field name the demo backend refuses.
const DemoRejectedName = "error"

// DemoRejectionMessage is the message returned for DemoRejectedName.
const DemoRejectionMessage = "Field name is invalid"

// DemoBackend stands in for a real submission service: it accepts every
// record except the ones named DemoRejectedName. Delay simulates latency so
// the busy state is visible.
type DemoBackend struct {
	Delay  time.Duration
	Logger *slog.Logger
}

// Submit implements submission.SubmitFunc.
func (d DemoBackend) Submit(ctx context.Context, record validation.Record) error {
	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return &submission.RejectedError{Cause: ctx.Err()}
		}
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if id, ok := SessionIDFromContext(ctx); ok {
		logger = logger.With("session", id)
	}
	if record.FieldName == DemoRejectedName {
		logger.Debug("demo: record rejected", "fieldName", record.FieldName)
		return submission.Reject(DemoRejectionMessage)
	}
	logger.Debug("demo: record accepted", "email", record.Email, "age", record.Age)
	return nil
}
