package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// SubmitFunc delivers a validated record to the outside world. Returning nil
// resolves the submission; returning an error rejects it. Errors implementing
// Rejection or FieldRejection contribute their messages to the error list.
type SubmitFunc func(ctx context.Context, record validation.Record) error

type listenerEntry struct {
	id uint64
	fn Listener
}

// Controller mediates between the validation schema, the injected submit
// function, and the presentation layer.
type Controller struct {
	mu sync.Mutex

	schema *validation.Schema
	submit SubmitFunc
	logger *slog.Logger

	listeners      []listenerEntry
	nextListenerID uint64

	seq         uint64
	event       Event
	status      Status
	values      validation.Input
	baseline    validation.Input
	dirty       int
	errs        []string
	fieldErrors map[string]string
	inFlight    bool

	// pending holds published snapshots not yet delivered; a single goroutine
	// drains it at a time so listeners observe snapshots in Seq order.
	pending  []delivery
	draining bool
}

type delivery struct {
	snap      Snapshot
	listeners []Listener
}

// New constructs a Controller in StatusIdle with empty fields. A nil submit
// function rejects every valid record with ErrNoSubmitFunc.
func New(submit SubmitFunc, options ...Option) *Controller {
	c := &Controller{
		submit: submit,
		logger: slog.Default(),
		event:  EventInit,
		status: StatusIdle,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.schema == nil {
		c.schema = validation.NewSchema()
	}
	if c.submit == nil {
		c.submit = func(context.Context, validation.Record) error {
			return ErrNoSubmitFunc
		}
	}
	return c
}

// Subscribe registers listener and returns a function that removes it.
// Listeners run outside the state lock, one snapshot at a time and in Seq
// order. A listener may call back into the controller; snapshots produced by
// such calls are delivered after the current one.
func (c *Controller) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.addListener(listener)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, entry := range c.listeners {
				if entry.id == id {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Controller) addListener(listener Listener) uint64 {
	c.nextListenerID++
	c.listeners = append(c.listeners, listenerEntry{id: c.nextListenerID, fn: listener})
	return c.nextListenerID
}

// SetField records an edit of a single field and recomputes the dirty count.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	next, ok := c.values.With(name, value)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	c.values = next
	c.dirty = c.countDirtyLocked()
	c.publishAndUnlock(EventEdit)
	return nil
}

// Submit runs a submit attempt with raw as the current field values.
//
// Invalid input moves the controller straight to StatusError without calling
// the submit function and returns a *ValidationError. Valid input moves it to
// StatusSubmitting, calls the submit function outside the lock, then settles
// in StatusSuccess (nil) or StatusError (*SubmissionError). While a submission
// is pending every other attempt returns ErrSubmissionInFlight.
func (c *Controller) Submit(ctx context.Context, raw validation.Input) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Debug("submission: attempt ignored, submission in flight")
		return ErrSubmissionInFlight
	}

	c.values = raw
	c.dirty = c.countDirtyLocked()
	c.errs = nil
	c.fieldErrors = nil

	result := c.schema.Validate(raw)
	if !result.Valid() {
		c.status = StatusError
		c.errs = result.Messages()
		c.fieldErrors = result.FieldErrors()
		c.logger.Debug("submission: validation failed", "issues", len(result.Issues))
		c.publishAndUnlock(EventInvalid)
		return &ValidationError{Issues: result.Issues}
	}

	c.status = StatusSubmitting
	c.inFlight = true
	c.logger.Debug("submission: submitting", "dirty", c.dirty)
	c.publishAndUnlock(EventSubmit)

	err := c.callSubmit(ctx, result.Record)

	c.mu.Lock()
	c.inFlight = false
	if c.status != StatusSubmitting {
		// Reset while pending: the outcome no longer belongs to the form.
		c.mu.Unlock()
		c.logger.Debug("submission: discarding outcome settled after reset", "error", err)
		if err != nil {
			messages, _ := rejectionDetails(err)
			return &SubmissionError{Messages: messages, Err: err}
		}
		return nil
	}

	if err != nil {
		messages, fieldErrors := rejectionDetails(err)
		c.status = StatusError
		c.errs = messages
		c.fieldErrors = fieldErrors
		c.logger.Warn("submission: rejected", "error", err, "messages", len(messages))
		c.publishAndUnlock(EventReject)
		return &SubmissionError{Messages: messages, Err: err}
	}

	c.status = StatusSuccess
	c.errs = nil
	c.fieldErrors = nil
	c.baseline = c.values
	c.dirty = 0
	c.logger.Debug("submission: resolved")
	c.publishAndUnlock(EventResolve)
	return nil
}

// SubmitCurrent submits the values accumulated through SetField.
func (c *Controller) SubmitCurrent(ctx context.Context) error {
	return c.Submit(ctx, c.Values())
}

// Reset returns the controller to StatusIdle with empty fields, no errors and
// a zero dirty count. A submission still pending keeps blocking new attempts
// until it settles; its outcome is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.status = StatusIdle
	c.values = validation.Input{}
	c.baseline = validation.Input{}
	c.dirty = 0
	c.errs = nil
	c.fieldErrors = nil
	c.logger.Debug("submission: reset", "in_flight", c.inFlight)
	c.publishAndUnlock(EventReset)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Status reports the current state machine position.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// DirtyCount reports how many fields differ from their baseline.
func (c *Controller) DirtyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Errors returns a copy of the surfaced error list.
func (c *Controller) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneStrings(c.errs)
}

// FieldErrors returns a copy of the per-field messages.
func (c *Controller) FieldErrors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneFieldErrors(c.fieldErrors)
}

// Values returns the current raw field values.
func (c *Controller) Values() validation.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

func (c *Controller) callSubmit(ctx context.Context, record validation.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submission: submit function panicked: %v", r)
		}
	}()
	return c.submit(ctx, record)
}

func (c *Controller) countDirtyLocked() int {
	count := 0
	for _, field := range validation.Fields() {
		current, _ := c.values.Get(field)
		initial, _ := c.baseline.Get(field)
		if current != initial {
			count++
		}
	}
	return count
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Seq:         c.seq,
		Event:       c.event,
		Status:      c.status,
		Values:      c.values,
		DirtyCount:  c.dirty,
		Errors:      cloneStrings(c.errs),
		FieldErrors: cloneFieldErrors(c.fieldErrors),
	}
}

// publishAndUnlock records event, releases mu, and delivers pending snapshots
// unless another goroutine is already draining them. It must be called with
// mu held.
func (c *Controller) publishAndUnlock(event Event) {
	c.seq++
	c.event = event
	snap := c.snapshotLocked()

	if len(c.listeners) > 0 {
		listeners := make([]Listener, 0, len(c.listeners))
		for _, entry := range c.listeners {
			listeners = append(listeners, entry.fn)
		}
		c.pending = append(c.pending, delivery{snap: snap, listeners: listeners})
	}

	if c.draining || len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	c.draining = true
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.mu.Lock()
			c.draining = false
			c.mu.Unlock()
			panic(r)
		}
	}()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		for _, listener := range next.listeners {
			listener(copySnapshot(next.snap))
		}
	}
}

func copySnapshot(s Snapshot) Snapshot {
	s.Errors = cloneStrings(s.Errors)
	s.FieldErrors = cloneFieldErrors(s.FieldErrors)
	return s
}
