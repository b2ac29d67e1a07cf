package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// Submitter is a scripted submission.SubmitFunc. Each call pops the next
// error from Results; once exhausted, calls succeed. When Gate is non-nil
// every call blocks until a value is received from it or ctx is done.
type Submitter struct {
	mu      sync.Mutex
	Results []error
	Gate    chan struct{}
	calls   []validation.Record
	started chan struct{}
}

// NewSubmitter returns a Submitter that yields results in order.
func NewSubmitter(results ...error) *Submitter {
	return &Submitter{Results: results, started: make(chan struct{}, 16)}
}

// Func adapts the submitter to submission.SubmitFunc.
func (s *Submitter) Func() submission.SubmitFunc {
	return s.Submit
}

// Submit records the call and returns the next scripted result.
func (s *Submitter) Submit(ctx context.Context, record validation.Record) error {
	s.mu.Lock()
	s.calls = append(s.calls, record)
	var result error
	if len(s.Results) > 0 {
		result = s.Results[0]
		s.Results = s.Results[1:]
	}
	gate := s.Gate
	started := s.started
	s.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return result
}

// Started is signalled once per call, before the gate is awaited.
func (s *Submitter) Started() <-chan struct{} {
	return s.started
}

// Calls returns the records received so far.
func (s *Submitter) Calls() []validation.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]validation.Record(nil), s.calls...)
}

// Recorder collects published snapshots.
type Recorder struct {
	mu        sync.Mutex
	snapshots []submission.Snapshot
}

// Listen is a submission.Listener.
func (r *Recorder) Listen(snap submission.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap)
}

// Snapshots returns a copy of everything recorded.
func (r *Recorder) Snapshots() []submission.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]submission.Snapshot(nil), r.snapshots...)
}

// Statuses returns the status of every recorded snapshot.
func (r *Recorder) Statuses() []submission.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]submission.Status, 0, len(r.snapshots))
	for _, snap := range r.snapshots {
		out = append(out, snap.Status)
	}
	return out
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
