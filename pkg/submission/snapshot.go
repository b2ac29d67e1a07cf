package submission

import (
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Snapshot is an immutable copy of the controller state. Listeners and
// readers receive their own copies of the slices and maps.
type Snapshot struct {
	Seq         uint64            `json:"seq"`
	Event       Event             `json:"event"`
	Status      Status            `json:"status"`
	Values      validation.Input  `json:"values"`
	DirtyCount  int               `json:"dirtyCount"`
	Errors      []string          `json:"errors,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// Submitting reports whether a submission is pending. Presentation layers
// disable the submit action while it is true.
func (s Snapshot) Submitting() bool {
	return s.Status == StatusSubmitting
}

// HasErrors reports whether the error list is non-empty.
func (s Snapshot) HasErrors() bool {
	return len(s.Errors) > 0
}

// FieldError returns the message attached to field, if any.
func (s Snapshot) FieldError(field string) string {
	if len(s.FieldErrors) == 0 {
		return ""
	}
	return s.FieldErrors[field]
}

// Listener receives every snapshot published by a controller.
type Listener func(Snapshot)

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneFieldErrors(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
