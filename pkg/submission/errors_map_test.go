package submission_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/submission"
)

func TestMapErrorPayload_PathVariants(t *testing.T) {
	payload := map[string][]string{
		"/body/fieldName":        {"Name is taken"},
		"body.email":             {"Email invalid", " Email invalid "},
		"$.data.age":             {"Too young"},
		"#/properties/age":       {"Age out of range"},
		"request/payload/email":  {"Email blocked"},
		"non_field_errors":       {"Form level error"},
		"request/body/unknown":   {"Should fall back to form errors"},
		"":                       {"Unscoped form error"},
		"fieldName":              {"  "},
		"$.body.contacts[0].age": {"Nested list"},
	}

	mapped := submission.MapErrorPayload(payload)

	wantFields := map[string][]string{
		"fieldName": {"Name is taken"},
		"email":     {"Email invalid", "Email blocked"},
		"age":       {"Age out of range", "Too young"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Unscoped form error", "Nested list", "Form level error", "Should fall back to form errors"}
	if diff := cmp.Diff(wantForm, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayload_Empty(t *testing.T) {
	mapped := submission.MapErrorPayload(nil)
	if mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %+v", mapped)
	}
}

func TestMergeMessages(t *testing.T) {
	merged := submission.MergeMessages([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRejectedError(t *testing.T) {
	cause := errors.New("status 422")
	err := fmt.Errorf("submit: %w", &submission.RejectedError{Messages: []string{"a", " b "}, Cause: cause})

	if !errors.Is(err, cause) {
		t.Fatalf("expected the cause to be reachable")
	}
	var rejection submission.Rejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected a Rejection")
	}
	if got := rejection.Error(); got != "submission rejected: a; b" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := submission.Reject().Error(); got != "submission rejected" {
		t.Fatalf("unexpected empty rejection message %q", got)
	}
}
