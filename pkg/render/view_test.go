package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/uischema"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

func TestBuildView_Idle(t *testing.T) {
	view := render.BuildView(submission.Snapshot{Status: submission.StatusIdle}, uischema.Default())

	if view.Icon != render.IconNone || view.Busy || view.Snackbar.Visible || view.Dialog.Open {
		t.Fatalf("unexpected idle view: %+v", view)
	}
	if view.DirtyLabel != "" {
		t.Fatalf("clean form should not show a dirty label, got %q", view.DirtyLabel)
	}

	names := make([]string, 0, len(view.Fields))
	for _, field := range view.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff(validation.Fields(), names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildView_SubmittingIsBusy(t *testing.T) {
	snap := submission.Snapshot{
		Status:     submission.StatusSubmitting,
		DirtyCount: 3,
		Values:     validation.Input{FieldName: "Alice", Email: "a@b.com", Age: "25"},
	}
	view := render.BuildView(snap, uischema.Default())

	if !view.Busy || view.Icon != render.IconSpinner {
		t.Fatalf("expected busy spinner, got %+v", view)
	}
	if view.DirtyLabel != "3 field(s) modified" {
		t.Fatalf("unexpected dirty label %q", view.DirtyLabel)
	}
	if view.Fields[2].Value != "25" || view.Fields[2].InputType != "number" {
		t.Fatalf("unexpected age field %+v", view.Fields[2])
	}
}

func TestBuildView_ErrorOpensDialog(t *testing.T) {
	snap := submission.Snapshot{
		Status: submission.StatusError,
		Errors: []string{"<b>Field name</b> is invalid", "  ", "Tom & Jerry's email is taken"},
		FieldErrors: map[string]string{
			validation.FieldName: "<i>Required</i>",
		},
	}
	view := render.BuildView(snap, uischema.Default())

	if view.Icon != render.IconError || !view.Snackbar.Visible || view.Snackbar.Kind != render.SnackbarError {
		t.Fatalf("expected error feedback, got %+v", view)
	}
	want := render.Dialog{
		Open:     true,
		Title:    "Please fix the following errors",
		Messages: []string{"Field name is invalid", "Tom & Jerry's email is taken"},
	}
	if diff := cmp.Diff(want, view.Dialog); diff != "" {
		t.Fatalf("dialog mismatch (-want +got):\n%s", diff)
	}
	if !view.Fields[0].Invalid || view.Fields[0].Error != "Required" {
		t.Fatalf("expected sanitised field error, got %+v", view.Fields[0])
	}
	if view.Fields[1].Invalid {
		t.Fatalf("email should not be flagged, got %+v", view.Fields[1])
	}
}

func TestBuildView_Success(t *testing.T) {
	view := render.BuildView(submission.Snapshot{Status: submission.StatusSuccess}, uischema.Default())

	want := render.Snackbar{Visible: true, Kind: render.SnackbarSuccess, Message: "Form submitted successfully"}
	if diff := cmp.Diff(want, view.Snackbar); diff != "" {
		t.Fatalf("snackbar mismatch (-want +got):\n%s", diff)
	}
	if view.Dialog.Open {
		t.Fatalf("dialog must stay closed on success")
	}
}

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, render.View, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry(t *testing.T) {
	registry, err := render.NewRegistry(namedRenderer("text"), namedRenderer("html"))
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if err := registry.Register(namedRenderer("HTML")); !errors.Is(err, render.ErrDuplicateRenderer) {
		t.Fatalf("expected ErrDuplicateRenderer, got %v", err)
	}
	if err := registry.Register(namedRenderer(" ")); !errors.Is(err, render.ErrUnnamedRenderer) {
		t.Fatalf("expected ErrUnnamedRenderer, got %v", err)
	}
	if err := registry.Register(nil); !errors.Is(err, render.ErrUnnamedRenderer) {
		t.Fatalf("expected ErrUnnamedRenderer for nil, got %v", err)
	}
	if diff := cmp.Diff([]string{"html", "text"}, registry.List()); diff != "" {
		t.Fatalf("renderer list mismatch (-want +got):\n%s", diff)
	}
	if _, err := registry.Get("pdf"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	if !registry.Has(" Text ") {
		t.Fatalf("expected format lookup to ignore case and spaces")
	}
}

func TestNewRegistry_KeepsCleanRenderers(t *testing.T) {
	registry, err := render.NewRegistry(namedRenderer("html"), namedRenderer("html"), namedRenderer("tui"))
	if !errors.Is(err, render.ErrDuplicateRenderer) {
		t.Fatalf("expected joined duplicate error, got %v", err)
	}
	if diff := cmp.Diff([]string{"html", "tui"}, registry.List()); diff != "" {
		t.Fatalf("renderer list mismatch (-want +got):\n%s", diff)
	}
}
