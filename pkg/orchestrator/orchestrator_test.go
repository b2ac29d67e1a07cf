package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/orchestrator"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

func TestOrchestrator_Defaults(t *testing.T) {
	o := orchestrator.New()
	if err := o.Err(); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}
	if diff := cmp.Diff([]string{"html", "tui"}, o.Registry().List()); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
	if o.Schema().MinAge() != validation.DefaultMinAge {
		t.Fatalf("unexpected min age %d", o.Schema().MinAge())
	}
	if o.Form().Config.Title == "" {
		t.Fatalf("expected embedded form title")
	}
}

func TestOrchestrator_RenderController(t *testing.T) {
	o := orchestrator.New()
	ctrl := o.NewController(testsupport.NewSubmitter(submission.Reject("Field name is invalid")).Func())
	_ = ctrl.Submit(context.Background(), validation.Input{FieldName: "error", Email: "a@b.com", Age: "25"})

	resp, err := o.Render(context.Background(), orchestrator.Request{Controller: ctrl})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(resp.ContentType, "text/html") {
		t.Fatalf("unexpected content type %q", resp.ContentType)
	}
	if !strings.Contains(string(resp.Body), "Field name is invalid") || !resp.View.Dialog.Open {
		t.Fatalf("expected rejection in rendered page")
	}

	text, err := o.Render(context.Background(), orchestrator.Request{Controller: ctrl, Renderer: "tui"})
	if err != nil {
		t.Fatalf("render tui: %v", err)
	}
	if !strings.Contains(string(text.Body), "  - Field name is invalid") {
		t.Fatalf("unexpected text rendering:\n%s", text.Body)
	}
}

func TestOrchestrator_RenderErrors(t *testing.T) {
	o := orchestrator.New()
	if _, err := o.Render(context.Background(), orchestrator.Request{}); !errors.Is(err, orchestrator.ErrSnapshotRequired) {
		t.Fatalf("expected ErrSnapshotRequired, got %v", err)
	}
	snap := submission.Snapshot{Status: submission.StatusIdle}
	if _, err := o.Render(context.Background(), orchestrator.Request{Snapshot: &snap, Renderer: "pdf"}); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}

func TestOrchestrator_UISchemaOverrides(t *testing.T) {
	files := fstest.MapFS{
		"custom.yaml": {Data: []byte(`form:
  title: Sign up
messages:
  age.too_small: "Come back at %d"
`)},
	}
	o := orchestrator.New(
		orchestrator.WithUISchemaFS(files, "custom.yaml"),
		orchestrator.WithSchemaOptions(validation.WithMinAge(21)),
	)
	if err := o.Err(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if o.Form().Config.Title != "Sign up" {
		t.Fatalf("expected overridden title, got %q", o.Form().Config.Title)
	}

	result := o.Schema().Validate(validation.Input{FieldName: "a", Email: "a@b.com", Age: "20"})
	issue, ok := result.IssueFor(validation.FieldAge)
	if !ok || issue.Message != "Come back at 21" {
		t.Fatalf("unexpected age issue %+v", issue)
	}
}

func TestOrchestrator_BadUISchemaIsReported(t *testing.T) {
	o := orchestrator.New(orchestrator.WithUISchemaFile("/does/not/exist.yaml"))
	if o.Err() == nil {
		t.Fatalf("expected load error")
	}
	snap := submission.Snapshot{}
	if _, err := o.Render(context.Background(), orchestrator.Request{Snapshot: &snap}); err == nil {
		t.Fatalf("render should surface the init error")
	}
}

func TestOrchestrator_CustomRegistry(t *testing.T) {
	registry, err := render.NewRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	o := orchestrator.New(orchestrator.WithRegistry(registry), orchestrator.WithDefaultRenderer("none"))
	snap := submission.Snapshot{}
	if _, err := o.Render(context.Background(), orchestrator.Request{Snapshot: &snap}); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}
