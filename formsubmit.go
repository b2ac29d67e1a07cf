package formsubmit

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formsubmit/pkg/orchestrator"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/renderers/html"
	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Input carries raw field values as typed by the user.
type Input = validation.Input

// Record is the coerced payload handed to submit handlers.
type Record = validation.Record

// Result aliases validation.Result.
type Result = validation.Result

// SubmitFunc receives a validated record. Returning an error rejects the
// submission; see submission.Reject for field level messages.
type SubmitFunc = submission.SubmitFunc

// Snapshot aliases submission.Snapshot for callers that only import the root
// package.
type Snapshot = submission.Snapshot

// RenderOptions describes per-request overrides passed to renderers.
type RenderOptions = render.RenderOptions

// Validate checks in against the default rules.
func Validate(in Input) Result {
	return validation.Validate(in)
}

// NewController returns a submission controller bound to submit with the
// default validation schema.
func NewController(submit SubmitFunc, options ...submission.Option) *submission.Controller {
	return submission.New(submit, options...)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// RenderHTML renders ctrl's current state as a standalone HTML page using the
// default UI hints.
func RenderHTML(ctx context.Context, ctrl *submission.Controller, options ...orchestrator.Option) ([]byte, error) {
	orch := orchestrator.New(options...)
	if err := orch.Err(); err != nil {
		return nil, err
	}
	resp, err := orch.Render(ctx, orchestrator.Request{
		Controller: ctrl,
		Renderer:   html.Name,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the stylesheet the HTML page links to.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formsubmit.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
