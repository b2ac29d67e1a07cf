package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/renderers/html"
	"github.com/goliatone/go-formsubmit/pkg/renderers/tui"
	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/uischema"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

const defaultRendererName = html.Name

// ErrSnapshotRequired is returned by Render when neither a snapshot nor a
// controller is supplied.
var ErrSnapshotRequired = errors.New("orchestrator: snapshot or controller is required")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithForm sets the UI hints directly.
func WithForm(form uischema.Form) Option {
	return func(o *Orchestrator) {
		o.form = &form
	}
}

// WithUISchemaFS loads the UI hints document name from fsys and merges it
// over the embedded defaults.
func WithUISchemaFS(fsys fs.FS, name string) Option {
	return func(o *Orchestrator) {
		o.uiSchemaFS = fsys
		o.uiSchemaName = name
	}
}

// WithUISchemaFile loads the UI hints from a file on disk. An empty path
// keeps the embedded defaults.
func WithUISchemaFile(path string) Option {
	return func(o *Orchestrator) {
		o.uiSchemaPath = path
	}
}

// WithSchemaOptions appends validation options. They are applied after the
// message overrides declared by the UI hints.
func WithSchemaOptions(options ...validation.Option) Option {
	return func(o *Orchestrator) {
		o.schemaOptions = append(o.schemaOptions, options...)
	}
}

// WithLogger sets the logger handed to controllers.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStylesheetURL is passed to the default html renderer.
func WithStylesheetURL(url string) Option {
	return func(o *Orchestrator) {
		o.stylesheetURL = url
	}
}

// Orchestrator holds the resolved form, schema and renderers. Construction
// errors are deferred to the first call that needs the failed piece.
type Orchestrator struct {
	registry        *render.Registry
	defaultRenderer string
	form            *uischema.Form
	uiSchemaFS      fs.FS
	uiSchemaName    string
	uiSchemaPath    string
	schemaOptions   []validation.Option
	schema          *validation.Schema
	logger          *slog.Logger
	stylesheetURL   string
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// pieces fall back to the embedded UI hints, the default schema and a
// registry holding the html and tui renderers.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.form == nil {
		form, err := o.loadForm()
		if err != nil {
			o.initialiseErr = err
			form = uischema.Default()
		}
		o.form = &form
	}

	opts := append(o.form.SchemaOptions(), o.schemaOptions...)
	o.schema = validation.NewSchema(opts...)

	if o.registry == nil {
		renderers := []render.Renderer{tui.New()}
		page, err := html.New(html.WithStylesheetURL(o.stylesheetURL))
		if err != nil {
			o.initialiseErr = errors.Join(o.initialiseErr, err)
		} else {
			renderers = append(renderers, page)
		}
		registry, err := render.NewRegistry(renderers...)
		o.initialiseErr = errors.Join(o.initialiseErr, err)
		o.registry = registry
	}
}

func (o *Orchestrator) loadForm() (uischema.Form, error) {
	switch {
	case o.uiSchemaPath != "":
		return uischema.LoadFile(o.uiSchemaPath)
	case o.uiSchemaFS != nil:
		name := o.uiSchemaName
		if name == "" {
			name = uischema.DefaultFile
		}
		return uischema.LoadFS(o.uiSchemaFS, name)
	default:
		return uischema.Default(), nil
	}
}

// Err reports a failure to load the UI hints or to build a renderer.
func (o *Orchestrator) Err() error {
	return o.initialiseErr
}

// Form returns the resolved UI hints.
func (o *Orchestrator) Form() uischema.Form {
	return *o.form
}

// Schema returns the validation schema controllers are built with.
func (o *Orchestrator) Schema() *validation.Schema {
	return o.schema
}

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// NewController builds a controller bound to the orchestrator's schema and
// logger. Extra options are applied last.
func (o *Orchestrator) NewController(submit submission.SubmitFunc, options ...submission.Option) *submission.Controller {
	base := []submission.Option{
		submission.WithSchema(o.schema),
		submission.WithLogger(o.logger),
	}
	return submission.New(submit, append(base, options...)...)
}

// Request describes a render call. Controller takes precedence over Snapshot.
type Request struct {
	Controller *submission.Controller
	Snapshot   *submission.Snapshot
	Renderer   string
	Options    render.RenderOptions
}

// Response carries the rendered bytes and their content type.
type Response struct {
	Body        []byte
	ContentType string
	View        render.View
}

// Render builds the view for the request's snapshot and renders it.
func (o *Orchestrator) Render(ctx context.Context, req Request) (Response, error) {
	if o.initialiseErr != nil {
		return Response{}, o.initialiseErr
	}

	var snap submission.Snapshot
	switch {
	case req.Controller != nil:
		snap = req.Controller.Snapshot()
	case req.Snapshot != nil:
		snap = *req.Snapshot
	default:
		return Response{}, ErrSnapshotRequired
	}

	name := req.Renderer
	if name == "" {
		name = o.defaultRenderer
	}
	renderer, err := o.registry.Get(name)
	if err != nil {
		return Response{}, err
	}

	view := render.BuildView(snap, *o.form)
	out, err := renderer.Render(ctx, view, req.Options)
	if err != nil {
		return Response{}, fmt.Errorf("orchestrator: render %s: %w", name, err)
	}
	return Response{Body: out, ContentType: renderer.ContentType(), View: view}, nil
}
