package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Name is the registry key of the terminal renderer.
const Name = "tui"

// Renderer prints views as plain text and drives interactive sessions
// through a PromptDriver.
type Renderer struct {
	driver      PromptDriver
	theme       Theme
	fieldChecks *validation.Schema
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with the survey driver on stdout.
func New(options ...Option) *Renderer {
	r := &Renderer{theme: DefaultTheme}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the format produced by Render.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render prints a text summary of view. Messages were sanitised when the
// view was built.
func (r *Renderer) Render(ctx context.Context, view render.View, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(r.format(view)), nil
}

func (r *Renderer) format(view render.View) string {
	var b strings.Builder

	b.WriteString(view.Title)
	if glyph := iconGlyph(view.Icon); glyph != "" {
		b.WriteString(" ")
		b.WriteString(glyph)
	}
	b.WriteString("\n")
	if view.DirtyLabel != "" {
		b.WriteString(r.theme.InfoPrefix + view.DirtyLabel + "\n")
	}

	for _, field := range view.Fields {
		b.WriteString("  " + field.Label + ": " + field.Value)
		if field.Invalid {
			b.WriteString("  " + r.theme.ErrorPrefix + field.Error)
		}
		b.WriteString("\n")
	}

	if view.Snackbar.Visible {
		prefix := r.theme.InfoPrefix
		if view.Snackbar.Kind == render.SnackbarError {
			prefix = r.theme.ErrorPrefix
		}
		b.WriteString(prefix + view.Snackbar.Message + "\n")
	}
	if view.Dialog.Open {
		b.WriteString(view.Dialog.Title + ":\n")
		for _, msg := range view.Dialog.Messages {
			b.WriteString("  - " + msg + "\n")
		}
	}
	return b.String()
}

func iconGlyph(icon render.StatusIcon) string {
	switch icon {
	case render.IconSpinner:
		return "[...]"
	case render.IconSuccess:
		return "[ok]"
	case render.IconError:
		return "[x]"
	default:
		return ""
	}
}
