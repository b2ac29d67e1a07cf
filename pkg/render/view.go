package render

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/uischema"
)

// StatusIcon identifies the glyph shown next to the form title.
type StatusIcon string

const (
	IconNone    StatusIcon = "none"
	IconSpinner StatusIcon = "spinner"
	IconSuccess StatusIcon = "success"
	IconError   StatusIcon = "error"
)

// SnackbarKind distinguishes success and failure notifications.
type SnackbarKind string

const (
	SnackbarSuccess SnackbarKind = "success"
	SnackbarError   SnackbarKind = "error"
)

// View is everything a renderer needs to draw the form.
type View struct {
	Seq         uint64            `json:"seq"`
	Title       string            `json:"title"`
	Subtitle    string            `json:"subtitle,omitempty"`
	Status      submission.Status `json:"status"`
	Icon        StatusIcon        `json:"icon"`
	Busy        bool              `json:"busy"`
	DirtyCount  int               `json:"dirtyCount"`
	DirtyLabel  string            `json:"dirtyLabel,omitempty"`
	Fields      []FieldView       `json:"fields"`
	SubmitLabel string            `json:"submitLabel"`
	ResetLabel  string            `json:"resetLabel"`
	Snackbar    Snackbar          `json:"snackbar"`
	Dialog      Dialog            `json:"dialog"`
}

// FieldView is the rendered state of one input.
type FieldView struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	InputType   string `json:"inputType"`
	Placeholder string `json:"placeholder,omitempty"`
	HelpText    string `json:"helpText,omitempty"`
	Value       string `json:"value"`
	Error       string `json:"error,omitempty"`
	Invalid     bool   `json:"invalid"`
}

// Snackbar is the transient notification shown after a submission settles.
type Snackbar struct {
	Visible bool         `json:"visible"`
	Kind    SnackbarKind `json:"kind,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Dialog lists the surfaced errors.
type Dialog struct {
	Open     bool     `json:"open"`
	Title    string   `json:"title,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

// BuildView derives the View for snap using the hints in form.
func BuildView(snap submission.Snapshot, form uischema.Form) View {
	cfg := form.Config
	view := View{
		Seq:         snap.Seq,
		Title:       cfg.Title,
		Subtitle:    cfg.Subtitle,
		Status:      snap.Status,
		Icon:        iconFor(snap.Status),
		Busy:        snap.Submitting(),
		DirtyCount:  snap.DirtyCount,
		DirtyLabel:  dirtyLabel(cfg.DirtyLabel, snap.DirtyCount),
		SubmitLabel: fallback(cfg.SubmitLabel, "Submit"),
		ResetLabel:  fallback(cfg.ResetLabel, "Reset"),
	}

	for _, field := range form.OrderedFields() {
		value, _ := snap.Values.Get(field.Name)
		msg := SanitizeMessage(snap.FieldError(field.Name))
		view.Fields = append(view.Fields, FieldView{
			Name:        field.Name,
			Label:       field.Label,
			InputType:   field.InputType,
			Placeholder: field.Placeholder,
			HelpText:    field.HelpText,
			Value:       value,
			Error:       msg,
			Invalid:     msg != "",
		})
	}

	switch snap.Status {
	case submission.StatusSuccess:
		view.Snackbar = Snackbar{
			Visible: true,
			Kind:    SnackbarSuccess,
			Message: fallback(cfg.SuccessMessage, "Form submitted successfully"),
		}
	case submission.StatusError:
		view.Snackbar = Snackbar{
			Visible: true,
			Kind:    SnackbarError,
			Message: fallback(cfg.ErrorMessage, "Submission failed"),
		}
		if messages := SanitizeMessages(snap.Errors); len(messages) > 0 {
			view.Dialog = Dialog{
				Open:     true,
				Title:    fallback(cfg.DialogTitle, "Errors"),
				Messages: messages,
			}
		}
	}

	return view
}

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// SanitizeMessage strips markup from msg and returns plain text. The result
// still needs escaping by the renderer.
func SanitizeMessage(msg string) string {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return ""
	}
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(messagePolicy.Sanitize(trimmed)))
}

// SanitizeMessages sanitises every message, dropping the ones left empty.
func SanitizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		if clean := SanitizeMessage(msg); clean != "" {
			out = append(out, clean)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func iconFor(status submission.Status) StatusIcon {
	switch status {
	case submission.StatusSubmitting:
		return IconSpinner
	case submission.StatusSuccess:
		return IconSuccess
	case submission.StatusError:
		return IconError
	default:
		return IconNone
	}
}

func dirtyLabel(format string, count int) string {
	if count <= 0 {
		return ""
	}
	if strings.Contains(format, "%d") {
		return fmt.Sprintf(format, count)
	}
	if strings.TrimSpace(format) != "" {
		return format
	}
	return fmt.Sprintf("%d modified", count)
}

func fallback(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}
