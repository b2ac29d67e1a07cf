package tui

import "github.com/goliatone/go-formsubmit/pkg/validation"

// Theme captures optional formatting hints applied when printing messages.
// Keep minimal to avoid coupling renderer logic to ANSI specifics.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{
	InfoPrefix:  "",
	ErrorPrefix: "! ",
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithFieldChecks re-prompts an answer until it passes schema. A nil schema
// disables the checks.
func WithFieldChecks(schema *validation.Schema) Option {
	return func(r *Renderer) {
		r.fieldChecks = schema
	}
}
