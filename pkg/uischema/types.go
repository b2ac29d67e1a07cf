package uischema

import (
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Form holds the presentation hints for the whole form.
type Form struct {
	Source   string
	Config   FormConfig
	Fields   map[string]FieldConfig
	Messages map[string]string
}

// FormConfig captures form-level copy. DirtyLabel may contain a single %d verb
// receiving the dirty count.
type FormConfig struct {
	Title          string `json:"title" yaml:"title"`
	Subtitle       string `json:"subtitle" yaml:"subtitle"`
	SubmitLabel    string `json:"submitLabel" yaml:"submitLabel"`
	ResetLabel     string `json:"resetLabel" yaml:"resetLabel"`
	SuccessMessage string `json:"successMessage" yaml:"successMessage"`
	ErrorMessage   string `json:"errorMessage" yaml:"errorMessage"`
	DialogTitle    string `json:"dialogTitle" yaml:"dialogTitle"`
	DirtyLabel     string `json:"dirtyLabel" yaml:"dirtyLabel"`
}

// FieldConfig customises how a single field is presented.
type FieldConfig struct {
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	InputType   string `json:"inputType,omitempty" yaml:"inputType,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    string `json:"helpText,omitempty" yaml:"helpText,omitempty"`
}

// Field pairs a field name with its resolved configuration.
type Field struct {
	Name string
	FieldConfig
}

var defaultInputTypes = map[string]string{
	validation.FieldName:  "text",
	validation.FieldEmail: "email",
	validation.FieldAge:   "number",
}

// Field resolves the configuration for name, filling the label and input type
// when the document leaves them empty.
func (f Form) Field(name string) FieldConfig {
	cfg := f.Fields[name]
	if strings.TrimSpace(cfg.Label) == "" {
		cfg.Label = name
	}
	if strings.TrimSpace(cfg.InputType) == "" {
		cfg.InputType = defaultInputTypes[name]
		if cfg.InputType == "" {
			cfg.InputType = "text"
		}
	}
	return cfg
}

// OrderedFields returns the form fields in declaration order.
func (f Form) OrderedFields() []Field {
	names := validation.Fields()
	out := make([]Field, 0, len(names))
	for _, name := range names {
		out = append(out, Field{Name: name, FieldConfig: f.Field(name)})
	}
	return out
}

// SchemaOptions converts the message overrides into validation options.
func (f Form) SchemaOptions() []validation.Option {
	if len(f.Messages) == 0 {
		return nil
	}
	return []validation.Option{validation.WithMessages(f.Messages)}
}
