package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsubmit/pkg/validation"
)

type documentFile struct {
	Form     FormConfig             `json:"form" yaml:"form"`
	Fields   map[string]FieldConfig `json:"fields" yaml:"fields"`
	Messages map[string]string      `json:"messages" yaml:"messages"`
}

// Default returns the embedded document.
func Default() Form {
	form, err := LoadFS(EmbeddedFS(), DefaultFile)
	if err != nil {
		// The bundled document is covered by tests; failing here means the
		// binary was built from a broken tree.
		panic(err)
	}
	return form
}

// LoadFile reads a JSON or YAML document from disk. Fields and form copy
// omitted by the document fall back to the embedded defaults.
func LoadFile(path string) (Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Form{}, fmt.Errorf("uischema: read %s: %w", path, err)
	}
	return Load(data, path)
}

// LoadFS reads name from fsys.
func LoadFS(fsys fs.FS, name string) (Form, error) {
	if fsys == nil {
		return Form{}, fmt.Errorf("uischema: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Form{}, fmt.Errorf("uischema: read %s: %w", name, err)
	}
	return parse(data, name)
}

// Load parses data and overlays it on the embedded defaults.
func Load(data []byte, source string) (Form, error) {
	form, err := parse(data, source)
	if err != nil {
		return Form{}, err
	}
	return Merge(Default(), form), nil
}

// Merge overlays non-empty values from override onto base.
func Merge(base, override Form) Form {
	out := Form{
		Source:   override.Source,
		Config:   mergeFormConfig(base.Config, override.Config),
		Fields:   make(map[string]FieldConfig, len(base.Fields)),
		Messages: make(map[string]string, len(base.Messages)+len(override.Messages)),
	}
	if out.Source == "" {
		out.Source = base.Source
	}
	for name, cfg := range base.Fields {
		out.Fields[name] = cfg
	}
	for name, cfg := range override.Fields {
		out.Fields[name] = mergeFieldConfig(out.Fields[name], cfg)
	}
	for key, msg := range base.Messages {
		out.Messages[key] = msg
	}
	for key, msg := range override.Messages {
		out.Messages[key] = msg
	}
	if len(out.Messages) == 0 {
		out.Messages = nil
	}
	return out
}

func parse(data []byte, source string) (Form, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return Form{}, fmt.Errorf("uischema: file %s is empty", source)
	}

	if err := decode(data, source, &doc); err != nil {
		return Form{}, err
	}

	form := Form{
		Source:   source,
		Config:   doc.Form,
		Fields:   make(map[string]FieldConfig, len(doc.Fields)),
		Messages: make(map[string]string, len(doc.Messages)),
	}
	for key, cfg := range doc.Fields {
		name := strings.TrimSpace(key)
		if !validation.IsField(name) {
			return Form{}, fmt.Errorf("uischema: file %s configures unknown field %q", source, key)
		}
		form.Fields[name] = cfg
	}
	for key, msg := range doc.Messages {
		trimmed := strings.TrimSpace(key)
		field, _, ok := strings.Cut(trimmed, ".")
		if !ok || !validation.IsField(field) {
			return Form{}, fmt.Errorf("uischema: file %s has message key %q, expected <field>.<code>", source, key)
		}
		form.Messages[trimmed] = msg
	}
	if len(form.Messages) == 0 {
		form.Messages = nil
	}
	return form, nil
}

func decode(data []byte, source string, doc *documentFile) error {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("uischema: parse %s: %w", source, err)
		}
		return nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("uischema: parse %s: %w", source, err)
		}
		return nil
	}

	if err := json.Unmarshal(data, doc); err == nil {
		return nil
	}
	if err := yaml.Unmarshal(data, doc); err == nil {
		return nil
	}
	return fmt.Errorf("uischema: parse %s: invalid JSON or YAML", source)
}

func mergeFormConfig(base, override FormConfig) FormConfig {
	out := base
	pick(&out.Title, override.Title)
	pick(&out.Subtitle, override.Subtitle)
	pick(&out.SubmitLabel, override.SubmitLabel)
	pick(&out.ResetLabel, override.ResetLabel)
	pick(&out.SuccessMessage, override.SuccessMessage)
	pick(&out.ErrorMessage, override.ErrorMessage)
	pick(&out.DialogTitle, override.DialogTitle)
	pick(&out.DirtyLabel, override.DirtyLabel)
	return out
}

func mergeFieldConfig(base, override FieldConfig) FieldConfig {
	out := base
	pick(&out.Label, override.Label)
	pick(&out.InputType, override.InputType)
	pick(&out.Placeholder, override.Placeholder)
	pick(&out.HelpText, override.HelpText)
	return out
}

func pick(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}
