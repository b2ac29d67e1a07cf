package validation

import "strings"

// Field names used in issues, field error maps, and wire payloads.
const (
	FieldName  = "fieldName"
	FieldEmail = "email"
	FieldAge   = "age"
)

// Fields lists the form fields in declaration order.
func Fields() []string {
	return []string{FieldName, FieldEmail, FieldAge}
}

// IsField reports whether name is one of the form fields.
func IsField(name string) bool {
	switch name {
	case FieldName, FieldEmail, FieldAge:
		return true
	default:
		return false
	}
}

// Code identifies the constraint an issue failed.
type Code string

const (
	CodeRequired      Code = "required"
	CodeInvalidFormat Code = "invalid_format"
	CodeNotInteger    Code = "not_integer"
	CodeTooSmall      Code = "too_small"
)

// Input carries the raw, uncoerced values exactly as the user typed them.
type Input struct {
	FieldName string `json:"fieldName" mapstructure:"fieldName"`
	Email     string `json:"email" mapstructure:"email"`
	Age       string `json:"age" mapstructure:"age"`
}

// Get returns the raw value for the named field.
func (in Input) Get(name string) (string, bool) {
	switch name {
	case FieldName:
		return in.FieldName, true
	case FieldEmail:
		return in.Email, true
	case FieldAge:
		return in.Age, true
	default:
		return "", false
	}
}

// With returns a copy of in with the named field replaced. Unknown names leave
// the input unchanged and report false.
func (in Input) With(name, value string) (Input, bool) {
	switch name {
	case FieldName:
		in.FieldName = value
	case FieldEmail:
		in.Email = value
	case FieldAge:
		in.Age = value
	default:
		return in, false
	}
	return in, true
}

// IsZero reports whether every field is empty.
func (in Input) IsZero() bool {
	return in == Input{}
}

// Record is the coerced, typed form payload handed to submit handlers.
type Record struct {
	FieldName string `json:"fieldName"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
}

// Issue is a single field-level validation failure.
type Issue struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Result holds the outcome of Validate. Record is only meaningful when Valid
// reports true.
type Result struct {
	Record Record  `json:"record"`
	Issues []Issue `json:"issues,omitempty"`
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Issues) == 0
}

// Messages returns the issue messages in field order.
func (r Result) Messages() []string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Message)
	}
	return out
}

// FieldErrors indexes issue messages by field name.
func (r Result) FieldErrors() map[string]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = issue.Message
	}
	return out
}

// IssueFor returns the issue reported for field, if any.
func (r Result) IssueFor(field string) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Field == field {
			return issue, true
		}
	}
	return Issue{}, false
}

// MessageKey builds the key used to override a message, e.g. "email.required".
func MessageKey(field string, code Code) string {
	return strings.TrimSpace(field) + "." + string(code)
}
