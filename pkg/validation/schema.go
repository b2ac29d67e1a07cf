package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DefaultMinAge is the youngest accepted age.
const DefaultMinAge = 18

var defaultMessages = map[string]string{
	MessageKey(FieldName, CodeRequired):       "Field name is required",
	MessageKey(FieldEmail, CodeRequired):      "Email is required",
	MessageKey(FieldEmail, CodeInvalidFormat): "Invalid email address",
	MessageKey(FieldAge, CodeNotInteger):      "Age must be a positive integer",
	MessageKey(FieldAge, CodeTooSmall):        "Age must be at least %d",
}

// Option configures a Schema.
type Option func(*Schema)

// WithMinAge overrides the minimum accepted age. Values below 1 are ignored
// since the age must stay a positive integer.
func WithMinAge(age int) Option {
	return func(s *Schema) {
		if age > 0 {
			s.minAge = age
		}
	}
}

// WithMessages overrides issue messages keyed by MessageKey (for example
// "email.invalid_format"). The too_small message may contain a single %d verb
// that receives the minimum age.
func WithMessages(messages map[string]string) Option {
	return func(s *Schema) {
		for key, msg := range messages {
			key = strings.TrimSpace(key)
			msg = strings.TrimSpace(msg)
			if key == "" || msg == "" {
				continue
			}
			s.messages[key] = msg
		}
	}
}

// Schema validates Input values. The zero value is not usable; construct with
// NewSchema.
type Schema struct {
	validate *validator.Validate
	minAge   int
	messages map[string]string
}

// NewSchema constructs a Schema with the default constraints.
func NewSchema(options ...Option) *Schema {
	s := &Schema{
		validate: validator.New(),
		minAge:   DefaultMinAge,
		messages: make(map[string]string, len(defaultMessages)),
	}
	for key, msg := range defaultMessages {
		s.messages[key] = msg
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

var defaultSchema = NewSchema()

// Validate checks in against the default schema.
func Validate(in Input) Result {
	return defaultSchema.Validate(in)
}

// MinAge reports the configured minimum age.
func (s *Schema) MinAge() int {
	return s.minAge
}

// Validate evaluates every field in declaration order and reports at most one
// issue per field: the first constraint that failed.
func (s *Schema) Validate(in Input) Result {
	var result Result

	if code, ok := s.checkFieldName(in.FieldName); ok {
		result.Record.FieldName = in.FieldName
	} else {
		result.Issues = append(result.Issues, s.issue(FieldName, code))
	}

	if code, ok := s.checkEmail(in.Email); ok {
		result.Record.Email = in.Email
	} else {
		result.Issues = append(result.Issues, s.issue(FieldEmail, code))
	}

	if age, code, ok := s.checkAge(in.Age); ok {
		result.Record.Age = age
	} else {
		result.Issues = append(result.Issues, s.issue(FieldAge, code))
	}

	if len(result.Issues) > 0 {
		result.Record = Record{}
	}
	return result
}

// CheckField evaluates a single field. It reports the issue and false when
// value fails, and ErrUnknownField for names outside the schema.
func (s *Schema) CheckField(name, value string) (Issue, bool, error) {
	var code Code
	var ok bool
	switch name {
	case FieldName:
		code, ok = s.checkFieldName(value)
	case FieldEmail:
		code, ok = s.checkEmail(value)
	case FieldAge:
		_, code, ok = s.checkAge(value)
	default:
		return Issue{}, false, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if ok {
		return Issue{}, true, nil
	}
	return s.issue(name, code), false, nil
}

func (s *Schema) checkFieldName(value string) (Code, bool) {
	if err := s.validate.Var(value, "required"); err != nil {
		return CodeRequired, false
	}
	return "", true
}

func (s *Schema) checkEmail(value string) (Code, bool) {
	if err := s.validate.Var(value, "required"); err != nil {
		return CodeRequired, false
	}
	if !isEmail(s.validate, value) {
		return CodeInvalidFormat, false
	}
	return "", true
}

func (s *Schema) checkAge(value string) (int, Code, bool) {
	age, err := ParseLeadingInt(value)
	if err != nil {
		return 0, CodeNotInteger, false
	}
	if err := s.validate.Var(age, "gt=0"); err != nil {
		return 0, CodeNotInteger, false
	}
	if err := s.validate.Var(age, fmt.Sprintf("gte=%d", s.minAge)); err != nil {
		return 0, CodeTooSmall, false
	}
	return age, "", true
}

func (s *Schema) issue(field string, code Code) Issue {
	msg := s.messages[MessageKey(field, code)]
	if field == FieldAge && code == CodeTooSmall && strings.Contains(msg, "%d") {
		msg = fmt.Sprintf(msg, s.minAge)
	}
	if msg == "" {
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return Issue{Field: field, Code: code, Message: msg}
}

// isEmail accepts local@domain addresses that pass the validator email rule,
// carry no whitespace, and have at least one dot in the domain.
func isEmail(v *validator.Validate, value string) bool {
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return false
	}
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 {
		return false
	}
	domain := value[at+1:]
	dot := strings.Index(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return v.Var(value, "email") == nil
}
