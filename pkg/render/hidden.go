package render

import "strings"

// DefaultCSRFField is the form key the anti-forgery token posts under when
// CSRF.Field is blank.
const DefaultCSRFField = "_csrf"

// CSRF carries a session's anti-forgery token into the page.
type CSRF struct {
	Field string
	Token string
}

// HiddenField is a hidden input emitted inside the page's submit and reset
// forms.
type HiddenField struct {
	Name  string
	Value string
}

// HiddenInputs lists the hidden inputs the page needs for o. Without a token
// there are none.
func (o RenderOptions) HiddenInputs() []HiddenField {
	token := strings.TrimSpace(o.CSRF.Token)
	if token == "" {
		return nil
	}
	name := strings.TrimSpace(o.CSRF.Field)
	if name == "" {
		name = DefaultCSRFField
	}
	return []HiddenField{{Name: name, Value: token}}
}
