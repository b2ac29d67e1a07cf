// Package validation describes the constraints of the three-field contact
// form (fieldName, email, age) and turns raw text input into either a typed
// Record or an ordered list of field-level issues. Coercion of the age field
// happens before any range check, and every field is evaluated on each call so
// callers can surface all failures at once. The package holds no state; a
// Schema is safe for concurrent use.
package validation
