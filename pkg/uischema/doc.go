// Package uischema loads the presentation hints of the contact form: title,
// per-field labels, input types, placeholders and help text, button labels,
// feedback copy, and optional overrides for validation messages. Documents
// may be JSON or YAML; a default document is embedded so renderers work
// without any configuration.
package uischema
