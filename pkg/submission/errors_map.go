package submission

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// ErrorMapping splits a rejection payload into field-level and form-level
// messages keyed by the form's field names.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeMessages concatenates and normalises message slices, trimming
// whitespace and removing duplicates while preserving order.
func MergeMessages(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises server error payloads keyed by JSON pointer or
// dotted paths onto the form fields. Unknown paths are treated as form-level
// errors so messages are not lost.
func MapErrorPayload(payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	// Sorted so form-level messages come out in a deterministic order.
	for _, rawPath := range sortedKeys(payload) {
		messages := normalizeMessages(payload[rawPath])
		if len(messages) == 0 {
			continue
		}

		field, formLevel := mapErrorPath(rawPath)
		if formLevel {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[field] = MergeMessages(mapping.Fields[field], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// rejectionDetails extracts the error list and field errors carried by a
// submit failure. Flat messages are kept as carried, in order, dropping only
// blank entries. Field-keyed messages are normalised and appended unless the
// flat list already shows them. Errors without any message yield
// UnknownErrorMessage.
func rejectionDetails(err error) ([]string, map[string]string) {
	var (
		messages    []string
		fieldErrors map[string]string
	)

	var rejection Rejection
	if errors.As(err, &rejection) {
		messages = carriedMessages(rejection.ValidationErrors())
	}

	var fieldRejection FieldRejection
	if errors.As(err, &fieldRejection) {
		mapping := MapErrorPayload(fieldRejection.FieldErrors())
		extras := mapping.Form
		for _, field := range validation.Fields() {
			fieldMessages := mapping.Fields[field]
			if len(fieldMessages) == 0 {
				continue
			}
			if fieldErrors == nil {
				fieldErrors = make(map[string]string, len(mapping.Fields))
			}
			fieldErrors[field] = fieldMessages[0]
			extras = MergeMessages(extras, fieldMessages...)
		}
		messages = appendMissing(messages, extras)
	}

	if len(messages) == 0 {
		messages = []string{UnknownErrorMessage}
	}
	return messages, fieldErrors
}

func carriedMessages(messages []string) []string {
	var out []string
	for _, message := range messages {
		if strings.TrimSpace(message) == "" {
			continue
		}
		out = append(out, message)
	}
	return out
}

func appendMissing(messages, extras []string) []string {
	shown := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		shown[strings.TrimSpace(message)] = struct{}{}
	}
	for _, extra := range extras {
		if _, ok := shown[extra]; ok {
			continue
		}
		shown[extra] = struct{}{}
		messages = append(messages, extra)
	}
	return messages
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	for _, variant := range buildSegmentVariants(segments) {
		if validation.IsField(variant[0]) {
			return variant[0], false
		}
	}
	return "", true
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func buildSegmentVariants(segments []string) [][]string {
	var variants [][]string
	seen := make(map[string]struct{}, 4)

	appendVariant := func(candidate []string) {
		if len(candidate) == 0 {
			return
		}
		key := strings.Join(candidate, ".")
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, append([]string(nil), candidate...))
	}

	appendVariant(segments)

	noWrappers := dropWrapperSegments(segments)
	appendVariant(noWrappers)
	appendVariant(stripNumericSegments(segments))
	appendVariant(stripNumericSegments(noWrappers))

	return variants
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
		"properties": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	if len(segments) == 0 {
		return segments
	}

	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

func sortedKeys(payload map[string][]string) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
