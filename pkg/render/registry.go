package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnknownRenderer is returned when no renderer serves a format.
	ErrUnknownRenderer = errors.New("render: unknown renderer")
	// ErrDuplicateRenderer is returned when two renderers claim one format.
	ErrDuplicateRenderer = errors.New("render: renderer already registered")
	// ErrUnnamedRenderer is returned for nil renderers or blank names.
	ErrUnnamedRenderer = errors.New("render: renderer needs a name")
)

// Registry maps output formats, as named by the dev server's ?format query
// and the CLI, to renderers. Format names are matched case-insensitively.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
}

// NewRegistry returns a registry holding renderers. Registration failures are
// joined into the returned error; the registry still holds every renderer that
// registered cleanly.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Renderer, len(renderers))}
	var errs []error
	for _, renderer := range renderers {
		errs = append(errs, r.Register(renderer))
	}
	return r, errors.Join(errs...)
}

// Register adds renderer under its Name().
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return ErrUnnamedRenderer
	}
	name := formatKey(renderer.Name())
	if name == "" {
		return ErrUnnamedRenderer
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRenderer, name)
	}
	r.byName[name] = renderer
	return nil
}

// Get returns the renderer for format.
func (r *Registry) Get(format string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.byName[formatKey(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, format)
	}
	return renderer, nil
}

// Has reports whether format is served.
func (r *Registry) Has(format string) bool {
	_, err := r.Get(format)
	return err == nil
}

// List returns the served formats, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
