package render

// RenderOptions describe per-request data renderers use without touching the
// controller state.
type RenderOptions struct {
	// Action is the URL the form posts to. Renderers default to "/submit".
	Action string
	// ResetAction is the URL the reset button posts to. Renderers default to
	// "/reset".
	ResetAction string
	// CSRF is echoed as a hidden input in both forms when its token is set.
	CSRF CSRF
}
