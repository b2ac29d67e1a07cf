// Package render turns controller snapshots into a presentation-neutral View:
// the status icon, the dirty-field counter label, per-field state, the
// snackbar shown after a submission settles, and the dialog listing errors.
// Messages are sanitised to plain text before they reach a View because
// rejection messages originate from remote services. Concrete renderers
// (HTML, terminal) consume the View and register themselves in a Registry.
package render
