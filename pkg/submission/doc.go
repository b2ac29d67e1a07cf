// Package submission implements the headless submission controller for the
// contact form. A Controller owns the status state machine (idle, submitting,
// success, error), the dirty-field counter, the surfaced error list, and the
// current field values. It validates input with a validation.Schema, calls an
// injected SubmitFunc for valid records, and publishes an immutable Snapshot
// to listeners after every mutation, in mutation order.
//
// Only one submission may be in flight at a time; a second attempt returns
// ErrSubmissionInFlight without touching state. The controller never cancels
// or times out a submission itself: the context passed to Submit flows into
// the SubmitFunc, which owns any deadline.
package submission
