// Package orchestrator wires the UI hints, the validation schema and the
// renderer registry together so callers can build controllers and render
// their snapshots from a single value.
package orchestrator
