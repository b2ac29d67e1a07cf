package submission

// Status is the controller's state machine position.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

func (s Status) String() string {
	return string(s)
}

// Event names the mutation that produced a Snapshot.
type Event string

const (
	// EventInit marks the snapshot of a freshly constructed controller.
	EventInit Event = "init"
	// EventEdit follows a field edit.
	EventEdit Event = "edit"
	// EventInvalid follows a submit attempt rejected by local validation.
	EventInvalid Event = "invalid"
	// EventSubmit follows the transition into StatusSubmitting.
	EventSubmit Event = "submit"
	// EventResolve follows a successful submission.
	EventResolve Event = "resolve"
	// EventReject follows a rejected submission.
	EventReject Event = "reject"
	// EventReset follows an explicit reset.
	EventReset Event = "reset"
)
