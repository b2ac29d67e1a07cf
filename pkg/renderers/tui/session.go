package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/uischema"
)

// Follow-up choices offered once a submission settles.
const (
	ActionRetry = "Retry"
	ActionReset = "Reset"
	ActionAgain = "Fill again"
	ActionQuit  = "Quit"
)

// Run drives ctrl interactively: every field is prompted (pre-filled with
// the current value), the form is submitted, the outcome printed, and the
// user picks what happens next. Run returns the snapshot current when the
// user quits.
func (r *Renderer) Run(ctx context.Context, ctrl *submission.Controller, form uischema.Form) (submission.Snapshot, error) {
	if ctrl == nil {
		return submission.Snapshot{}, ErrNoController
	}
	if ctx == nil {
		ctx = context.Background()
	}

	unsubscribe := ctrl.Subscribe(func(snap submission.Snapshot) {
		if snap.Event == submission.EventSubmit {
			_ = r.driver.Info(ctx, r.theme.InfoPrefix+"Submitting...")
		}
	})
	defer unsubscribe()

	for {
		if err := r.promptFields(ctx, ctrl, form); err != nil {
			return ctrl.Snapshot(), err
		}

		if err := ctrl.SubmitCurrent(ctx); errors.Is(err, submission.ErrSubmissionInFlight) {
			return ctrl.Snapshot(), err
		}

		snap := ctrl.Snapshot()
		if err := r.printSnapshot(ctx, snap, form); err != nil {
			return snap, err
		}

		options := []string{ActionRetry, ActionReset, ActionQuit}
		if snap.Status == submission.StatusSuccess {
			options = []string{ActionAgain, ActionQuit}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: "What next?",
			Options: options,
		})
		if err != nil {
			return snap, err
		}
		if idx < 0 || idx >= len(options) {
			return snap, fmt.Errorf("tui: invalid choice %d", idx)
		}

		switch options[idx] {
		case ActionQuit:
			return ctrl.Snapshot(), nil
		case ActionReset, ActionAgain:
			ctrl.Reset()
		case ActionRetry:
		}
	}
}

func (r *Renderer) promptFields(ctx context.Context, ctrl *submission.Controller, form uischema.Form) error {
	values := ctrl.Values()
	errs := ctrl.FieldErrors()

	for _, field := range form.OrderedFields() {
		current, _ := values.Get(field.Name)
		cfg := InputConfig{
			Message: r.theme.PromptPrefix + field.Label,
			Default: current,
			Help:    field.HelpText,
		}
		if msg := render.SanitizeMessage(errs[field.Name]); msg != "" {
			cfg.Help = msg
		}
		if schema := r.fieldChecks; schema != nil {
			name := field.Name
			cfg.Validator = func(answer string) error {
				issue, ok, err := schema.CheckField(name, answer)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New(issue.Message)
				}
				return nil
			}
		}

		answer, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		if err := ctrl.SetField(field.Name, answer); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) printSnapshot(ctx context.Context, snap submission.Snapshot, form uischema.Form) error {
	out, err := r.Render(ctx, render.BuildView(snap, form), render.RenderOptions{})
	if err != nil {
		return err
	}
	return r.driver.Info(ctx, string(out))
}
