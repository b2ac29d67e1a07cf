package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsubmit/internal/config"
	"github.com/goliatone/go-formsubmit/internal/devserver"
	"github.com/goliatone/go-formsubmit/pkg/renderers/tui"
)

var (
	fillChecks bool
	fillJSON   bool
	// fillDriver replaces the survey prompts when set.
	fillDriver tui.PromptDriver
)

// fillCmd represents the fill command
var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill in and submit the form in the terminal",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindFlags(cmd, map[string]string{"endpoint": config.KeySubmitEndpoint})
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFill(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().String("endpoint", "", "submit records to this URL instead of the demo backend")
	fillCmd.Flags().BoolVar(&fillChecks, "check", false, "re-prompt answers that fail validation")
	fillCmd.Flags().BoolVar(&fillJSON, "json", false, "print the final state as JSON")
}

func runFill(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	submit, err := remoteSubmitFunc(cfg)
	if err != nil {
		return err
	}
	if submit == nil {
		submit = devserver.DemoBackend{}.Submit
	}

	driver := fillDriver
	if driver == nil {
		driver = tui.NewSurveyDriver(out)
	}
	options := []tui.Option{tui.WithPromptDriver(driver)}
	if fillChecks {
		options = append(options, tui.WithFieldChecks(orch.Schema()))
	}

	snap, err := tui.New(options...).Run(ctx, orch.NewController(submit), orch.Form())
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	if fillJSON {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return nil
}
