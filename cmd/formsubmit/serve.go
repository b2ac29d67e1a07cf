package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsubmit/internal/config"
	"github.com/goliatone/go-formsubmit/internal/devserver"
	"github.com/goliatone/go-formsubmit/pkg/orchestrator"
	"github.com/goliatone/go-formsubmit/pkg/renderers/html"
)

var demoDelay time.Duration

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the form on a local HTTP server",
	Long: `Serve the form page. Each browser gets its own form state, kept in
memory for the life of the process. Without submit.endpoint records go to the
built-in demo backend, which rejects the field name "error".`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindFlags(cmd, map[string]string{
			"addr":     config.KeyServerAddr,
			"endpoint": config.KeySubmitEndpoint,
		})
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", config.Defaults().Server.Addr, "listen address")
	serveCmd.Flags().String("endpoint", "", "submit records to this URL instead of the demo backend")
	serveCmd.Flags().DurationVar(&demoDelay, "demo-delay", 0, "artificial latency of the demo backend")
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	orch, err := newOrchestrator(cfg, orchestrator.WithStylesheetURL("/assets/"+html.StylesheetName))
	if err != nil {
		return err
	}
	submit, err := remoteSubmitFunc(cfg)
	if err != nil {
		return err
	}

	srv, err := devserver.New(devserver.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		SessionTTL:   cfg.Server.SessionTTL,
		MaxSessions:  cfg.Server.MaxSessions,
	},
		devserver.WithOrchestrator(orch),
		devserver.WithSubmitFunc(submit),
		devserver.WithDemoDelay(demoDelay),
	)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}
