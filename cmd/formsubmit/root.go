package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formsubmit/internal/config"
	"github.com/goliatone/go-formsubmit/pkg/orchestrator"
	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/transport/httpsubmit"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "formsubmit",
	Short: "Validate and submit a three field form",
	Long: `formsubmit validates a name, an email address and an age, submits the
record to a backend and reports the outcome. It can serve the form in a
browser, walk through it in the terminal, or validate values offline.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd.ErrOrStderr())
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.formsubmit.yaml or $HOME/.formsubmit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("ui-schema", "", "UI hints file merged over the embedded defaults")
	rootCmd.PersistentFlags().Int("min-age", config.Defaults().Validation.MinAge, "minimum accepted age")

	_ = viper.BindPFlag(config.KeyUISchema, rootCmd.PersistentFlags().Lookup("ui-schema"))
	_ = viper.BindPFlag(config.KeyMinAge, rootCmd.PersistentFlags().Lookup("min-age"))
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".formsubmit")
	}

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		slog.Error("failed to read config file", "file", cfgFile, "error", err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, verbose, w)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func newLogger(cfg config.LogConfig, verbose bool, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	if verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})), nil
}

// bindFlags binds command local flags to config keys. Flags shared between
// subcommands are bound when the command runs so the last registration does
// not win.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

func loadConfig() (config.Config, error) {
	return config.Decode(viper.GetViper())
}

// newOrchestrator assembles the form, schema and renderers from cfg.
func newOrchestrator(cfg config.Config, options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	base := []orchestrator.Option{
		orchestrator.WithLogger(slog.Default()),
		orchestrator.WithUISchemaFile(cfg.UI.Schema),
		orchestrator.WithSchemaOptions(validation.WithMinAge(cfg.Validation.MinAge)),
	}
	orch := orchestrator.New(append(base, options...)...)
	if err := orch.Err(); err != nil {
		return nil, fmt.Errorf("failed to load UI hints: %w", err)
	}
	return orch, nil
}

// remoteSubmitFunc returns the HTTP transport for cfg, or nil when no
// endpoint is configured.
func remoteSubmitFunc(cfg config.Config) (submission.SubmitFunc, error) {
	if cfg.Submit.Endpoint == "" {
		return nil, nil
	}
	client, err := httpsubmit.New(cfg.Submit.Endpoint, httpsubmit.WithTimeout(cfg.Submit.Timeout))
	if err != nil {
		return nil, err
	}
	slog.Debug("submitting over HTTP", "endpoint", client.Endpoint())
	return client.Func(), nil
}
