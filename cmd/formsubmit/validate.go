package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formsubmit/pkg/validation"
)

var errInvalidInput = errors.New("input failed validation")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate form values without submitting them",
	Long: `Validate checks a name, email and age against the form rules and prints
the coerced record or the list of problems. Values come from flags or from a
YAML or JSON file; flags override file values.`,
	Example: `  formsubmit validate --name Ada --email ada@example.com --age 36
  formsubmit validate --file contact.yaml --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		orch, err := newOrchestrator(cfg)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("file")
		in, err := readInput(path)
		if err != nil {
			return err
		}
		for flag, field := range map[string]string{
			"name":  validation.FieldName,
			"email": validation.FieldEmail,
			"age":   validation.FieldAge,
		} {
			if cmd.Flags().Changed(flag) {
				value, _ := cmd.Flags().GetString(flag)
				in, _ = in.With(field, value)
			}
		}

		format, _ := cmd.Flags().GetString("format")
		result := orch.Schema().Validate(in)
		if err := writeResult(cmd.OutOrStdout(), result, format); err != nil {
			return err
		}
		if !result.Valid() {
			return errInvalidInput
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("name", "", "field name value")
	validateCmd.Flags().String("email", "", "email value")
	validateCmd.Flags().String("age", "", "age value, as typed")
	validateCmd.Flags().StringP("file", "f", "", "YAML or JSON file holding fieldName, email and age")
	validateCmd.Flags().String("format", "text", "output format: text or json")
}

// readInput loads raw values from path. An empty path yields an empty input.
func readInput(path string) (validation.Input, error) {
	var in validation.Input
	if path == "" {
		return in, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return in, fmt.Errorf("read input %s: %w", path, err)
	}
	// Ages arrive as YAML numbers as often as strings.
	for _, field := range validation.Fields() {
		if v.IsSet(field) {
			in, _ = in.With(field, v.GetString(field))
		}
	}
	return in, nil
}

func writeResult(w io.Writer, result validation.Result, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text", "":
		if result.Valid() {
			r := result.Record
			_, err := fmt.Fprintf(w, "valid\n  fieldName: %s\n  email: %s\n  age: %d\n", r.FieldName, r.Email, r.Age)
			return err
		}
		if _, err := fmt.Fprintf(w, "invalid (%d issues)\n", len(result.Issues)); err != nil {
			return err
		}
		for _, issue := range result.Issues {
			if _, err := fmt.Fprintf(w, "  %s: %s [%s]\n", issue.Field, issue.Message, issue.Code); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
