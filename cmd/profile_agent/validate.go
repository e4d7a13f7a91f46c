package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/profile-architect/internal/observability"
	"github.com/jonathan/profile-architect/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a profile JSON file against the generated profile schema",
	Long: `Validates a profile document and prints every field error. By default the embedded
generated profile schema is used; --schema points at another JSON Schema file instead.`,
	RunE: runValidate,
}

var (
	validateIn     string
	validateSchema string
)

func init() {
	validateCmd.Flags().StringVarP(&validateIn, "in", "i", "", "Path to the JSON file to validate (required)")
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Path to a JSON Schema file (defaults to the embedded profile schema)")

	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if validateSchema != "" {
		err = schemas.ValidateJSON(validateSchema, validateIn)
	} else {
		err = validateEmbedded(validateIn)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	var verr *schemas.ValidationError
	switch {
	case err == nil:
		printer.PrintSchemaErrors(nil)
		return nil
	case errors.As(err, &verr):
		printer.PrintSchemaErrors(verr.Errors)
		return fmt.Errorf("%s does not match the schema (%d errors)", validateIn, len(verr.Errors))
	default:
		return err
	}
}

func validateEmbedded(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%s is not valid JSON: %w", path, err)
	}
	return schemas.ValidateProfile(decoded)
}
