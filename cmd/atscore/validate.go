package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ats-backend/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a résumé record against the record schema",
	RunE:  runValidate,
}

var validateInput string

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to ResumeRecord JSON file, or - for stdin (required)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd, validateInput)
	if err != nil {
		return err
	}
	if _, err := schemas.DecodeResumeRecord(data); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Validation failed:")
			for _, fe := range validationErr.Errors {
				fmt.Fprintf(out, "  %s: %s\n", fe.Field, fe.Message)
			}
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}
