// Package main provides atscore, a command line front end to the ATS evaluator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "atscore",
	Short:         "Score résumé records for ATS compatibility",
	Long:          "atscore evaluates structured résumé records offline, validates them against the record schema, extracts text from uploaded files and writes export envelopes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
