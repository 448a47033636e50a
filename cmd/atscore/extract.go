package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"

	"ats-backend/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the text extracted from a PDF, DOCX or plain text résumé",
	RunE:  runExtract,
}

var extractInput string

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "in", "i", "", "Path to the résumé file (required)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd, extractInput)
	if err != nil {
		return err
	}
	mimeType := http.DetectContentType(data)
	text, err := extract.ExtractTextFromBytes(cmd.Context(), data, mimeType, filepath.Base(extractInput))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
