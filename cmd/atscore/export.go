package main

import (
	"time"

	"github.com/spf13/cobra"

	"ats-backend/internal/analyses"
	"ats-backend/internal/ats"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the export envelope for a résumé record",
	Long:  "Evaluates the record and writes {resumeAnalysis, atsScore, timestamp}, the same document the API serves for a completed analysis.",
	RunE:  runExport,
}

var (
	exportInput        string
	exportOutput       string
	exportKeywordMatch string
	exportTimestamp    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to ResumeRecord JSON file, or - for stdin (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Write the envelope to this file instead of stdout")
	exportCmd.Flags().StringVar(&exportKeywordMatch, "keyword-match", "substring", "Keyword matching mode: substring or word")
	exportCmd.Flags().StringVar(&exportTimestamp, "at", "", "RFC 3339 timestamp to stamp the envelope with (default now)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	mode, err := ats.ParseKeywordMatch(exportKeywordMatch)
	if err != nil {
		return err
	}
	at := time.Now()
	if exportTimestamp != "" {
		at, err = time.Parse(time.RFC3339, exportTimestamp)
		if err != nil {
			return err
		}
	}
	record, err := readRecord(cmd, exportInput)
	if err != nil {
		return err
	}
	report := ats.NewEvaluator(ats.WithKeywordMatch(mode)).Evaluate(record)
	return writeJSON(cmd, exportOutput, analyses.BuildExport(record, report, at))
}
