package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ats-backend/internal/analyses/recommendations"
	"ats-backend/internal/ats"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Evaluate a résumé record and print its score report",
	RunE:  runScore,
}

var (
	scoreInput        string
	scoreOutput       string
	scoreKeywordMatch string
	scoreActionItems  bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "in", "i", "", "Path to ResumeRecord JSON file, or - for stdin (required)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Write the report to this file instead of stdout")
	scoreCmd.Flags().StringVar(&scoreKeywordMatch, "keyword-match", "substring", "Keyword matching mode: substring or word")
	scoreCmd.Flags().BoolVar(&scoreActionItems, "action-items", false, "Include prioritized action items")

	rootCmd.AddCommand(scoreCmd)
}

type scoreOutputWithItems struct {
	Report      ats.ScoreReport                  `json:"report"`
	ActionItems []recommendations.Recommendation `json:"actionItems"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	mode, err := ats.ParseKeywordMatch(scoreKeywordMatch)
	if err != nil {
		return fmt.Errorf("--keyword-match: %w", err)
	}
	record, err := readRecord(cmd, scoreInput)
	if err != nil {
		return err
	}

	report := ats.NewEvaluator(ats.WithKeywordMatch(mode)).Evaluate(record)
	if scoreActionItems {
		return writeJSON(cmd, scoreOutput, scoreOutputWithItems{
			Report:      report,
			ActionItems: recommendations.FromReport(report),
		})
	}
	return writeJSON(cmd, scoreOutput, report)
}
