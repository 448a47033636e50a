package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ats-backend/internal/ats"
	"ats-backend/internal/schemas"
)

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--in is required")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func readRecord(cmd *cobra.Command, path string) (*ats.ResumeRecord, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	return schemas.DecodeResumeRecord(data)
}

// writeJSON writes v indented to path, or to the command output when path is empty.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	payload = append(payload, '\n')
	if path == "" {
		_, err = cmd.OutOrStdout().Write(payload)
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
