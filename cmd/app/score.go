package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"evamed-backend/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score <answers.json>",
	Short: "Score an answer file and print the result as JSON",
	Long: `Score an answer file offline. The file holds a JSON array of
{"question_id": N, "answer_value": M} objects.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBank(cmd)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var answers []scoring.Answer
		if err := json.Unmarshal(data, &answers); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		res, err := scoring.NewEngine(b).Compute(answers)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}
