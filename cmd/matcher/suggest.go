package main

import (
	"fmt"
	"os"

	"recruit-matcher/internal/models"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:       "suggest (candidate|opportunity) <id>",
	Short:     "Score one record against every active counterpart without storing anything",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"candidate", "opportunity"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, id := args[0], args[1]
		if kind != "candidate" && kind != "opportunity" {
			return fmt.Errorf("first argument must be candidate or opportunity, got %q", kind)
		}

		svc, err := newServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		var suggestions []models.Suggestion
		if kind == "candidate" {
			suggestions, err = svc.engine.FindMatchesForCandidate(cmd.Context(), id)
		} else {
			suggestions, err = svc.engine.FindMatchesForOpportunity(cmd.Context(), id)
		}
		if err != nil {
			return err
		}

		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(suggestions) > limit {
			suggestions = suggestions[:limit]
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, suggestions)
		}
		return writeSuggestions(os.Stdout, suggestions)
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().IntP("limit", "n", 20, "maximum rows, 0 for all")
	suggestCmd.Flags().Bool("json", false, "print JSON instead of a table")
}
