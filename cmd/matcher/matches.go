package main

import (
	"fmt"
	"os"

	"recruit-matcher/internal/models"

	"github.com/spf13/cobra"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List stored matches, best first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := matchFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		svc, err := newServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		matches, err := svc.engine.ListPersistedMatches(cmd.Context(), filter)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, matches)
		}
		return writeMatches(os.Stdout, matches)
	},
}

func matchFilterFromFlags(cmd *cobra.Command) (models.MatchFilter, error) {
	flags := cmd.Flags()

	var filter models.MatchFilter
	filter.CandidateID, _ = flags.GetString("candidate")
	filter.OpportunityID, _ = flags.GetString("opportunity")
	filter.MinScore, _ = flags.GetInt("min-score")
	filter.Limit, _ = flags.GetInt("limit")

	if raw, _ := flags.GetString("status"); raw != "" {
		st, err := models.ParseMatchStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = st
	}

	if filter.MinScore < 0 || filter.MinScore > 100 {
		return filter, fmt.Errorf("min-score must be between 0 and 100")
	}
	if filter.Limit < 0 {
		return filter, fmt.Errorf("limit must not be negative")
	}

	return filter, nil
}

func init() {
	rootCmd.AddCommand(matchesCmd)

	f := matchesCmd.Flags()
	f.StringP("status", "s", "", "only matches in this status")
	f.String("candidate", "", "only matches for this candidate id")
	f.String("opportunity", "", "only matches for this opportunity id")
	f.Int("min-score", 0, "only matches scoring at least this much")
	f.IntP("limit", "n", 50, "maximum rows, 0 for all")
	f.Bool("json", false, "print JSON instead of a table")
}
