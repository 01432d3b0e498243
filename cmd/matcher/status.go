package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <match-id> <status>",
	Short: "Set the review status of a stored match",
	Long:  "Set the review status of a stored match. Statuses: pending, contacted, interviewed, placed, rejected.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("match id must be a number: %w", err)
		}

		var notes *string
		if cmd.Flags().Changed("notes") {
			n, _ := cmd.Flags().GetString("notes")
			notes = &n
		}

		svc, err := newServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.engine.SetMatchStatus(cmd.Context(), id, args[1], notes); err != nil {
			return err
		}

		fmt.Printf("match %d is now %s\n", id, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("notes", "", "reviewer notes; leaves existing notes untouched when omitted")
}
