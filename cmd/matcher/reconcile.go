package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recruit-matcher/internal/matching"

	"github.com/gofrs/flock"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute every candidate/opportunity pair and store matches above the threshold",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := newServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		lock := flock.New(svc.cfg.LockFile)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", svc.cfg.LockFile, err)
		}
		if !locked {
			return fmt.Errorf("another reconcile is running on this host (lock file %s)", svc.cfg.LockFile)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				svc.log.Warn("failed to release lock file", zap.Error(err))
			}
		}()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Recompute all %s with threshold %d", svc.cfg.ReconcileDirection(), svc.cfg.Threshold),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				svc.log.Info("exiting", zap.String("reason", "not confirmed"))
				return nil
			}
		}

		summary, err := svc.engine.RunBatchReconciliation(ctx)
		if errors.Is(err, matching.ErrReconcileInProgress) {
			return fmt.Errorf("another replica holds the reconcile lock")
		}

		if summary != nil {
			pretty, _ := json.MarshalIndent(summary, "", "  ")
			fmt.Println(string(pretty))
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}
