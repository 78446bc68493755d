package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"steno/internal/app/client"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push local changes and pull the team's change feed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		result, err := client.NewSyncService(app).Run(ctx)
		if err != nil {
			if errors.Is(err, client.ErrSubscriptionRequired) {
				color.Yellow("Sync requires an active subscription.")
				return nil
			}
			return fmt.Errorf("sync failed: %w", err)
		}

		color.Green("Sync completed in %s", result.Duration.Round(time.Millisecond))
		fmt.Printf("  uploaded:   %d\n", result.Uploaded)
		fmt.Printf("  downloaded: %d\n", result.Downloaded)
		fmt.Printf("  cursor:     %s\n", result.SyncedAt.Format(time.RFC3339))
		return nil
	},
}
