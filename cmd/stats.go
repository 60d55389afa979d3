package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print platform statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		return printJSON(cmd.OutOrStdout(), map[string]any{
			"stats":     a.store.GetPlatformStats(ctx),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
