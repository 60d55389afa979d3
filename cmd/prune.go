package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete job listings older than the given number of days",
	RunE: func(cmd *cobra.Command, _ []string) error {
		days, _ := cmd.Flags().GetInt("days")
		yes, _ := cmd.Flags().GetBool("yes")

		return prune(cmd.Context(), days, yes)
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().Int("days", 30, "delete listings created more than this many days ago")
	pruneCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func prune(ctx context.Context, days int, yes bool) error {
	if days <= 0 {
		return fmt.Errorf("days must be positive, got %d", days)
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if !yes {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Delete job listings older than %d days?", days),
			Items: []string{PromptYes, PromptNo},
		}

		_, answer, err := prompt.Run()
		if err != nil {
			return err
		}
		if answer != PromptYes {
			a.logger.Info("prune cancelled")
			return nil
		}
	}

	deleted, err := a.store.DeleteOldJobListings(ctx, days)
	if err != nil {
		return err
	}

	a.logger.Info("pruned job listings", zap.Int64("deleted", deleted), zap.Int("days", days))
	return nil
}
