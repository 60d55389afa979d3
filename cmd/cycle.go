package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/spigell/airecruiter/internal/orchestrator"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one full scrape, match and notify cycle and print the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		params := orchestrator.ScrapeParams{}
		params.Query, _ = cmd.Flags().GetString("query")
		params.Location, _ = cmd.Flags().GetString("location")
		params.MaxJobs, _ = cmd.Flags().GetInt("max-jobs")

		return cycle(cmd.Context(), cmd.OutOrStdout(), params)
	},
}

func init() {
	rootCmd.AddCommand(cycleCmd)

	cycleCmd.Flags().StringP("query", "q", orchestrator.DefaultQuery, "search query for the scrape step")
	cycleCmd.Flags().StringP("location", "l", orchestrator.DefaultLocation, "location for the scrape step")
	cycleCmd.Flags().IntP("max-jobs", "m", orchestrator.DefaultMaxJobs, "maximum number of listings to scrape")
}

func cycle(ctx context.Context, out io.Writer, params orchestrator.ScrapeParams) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	res, err := a.orchestrator.RunFullCycle(ctx, params)
	if err != nil {
		return err
	}

	return printJSON(out, res)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
