package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show immersion statistics for a period",
	Example: `  immersionctl stats
  immersionctl stats --range month --type reading`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeRange, _ := cmd.Flags().GetString("range")
		logType, _ := cmd.Flags().GetString("type")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		stats, err := httpClient.GetStats(cmd.Context(), timeRange, logType, tz)
		if err != nil {
			return fmt.Errorf("failed to fetch statistics: %w", err)
		}

		fmt.Println(renderStats(stats))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("range", "month", "today, week, month, year or total")
	statsCmd.Flags().String("type", "all", "log type, or all")
}
