package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display row counts of users, readings, the reference catalog, history and preferences.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db := mustLoad()
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %s\n", humanize.Comma(stats.Users))
		fmt.Printf("Readings: %s (%s anonymous)\n", humanize.Comma(stats.Readings), humanize.Comma(stats.AnonymousReadings))
		fmt.Printf("Philosophies: %d\n", stats.Philosophies)
		fmt.Printf("Religions: %d\n", stats.Religions)
		fmt.Printf("Astrological Systems: %d\n", stats.AstrologicalSystems)
		fmt.Printf("History Entries: %s\n", humanize.Comma(stats.HistoryEntries))
		fmt.Printf("Preferences: %s\n", humanize.Comma(stats.Preferences))

		if stats.LatestReading != nil {
			fmt.Printf("Latest Reading: %s (%s)\n", timediff.TimeDiff(*stats.LatestReading), stats.LatestReading.Format("2006-01-02 15:04:05"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
