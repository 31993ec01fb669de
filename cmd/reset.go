package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var resetCmdFlags struct {
	Seed bool
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate all tables",
	Long:  `This command drops every Astro Advisor table and recreates the schema. All users, readings, history and preferences are lost.`,
	Run:   reset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetCmdFlags.Seed, "seed", false, "Seed the reference catalog after the reset")

	rootCmd.AddCommand(resetCmd)
}

func reset(cmd *cobra.Command, _ []string) {
	_, db := mustLoad()
	defer db.Close() //nolint:errcheck

	log.Warn("Dropping all tables...")
	if err := db.Reset(cmd.Context()); err != nil {
		log.Fatalf("failed to reset database: %v", err)
	}

	if resetCmdFlags.Seed {
		if _, err := db.SeedCatalog(cmd.Context(), false); err != nil {
			log.Fatalf("failed to seed reference catalog: %v", err)
		}
	}

	log.Info("Successfully reset the database!")
}
