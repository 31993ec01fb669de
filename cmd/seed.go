package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var seedCmdFlags struct {
	Force bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the reference catalog",
	Long:  `Insert the built-in philosophies, religions and astrological systems. Nothing is inserted if the catalog already has data, unless --force is given.`,
	Run:   seed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedCmdFlags.Force, "force", false, "Delete the existing reference catalog before seeding")

	rootCmd.AddCommand(seedCmd)
}

func seed(cmd *cobra.Command, _ []string) {
	_, db := mustLoad()
	defer db.Close() //nolint:errcheck

	seeded, err := db.SeedCatalog(cmd.Context(), seedCmdFlags.Force)
	if err != nil {
		log.Fatalf("failed to seed reference catalog: %v", err)
	}
	if !seeded {
		log.Info("Reference catalog already present, use --force to replace it")
		return
	}

	log.Info("Successfully seeded the reference catalog!")
}
