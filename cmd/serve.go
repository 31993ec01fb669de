package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/astroadvisor/internal/api"
	"github.com/jon4hz/astroadvisor/internal/engine"
	"github.com/jon4hz/astroadvisor/internal/llm"
	"github.com/jon4hz/astroadvisor/internal/notify/email"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmdFlags struct {
	Seed bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Astro Advisor server",
	Long:  `Start the Astro Advisor HTTP API. This is also what the root command does.`,
	Example: `astroadvisor serve --config config.yml
astroadvisor serve -c /path/to/config.yml --log-level debug --seed
`,
	Run: startServer,
}

func init() {
	serveCmd.Flags().BoolVar(&serveCmdFlags.Seed, "seed", false, "Seed the reference catalog on startup if it is empty")
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, db := mustLoad()

	if serveCmdFlags.Seed {
		if _, err := db.SeedCatalog(cmd.Context(), false); err != nil {
			log.Fatalf("failed to seed reference catalog: %v", err)
		}
	}

	mailer := email.New(cfg.Email)
	eng := engine.New(cfg, db, llm.NewClient(cfg.LLM), mailer)
	defer func() {
		if err := eng.Close(); err != nil {
			log.Error("failed to close engine", "error", err)
		}
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	server, err := api.New(cfg, eng)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down gracefully...")
		return nil
	})

	log.Info("astroadvisor started successfully", "listen", cfg.Listen, "database", cfg.Database.Driver)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("API server error", "error", err)
	}
}
