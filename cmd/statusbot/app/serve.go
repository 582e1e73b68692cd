package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcstatusbot/statusbot/internal/app"
)

const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync engine and the HTTP API",
		Long: `Run the synchronization engine and the HTTP API.

The configuration file (--config) names the status provider, the Discord
token (or STATUSBOT_DISCORD_TOKEN) and the record store. With discord.dryRun
set, channel updates are applied to an in-memory copy of the guilds instead.`,
		RunE: runServe,
	}
	cmd.Flags().String("address", "", "Address to listen on (overrides http.address)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Discord.RequireToken(); err != nil {
		return err
	}

	opts := []app.StatusBotAppOptions{app.WithConfig(cfg)}
	if address, _ := cmd.Flags().GetString("address"); address != "" {
		opts = append(opts, app.WithAddress(address))
	}

	statusBot, err := app.NewStatusBotApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- statusBot.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if stopErr := statusBot.Stop(defaultGracefulTimeout); stopErr != nil {
			slog.Error("Failed to stop application", "error", stopErr)
		}
		return err
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig.String())
	}

	return statusBot.Stop(defaultGracefulTimeout)
}
