package app

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mcstatusbot/statusbot/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long:  `Database migration tool for the record store schema. Use with 'up' or 'down' subcommands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	cmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		Long: `Apply all pending database migrations to bring the schema up to date.
The connection parameters are read from the database section of the config file.`,
		RunE: runMigrateUp,
	}
}

func newMigrateDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert database migrations",
		Long: `Revert database migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Revert the latest migration
  statusbot migrate down --config config.yaml --num-steps 1 --yes`,
		RunE: runMigrateDown,
	}
	cmd.Flags().UintP("num-steps", "n", 1, "Number of steps to revert")
	return cmd
}

// migrationConnString returns the connection string of the configured database
func migrationConnString(cmd *cobra.Command) (string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.Database == nil {
		return "", errors.New("database configuration is required")
	}
	if _, err := cfg.Database.GetPassword(); err != nil {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return "", err
		}
		password, err := readPassword(cmd)
		if err != nil {
			return "", err
		}
		cfg.Database.SetPassword(password)
	}
	connString, err := cfg.Database.GetConnectionString()
	if err != nil {
		return "", fmt.Errorf("failed to build connection string: %w", err)
	}
	return connString, nil
}

// readPassword prompts for the database password without echoing it
func readPassword(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password for database user: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimSpace(string(passwordBytes))
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	connString, err := migrationConnString(cmd)
	if err != nil {
		return err
	}

	if !confirmed(cmd, "About to apply database migrations. Continue?") {
		slog.Info("Migration cancelled by user")
		return nil
	}

	slog.Info("Applying database migrations")
	if err := database.MigrateUp(connString); err != nil {
		return err
	}
	logVersion(connString)
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	connString, err := migrationConnString(cmd)
	if err != nil {
		return err
	}

	steps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	if steps == 0 {
		return errors.New("num-steps must be at least 1")
	}

	prompt := fmt.Sprintf("WARNING: This will revert %d migration(s) and may result in data loss. Continue?", steps)
	if !confirmed(cmd, prompt) {
		return errors.New("migration cancelled by user")
	}

	slog.Info("Reverting database migrations", "steps", steps)
	if err := database.MigrateDown(connString, int(steps)); err != nil {
		return err
	}
	logVersion(connString)
	return nil
}

// confirmed returns true with --yes, otherwise asks on the command's input
func confirmed(cmd *cobra.Command, prompt string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (yes/no): ", prompt)
	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "yes" || response == "y"
}

func logVersion(connString string) {
	version, dirty, err := database.GetVersion(connString)
	switch {
	case err != nil:
		slog.Warn("Unable to get migration version", "error", err)
	case dirty:
		slog.Warn("Database is in a dirty state", "version", version)
	default:
		slog.Info("Migrations applied successfully", "version", version)
	}
}
