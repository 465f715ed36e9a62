// Command bloodlink runs the blood donation backend and its maintenance jobs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bloodlink/internal/platform/config"
	"bloodlink/internal/platform/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "bloodlink",
	Short:         "Blood donation coordination backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")
	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newRemindCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "bloodlink:", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and builds the process logger.
func loadConfig() (config.Config, *slog.Logger) {
	cfg := config.Load(envFile)
	return cfg, logger.New(cfg.Env)
}
