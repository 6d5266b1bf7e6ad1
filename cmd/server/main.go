package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"chitfund/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// rootCmd serves the console when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "chitfund",
	Short:         "Chit fund admin console",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, seedSchemesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chitfund:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and installs the process logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return cfg, nil
}
