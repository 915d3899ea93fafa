package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpggio/capsim/internal/config"
)

// app holds state shared by subcommands once the root command has run.
type app struct {
	configPath string
	logLevel   string

	cfg     config.Config
	logger  *slog.Logger
	closers []io.Closer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "capsim [command]",
		Short:         "Synthetic capital-construction project dataset generator",
		Long:          `Generate a reproducible table of construction projects with final cost, final duration and change orders, plus monthly spend curves for a sample of them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (or CAPSIM_CONFIG_PATH env)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newSchemaCmd(a))
	root.AddCommand(newServeCmd(a))

	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	// Logs go to stderr so stdout stays clean for JSON-RPC and schema output.
	logWriter := stderr
	if logPath := os.Getenv("CAPSIM_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(stderr, "log file error: %v\n", err)
		} else {
			a.closers = append(a.closers, file)
			logWriter = fileWriter
		}
	}
	a.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
	a.closers = nil
}
