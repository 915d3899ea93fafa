package main

import (
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/capsim/internal/generator"
	"github.com/rpggio/capsim/internal/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the generator as an MCP tool over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			writer, closeWriter, err := newWriter(a.cfg.Output)
			if err != nil {
				return err
			}
			defer closeWriter()

			server := mcp.NewServer(mcp.Config{
				Service: generator.NewService(writer, a.logger),
				Base:    a.cfg,
				Version: version,
				Logger:  a.logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.logger.Info("starting stdio transport", "sink", a.cfg.Output.Sink)

			// Run blocks until stdin closes or the context is canceled
			if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				return err
			}
			a.logger.Info("shutting down")
			return nil
		},
	}
}
