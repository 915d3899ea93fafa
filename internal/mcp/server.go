package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/capsim/internal/config"
	"github.com/rpggio/capsim/internal/generator"
)

const serverInstructions = `capsim generates a synthetic dataset of capital-construction projects
(attributes, final cost, final duration, change orders) and monthly spend
curves for the first sampled projects. Call generate_dataset to run the
generator; identical arguments always produce identical tables.`

// DatasetService defines generator operations needed by MCP.
type DatasetService interface {
	Generate(ctx context.Context, cfg config.Config) (*generator.Dataset, error)
	GenerateAndWrite(ctx context.Context, cfg config.Config) (*generator.Dataset, error)
}

// Config contains server configuration.
type Config struct {
	Service DatasetService
	Base    config.Config // defaults for every tool call
	Version string
	Logger  *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "capsim",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg)

	return server
}
