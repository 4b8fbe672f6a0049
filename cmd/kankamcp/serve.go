package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kankamcp/internal/config"
	"kankamcp/internal/kanka"
	"kankamcp/internal/mcp"
	"kankamcp/internal/service"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "kankamcp.yaml", "path to the config file")
	return cmd
}

func runServe(configPath string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// stdout carries the MCP transport; logs go to stderr.
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	client, err := kanka.NewClient(kanka.Options{
		Token:      cfg.Token,
		CampaignID: cfg.CampaignID,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Logger:     log.With().Str("component", "kanka").Logger(),
	})
	if err != nil {
		return err
	}

	svc := service.New(client, cfg.Concurrency, log.With().Str("component", "service").Logger())
	server := mcp.NewServer(svc, version, log.With().Str("component", "mcp").Logger())

	log.Info().Int("campaign_id", cfg.CampaignID).Str("version", version).Msg("starting MCP server")
	return server.Run(ctx, &sdk.StdioTransport{})
}
