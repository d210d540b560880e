package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/boardroom-ai/boardroom/internal/config"
	"github.com/boardroom-ai/boardroom/internal/gateway"
	"github.com/boardroom-ai/boardroom/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var port int
	var dataDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the boardroom HTTP server",
		Long: `Start the boardroom HTTP server.

The server exposes a JSON API for conversations, board member management,
and prompt customization, plus a server-sent-events endpoint that streams
deliberation progress stage by stage.

Configuration is read from the nearest .boardroom.yaml, walking up from
the current directory. The OpenRouter API key is taken from the
OPENROUTER_API_KEY environment variable. Set BOARDROOM_AUTH_SECRET to
require signed bearer tokens on every request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if dataDir != "" {
				cfg.Server.DataDir = dataDir
			}

			gw, err := newGateway(cfg)
			if err != nil {
				return err
			}

			logger := slog.Default()
			server := webserver.New(cfg, gw, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "boardroom server listening on :%d\n", cfg.Server.Port)
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides config)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for conversation and roster storage (overrides config)")

	return cmd
}

// buildGateway constructs the OpenRouter gateway from config. Tests
// replace newGateway to run commands against a scripted backend.
func buildGateway(cfg *config.Config) (gateway.Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
	}
	params, err := gateway.DecodeModelParams(cfg.Gateway.ModelParams)
	if err != nil {
		return nil, fmt.Errorf("invalid model_params in config: %w", err)
	}
	return gateway.NewOpenRouter(gateway.Options{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: time.Duration(cfg.Gateway.TimeoutSec) * time.Second,
		Params:  params,
	}), nil
}

var newGateway = buildGateway
