package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Long: `Starts the HTTP API for browser clients.

Endpoints:
  GET  /health                       connection check
  POST /api/search                   run a search intent
  GET  /api/items/{num}              item details
  POST /api/exports                  start a background export
  GET  /api/exports/current          state of the latest export
  GET  /api/exports/{id}/download    download a finished export
  GET  /api/exports/history          finished exports
  GET  /api/exports/events           export progress (websocket)

The address defaults to server.addr (` + domain.DefaultServerAddr + `).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serverPorts == nil {
		return errors.New("http services not configured")
	}

	addr, err := listenAddr()
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(serverPorts, logger.Zap())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startWatch(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on http://%s\n", addr)
	return server.Run(ctx, addr)
}

// listenAddr resolves the address from the flag or the settings.
func listenAddr() (string, error) {
	if serveAddr != "" {
		return serveAddr, nil
	}
	if settingsService == nil {
		return domain.DefaultServerAddr, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Server.Addr == "" {
		return domain.DefaultServerAddr, nil
	}
	return settings.Server.Addr, nil
}
