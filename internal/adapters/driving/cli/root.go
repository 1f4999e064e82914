// Package cli provides the mbsearch command line interface.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
	"github.com/custodia-labs/mbsearch/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=1.2.3".
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services holds the driving ports the commands use.
type Services struct {
	Search   driving.SearchService
	Session  driving.SearchSession
	Items    driving.ItemService
	Export   driving.ExportService
	Settings driving.SettingsService

	// Server holds the ports served over HTTP. Its export service
	// delivers files to memory for download.
	Server *httpapi.Ports

	// Watch reloads settings when the config file changes until ctx is
	// done. Optional.
	Watch func(ctx context.Context) error

	// Close releases resources. Optional.
	Close func() error
}

// BootstrapFunc builds the services once flags are parsed.
type BootstrapFunc func(configDir string) (*Services, error)

var (
	bootstrap BootstrapFunc
	closer    func() error

	searchService   driving.SearchService
	searchSession   driving.SearchSession
	itemService     driving.ItemService
	exportService   driving.ExportService
	settingsService driving.SettingsService
	serverPorts     *httpapi.Ports
	watchConfig     func(ctx context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "mbsearch",
	Short: "Search the Medicare Benefits Schedule",
	Long: `mbsearch searches the Medicare Benefits Schedule (MBS) fee dataset
through an Azure Cognitive Search index.

Search from the command line, browse interactively with the terminal UI,
export whole result sets to CSV, JSON, XLSX or YAML, or serve the same
operations over HTTP and MCP.

Configuration lives in ~/.mbsearch/config.toml. Set the service with:
  mbsearch config set search.endpoint https://<service>.search.windows.net
  mbsearch config set search.api_key`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.mbsearch)")
}

// SetBootstrap registers the function that builds the services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if cerr := teardown(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// setup enables logging and builds the services.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || cmd == versionCmd {
		return nil
	}
	services, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	applyServices(services)
	return nil
}

// teardown releases resources once. Safe to call repeatedly.
func teardown() error {
	if closer == nil {
		return nil
	}
	fn := closer
	closer = nil
	return fn()
}

func applyServices(s *Services) {
	searchService = s.Search
	searchSession = s.Session
	itemService = s.Items
	exportService = s.Export
	settingsService = s.Settings
	serverPorts = s.Server
	watchConfig = s.Watch
	closer = s.Close
}

// Errors returned when a command runs without its service.
var (
	errNoSearchService   = errors.New("search service not configured")
	errNoItemService     = errors.New("item service not configured")
	errNoExportService   = errors.New("export service not configured")
	errNoSettingsService = errors.New("settings service not configured")
)

// startWatch reloads settings in the background for long-running commands.
func startWatch(ctx context.Context) {
	if watchConfig == nil {
		return
	}
	go func() {
		if err := watchConfig(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watch stopped: %v", err)
		}
	}()
}
