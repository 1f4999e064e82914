package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the connection to the search service",
	Long: `Sends a count request to the configured index and reports how many
items it holds and how long the round trip took.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errNoSearchService
	}

	result, err := searchService.Ping(cmd.Context())
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	p := message.NewPrinter(language.English)
	cmd.Println(p.Sprintf("Connected: %d items indexed (%s)", result.Count, result.Latency.Round(time.Millisecond).String()))
	return nil
}
