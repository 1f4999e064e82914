package cli

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

var (
	exportFlags  intentFlags
	exportFormat string
	exportJSON   bool

	historyLimit int
	historyJSON  bool
)

var exportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export every result of a search to a file",
	Long: `Fetches every item matching the search in batches and writes them to a
file in the export directory (export.dir, default the current directory).

Formats: csv, json, xlsx, yaml. Only one export runs at a time.

Examples:
  mbsearch export --format csv knee
  mbsearch export --format xlsx --facet CategoryDescription="Diagnostic Imaging Services"`,
	RunE: runExport,
}

var exportHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished exports",
	Args:  cobra.NoArgs,
	RunE:  runExportHistory,
}

func init() {
	exportFlags.register(exportCmd.Flags(), false)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "F", string(domain.ExportCSV), "file format: csv, json, xlsx or yaml")
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "print the finished job as JSON")

	exportHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of exports to list")
	exportHistoryCmd.Flags().BoolVar(&historyJSON, "json", false, "output history as JSON")

	exportCmd.AddCommand(exportHistoryCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errNoExportService
	}

	format, err := domain.ParseExportFormat(exportFormat)
	if err != nil {
		return fmt.Errorf("%w: %q", err, exportFormat)
	}
	intent, err := exportFlags.intent(args)
	if err != nil {
		return err
	}

	progress := newProgressPrinter(cmd.ErrOrStderr())
	unsubscribe := exportService.Subscribe(progress.print)
	job, err := exportService.Export(cmd.Context(), intent, format)
	unsubscribe()

	if errors.Is(err, domain.ErrExportInProgress) {
		return errors.New("another export is already running")
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportJSON {
		return outputJSON(cmd, job)
	}

	switch job.Outcome {
	case domain.ExportFailed:
		return fmt.Errorf("export failed: %s", job.Err)
	case domain.ExportEmpty:
		cmd.Println(job.Message)
	default:
		cmd.Println(job.Message)
		cmd.Printf("Saved to %s\n", job.Location)
	}
	return nil
}

// progressPrinter writes a line whenever the export message changes.
type progressPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

func (p *progressPrinter) print(ev domain.ExportProgress) {
	if !ev.Running || ev.Message == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev.Message == p.last {
		return
	}
	p.last = ev.Message
	fmt.Fprintf(p.w, "[%3d%%] %s\n", ev.Progress, ev.Message)
}

func runExportHistory(cmd *cobra.Command, _ []string) error {
	if exportService == nil {
		return errNoExportService
	}

	records, err := exportService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyJSON {
		return outputJSON(cmd, records)
	}
	if len(records) == 0 {
		cmd.Println("No exports yet.")
		return nil
	}

	for i := range records {
		r := &records[i]
		cmd.Printf("%s  %-4s  %-9s  %d of %d items  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Format, r.Outcome, r.FetchedCount, r.TotalCount,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
		switch {
		case r.Err != "":
			cmd.Printf("    error: %s\n", r.Err)
		case r.Location != "":
			cmd.Printf("    %s\n", r.Location)
		}
	}
	return nil
}
