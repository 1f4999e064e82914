package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

func finishedJob() *domain.ExportJob {
	started := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return &domain.ExportJob{
		ID:           "job-1",
		Format:       domain.ExportCSV,
		State:        domain.ExportIdle,
		Outcome:      domain.ExportSucceeded,
		TotalCount:   25,
		FetchedCount: 25,
		Progress:     100,
		Message:      "Successfully exported 25 items to CSV",
		Filename:     "mbs-search-results-2024-03-01.csv",
		Location:     "/tmp/exports/mbs-search-results-2024-03-01.csv",
		StartedAt:    started,
		FinishedAt:   started.Add(2 * time.Second),
	}
}

func TestExportCmd_Success(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.export.job = finishedJob()
	ts.export.events = []domain.ExportProgress{
		{State: domain.ExportCounting, Progress: 5, Message: "Counting results...", Running: true},
		{State: domain.ExportFetching, Progress: 35, Message: "Fetching batch 1 of 1...", Running: true},
		{State: domain.ExportFetching, Progress: 35, Message: "Fetching batch 1 of 1...", Running: true},
		{State: domain.ExportIdle, Progress: 100, Message: "Successfully exported 25 items to CSV"},
	}

	out, err := execute(t, "export", "--format", "XLSX", "--facet", "GroupDescription=A1", "knee")

	require.NoError(t, err)
	assert.Equal(t, domain.ExportXLSX, ts.export.format)
	assert.Equal(t, "knee", ts.export.intent.Query)
	assert.Equal(t, []string{"A1"}, ts.export.intent.Facets["GroupDescription"])
	assert.Contains(t, out, "[  5%] Counting results...")
	assert.Equal(t, 1, strings.Count(out, "Fetching batch 1 of 1..."), "repeated messages print once")
	assert.Contains(t, out, "Successfully exported 25 items to CSV")
	assert.Contains(t, out, "Saved to /tmp/exports/mbs-search-results-2024-03-01.csv")
	assert.Empty(t, ts.export.subs, "progress subscription is removed")
}

func TestExportCmd_DefaultFormatIsCSV(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.export.job = finishedJob()

	_, err := execute(t, "export")

	require.NoError(t, err)
	assert.Equal(t, domain.ExportCSV, ts.export.format)
}

func TestExportCmd_UnsupportedFormat(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "export", "--format", "pdf")

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Empty(t, ts.export.format)
}

func TestExportCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.export.job = &domain.ExportJob{Outcome: domain.ExportEmpty, Message: "No results to export"}

	out, err := execute(t, "export", "zzz")

	require.NoError(t, err)
	assert.Contains(t, out, "No results to export")
	assert.NotContains(t, out, "Saved to")
}

func TestExportCmd_FailedJob(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.export.job = &domain.ExportJob{Outcome: domain.ExportFailed, Message: "Export failed", Err: "rate limited"}

	_, err := execute(t, "export")

	require.Error(t, err)
	assert.Equal(t, "export failed: rate limited", err.Error())
}

func TestExportCmd_InProgress(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.export.err = domain.ErrExportInProgress

	_, err := execute(t, "export")

	require.Error(t, err)
	assert.Equal(t, "another export is already running", err.Error())
}

func TestExportCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.export.job = finishedJob()

	out, err := execute(t, "export", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "job-1"`)
	assert.Contains(t, out, `"outcome": "succeeded"`)
}

func TestExportCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	exportService = nil

	_, err := execute(t, "export")

	assert.ErrorIs(t, err, errNoExportService)
}

func TestExportHistoryCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	failed := domain.ExportRecord{
		ID:      "job-0",
		Format:  domain.ExportJSON,
		Outcome: domain.ExportFailed,
		Err:     "rate limited",
	}
	ts.export.records = []domain.ExportRecord{finishedJob().Record(), failed}

	out, err := execute(t, "export", "history", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, ts.export.limit)
	assert.Contains(t, out, "csv   succeeded  25 of 25 items  2s")
	assert.Contains(t, out, "    /tmp/exports/mbs-search-results-2024-03-01.csv")
	assert.Contains(t, out, "json  failed")
	assert.Contains(t, out, "    error: rate limited")
}

func TestExportHistoryCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "export", "history")

	require.NoError(t, err)
	assert.Equal(t, 20, ts.export.limit)
	assert.Contains(t, out, "No exports yet.")
}

func TestExportHistoryCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.export.records = []domain.ExportRecord{finishedJob().Record()}

	out, err := execute(t, "export", "history", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"filename": "mbs-search-results-2024-03-01.csv"`)
}

func TestProgressPrinter_IgnoresIdle(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.print(domain.ExportProgress{State: domain.ExportIdle, Message: "done"})
	p.print(domain.ExportProgress{State: domain.ExportFetching, Running: true})

	assert.Empty(t, buf.String())
}
