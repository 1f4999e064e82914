package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

func TestBootstrap(t *testing.T) {
	dir := t.TempDir()

	svc, err := bootstrap(dir)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	assert.NotNil(t, svc.Search)
	assert.NotNil(t, svc.Session)
	assert.NotNil(t, svc.Items)
	assert.NotNil(t, svc.Export)
	assert.NotNil(t, svc.Settings)
	require.NotNil(t, svc.Server)
	assert.NoError(t, svc.Server.Validate())
	assert.NotSame(t, svc.Export, svc.Server.Export, "HTTP exports deliver to memory")

	_, err = os.Stat(filepath.Join(dir, "data", "exports.db"))
	assert.NoError(t, err)
}

func TestBootstrap_UnconfiguredService(t *testing.T) {
	t.Setenv("MBSEARCH_ENDPOINT", "")
	t.Setenv("MBSEARCH_API_KEY", "")

	svc, err := bootstrap(t.TempDir())
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Search.Search(context.Background(), domain.NewSearchIntent())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	history, err := svc.Export.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBootstrap_SettingsPersist(t *testing.T) {
	dir := t.TempDir()

	svc, err := bootstrap(dir)
	require.NoError(t, err)
	require.NoError(t, svc.Settings.Set("search.page_size", "25"))
	require.NoError(t, svc.Close())

	again, err := bootstrap(dir)
	require.NoError(t, err)
	defer again.Close()

	settings, err := again.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, 25, settings.Query.PageSize)
}

func TestBootstrap_WatchStopsOnCancel(t *testing.T) {
	svc, err := bootstrap(t.TempDir())
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, svc.Watch(ctx))
}

func TestBootstrap_LedgerFallsBackToMemory(t *testing.T) {
	dir := t.TempDir()
	// A file where the data directory belongs stops SQLite from opening.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), []byte("x"), 0o600))

	svc, err := bootstrap(dir)
	require.NoError(t, err)

	history, err := svc.Export.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NoError(t, svc.Close())
}

func TestBootstrap_ExportsShareOneSlot(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"@odata.count": 1, "value": [{"ItemNum": "23"}]}`)
	}))
	defer server.Close()
	defer func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}()
	t.Setenv("MBSEARCH_ENDPOINT", server.URL)
	t.Setenv("MBSEARCH_API_KEY", "query-key")

	svc, err := bootstrap(t.TempDir())
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Server.Export.Start(context.Background(), domain.NewSearchIntent(), domain.ExportJSON)
	require.NoError(t, err)

	_, err = svc.Export.Export(context.Background(), domain.NewSearchIntent(), domain.ExportCSV)
	assert.ErrorIs(t, err, domain.ErrExportInProgress, "HTTP and file exports share one slot")

	close(release)
	assert.Eventually(t, func() bool {
		history, err := svc.Export.History(context.Background(), 1)
		return err == nil && len(history) == 1 && history[0].Outcome == domain.ExportSucceeded
	}, 5*time.Second, 10*time.Millisecond)
}
