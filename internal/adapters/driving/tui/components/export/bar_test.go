package export

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

func running(progress int, msg string) domain.ExportProgress {
	return domain.ExportProgress{
		JobID:    "job-1",
		State:    domain.ExportFetching,
		Progress: progress,
		Message:  msg,
		Running:  true,
	}
}

func TestNewBar(t *testing.T) {
	bar := NewBar(nil)

	require.NotNil(t, bar)
	assert.False(t, bar.Visible())
	assert.False(t, bar.Running())
	assert.Empty(t, bar.View())
}

func TestBar_Set_StartsSpinnerOnce(t *testing.T) {
	bar := NewBar(nil)

	cmd := bar.Set(running(5, "Preparing export..."))
	require.NotNil(t, cmd)
	assert.True(t, bar.Running())

	cmd = bar.Set(running(40, "Fetching batch 2 of 3..."))
	assert.Nil(t, cmd)
	assert.Equal(t, 40, bar.Progress().Progress)
}

func TestBar_View_Running(t *testing.T) {
	bar := NewBar(nil)
	bar.SetWidth(100)
	bar.Set(running(40, "Fetching batch 2 of 3..."))

	view := bar.View()

	assert.Contains(t, view, "Fetching batch 2 of 3...")
	assert.Contains(t, view, "40%")
}

func TestBar_View_Finished(t *testing.T) {
	bar := NewBar(nil)
	bar.Set(running(90, "Creating CSV file..."))

	bar.Set(domain.ExportProgress{
		JobID:    "job-1",
		State:    domain.ExportFinalizing,
		Progress: 100,
		Message:  "Successfully exported 12 items to CSV",
	})

	assert.True(t, bar.Visible())
	assert.False(t, bar.Running())
	assert.Equal(t, "Successfully exported 12 items to CSV", bar.View())
}

func TestBar_Set_IdleHides(t *testing.T) {
	bar := NewBar(nil)
	bar.Set(domain.ExportProgress{JobID: "job-1", Progress: 0, Message: "No results to export"})
	require.True(t, bar.Visible())

	cmd := bar.Set(domain.ExportProgress{JobID: "job-1", State: domain.ExportIdle})

	assert.Nil(t, cmd)
	assert.False(t, bar.Visible())
	assert.Empty(t, bar.View())
}

func TestBar_Update_IgnoresTickWhenIdle(t *testing.T) {
	bar := NewBar(nil)

	_, cmd := bar.Update(spinner.TickMsg{})

	assert.Nil(t, cmd)
}

func TestBar_SetWidth_Minimum(t *testing.T) {
	bar := NewBar(nil)

	bar.SetWidth(8)

	assert.Equal(t, 10, bar.bar.Width)
}
