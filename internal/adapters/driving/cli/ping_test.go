package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ping")

	require.NoError(t, err)
	assert.Contains(t, out, "Connected: 5,989 items indexed (123ms)")
}

func TestPingCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.err = errBackend

	_, err := execute(t, "ping")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection failed")
}

func TestPingCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ping", "extra")

	assert.Error(t, err)
}
