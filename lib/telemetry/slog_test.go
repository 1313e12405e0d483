package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitSlog(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	day := time.Date(2024, time.April, 18, 9, 0, 0, 0, time.UTC)

	logger, closeFile, err := InitSlog(SlogOptions{
		LogDir:  dir,
		Console: &console,
		Now:     func() time.Time { return day },
	})
	require.NoError(t, err)

	logger.Info("sweep finished", "expired_prices", 3)
	logger.Debug("hidden")
	require.NoError(t, closeFile())

	contents, err := os.ReadFile(filepath.Join(dir, "log_20240418.log"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "sweep finished")
	require.Contains(t, string(contents), "expired_prices=3")
	require.NotContains(t, string(contents), "hidden")
	require.Equal(t, console.String(), string(contents))
}
