package devenv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	plain, err := ResolvePath("/var/lib/dealcrawl/main.sqlite")
	require.NoError(t, err)
	require.Equal(t, "/var/lib/dealcrawl/main.sqlite", plain)

	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	resolved, err := ResolvePath("<dev_state>/main.sqlite")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "main.sqlite"), resolved)
}
