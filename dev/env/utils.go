package devenv

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const statePrefix = "<dev_state>"

var modName = regexp.MustCompile(`(?m)^module *([\w\-_]+)$`)

func isWorkspaceRoot(dir string) bool {
	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == "dealcrawl-backend"
}

// GetWorkspaceRoot walks up from the cwd until it finds this module's go.mod.
func GetWorkspaceRoot() (string, error) {
	current, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	for {
		if isWorkspaceRoot(current) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}

// StateDir is where local databases and other run state live. It is
// dev/.state in the workspace, or .state in the cwd when running outside
// of a checkout.
func StateDir() (string, error) {
	dir := ".state"
	root, err := GetWorkspaceRoot()
	if err == nil {
		dir = filepath.Join(root, "dev", ".state")
	} else if !os.IsNotExist(err) {
		return "", err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return "", err
	}
	return dir, nil
}

// ResolvePath expands a leading `<dev_state>` into StateDir, other paths
// are returned as is.
func ResolvePath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, statePrefix)
	if !ok {
		return path, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(strings.TrimLeft(rest, `/\`))), nil
}
