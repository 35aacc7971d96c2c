package util

import (
	"os"
	"path/filepath"
)

// FindGitRoot finds the root of the git repository containing start.
// Returns start unchanged if no .git is found.
func FindGitRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return abs, nil
		}
		dir = parent
	}
}
