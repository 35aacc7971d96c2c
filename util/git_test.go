package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindGitRootFromNestedDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindGitRoot(nested)

	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindGitRootWithoutRepo(t *testing.T) {
	dir := t.TempDir()

	found, err := FindGitRoot(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, found)
}
