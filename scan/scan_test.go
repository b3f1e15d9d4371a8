package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("12345"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "documents"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	files, subdirs, err := Directory(dir)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "report.pdf", files[0].Name)
	assert.Equal(t, ".pdf", files[0].Extension)
	assert.Equal(t, int64(5), files[0].Size)
	assert.False(t, files[0].Modified.IsZero())

	assert.Equal(t, []string{"documents"}, subdirs)
}

func TestDirectoryMissing(t *testing.T) {
	_, _, err := Directory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
