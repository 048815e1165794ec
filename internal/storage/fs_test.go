package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/gradaudit/internal/storage"
)

func TestFSStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "transcripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transcripts", "s1.csv"), []byte("Course_Code,Credits,Grade\n"), 0o644))

	s, err := storage.NewFSStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	b, err := storage.ReadAll(ctx, s, "transcripts/s1.csv")
	require.NoError(t, err)
	assert.Equal(t, "Course_Code,Credits,Grade\n", string(b))

	_, err = s.Get(ctx, "transcripts/missing.csv")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Get(ctx, "../outside.csv")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Get(ctx, "")
	assert.Error(t, err)

	assert.True(t, strings.HasPrefix(s.Location("program.md"), "file://"))
	assert.True(t, strings.HasSuffix(s.Location("program.md"), "/program.md"))
}

func TestFSStore_CanceledContext(t *testing.T) {
	s, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Get(ctx, "program.md")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFSStore_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	_, err := storage.NewFSStore(f)
	assert.Error(t, err)

	_, err = storage.NewFSStore(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
