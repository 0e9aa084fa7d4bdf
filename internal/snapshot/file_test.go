package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymnexus/internal/membership"
)

func TestFileStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)
	ctx := context.Background()

	members := sampleMembers()
	location, err := store.Save(ctx, "monday", members)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snapshots", "monday"+Extension), location)

	got, err := store.Load(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, members, got)

	got, err = store.Load(ctx, "monday"+Extension)
	require.NoError(t, err)
	assert.Len(t, got, len(members))
}

func TestFileStoreKeepsExistingExtension(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	location, err := store.Save(context.Background(), "backup.GYM", sampleMembers())
	require.NoError(t, err)
	assert.Equal(t, "backup.GYM", filepath.Base(location))
}

func TestFileStoreStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	location, err := store.Save(context.Background(), "../../escape", sampleMembers())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape"+Extension), location)
}

func TestFileStoreOverwrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	members := sampleMembers()
	_, err = store.Save(ctx, "gym", members)
	require.NoError(t, err)
	location, err := store.Save(ctx, "gym", members[:1])
	require.NoError(t, err)

	got, err := store.Load(ctx, location)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	entries, err := os.ReadDir(filepath.Dir(location))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreLoadErrors(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Load(ctx, "missing.gym")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.ErrorIs(t, err, membership.ErrNotFound)

	garbage := filepath.Join(dir, "garbage.gym")
	require.NoError(t, os.WriteFile(garbage, []byte("{}"), 0o644))
	_, err = store.Load(ctx, garbage)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.NotContains(t, err.Error(), dir)

	for _, location := range []string{"", ".", "..", "/"} {
		_, err = store.Load(ctx, location)
		assert.ErrorIs(t, err, ErrSnapshotNotFound, "location %q", location)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Save(cancelled, "gym", sampleMembers())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStoreLoadStaysInsideDirectory(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(filepath.Join(root, "snapshots"))
	require.NoError(t, err)
	ctx := context.Background()

	_, data, err := Encode(sampleMembers(), time.Now())
	require.NoError(t, err)
	outside := filepath.Join(root, "outside.gym")
	require.NoError(t, os.WriteFile(outside, data, 0o644))

	for _, location := range []string{outside, "../outside.gym", "snapshots/../outside.gym"} {
		_, err = store.Load(ctx, location)
		assert.ErrorIs(t, err, ErrSnapshotNotFound, "location %q", location)
		assert.NotContains(t, err.Error(), root)
	}

	_, err = store.Save(ctx, "outside", sampleMembers())
	require.NoError(t, err)
	got, err := store.Load(ctx, outside)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
