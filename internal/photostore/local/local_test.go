package local

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPhotoStoreSaveAndGet(t *testing.T) {
	tmpdir := t.TempDir()
	store, err := NewLocalPhotoStore(tmpdir)
	require.NoError(t, err)

	ctx := context.Background()
	imageData := []byte("fake png data")

	// Save
	ref, err := store.Save(ctx, "shelf.png", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(ref))
	assert.Equal(t, ".png", filepath.Ext(ref))
	assert.True(t, strings.HasPrefix(filepath.Base(ref), "shelf_"))

	// Get
	reader, mimeType, err := store.Get(ctx, ref)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "image/png", mimeType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestLocalPhotoStoreSave_SameNameTwice(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Save(ctx, "images/a.jpg", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	second, err := store.Save(ctx, "images/a.jpg", bytes.NewReader([]byte("two")))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLocalPhotoStoreGet_FileURIAndOutsidePath(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "camera.jpg")
	require.NoError(t, os.WriteFile(outside, []byte("camera"), 0644))

	for _, ref := range []string{outside, "file://" + outside} {
		reader, mimeType, err := store.Get(context.Background(), ref)
		require.NoError(t, err, ref)
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		_ = reader.Close()
		assert.Equal(t, []byte("camera"), data)
		assert.Equal(t, "image/jpeg", mimeType)
	}
}

func TestLocalPhotoStoreDelete(t *testing.T) {
	tmpdir := t.TempDir()
	store, err := NewLocalPhotoStore(tmpdir)
	require.NoError(t, err)

	ctx := context.Background()
	imageData := []byte("test data")

	// Save
	ref, err := store.Save(ctx, "box.jpg", bytes.NewReader(imageData))
	require.NoError(t, err)

	// Delete
	err = store.Delete(ctx, ref)
	require.NoError(t, err)

	// Verify deleted
	_, _, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalPhotoStoreDelete_RefusesOutsidePath(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "keep.jpg")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0644))

	assert.Error(t, store.Delete(context.Background(), outside))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestLocalPhotoStoreNotFound(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalPhotoStorePathTraversal(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
