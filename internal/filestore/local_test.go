package filestore

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/qaforge/internal/config"
)

func newLocalTestStore(t *testing.T, scope string) Store {
	t.Helper()
	store, err := New(config.FileStoreConfig{Type: "local", Dir: t.TempDir()}, scope)
	require.NoError(t, err)
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newLocalTestStore(t, "")

	payload := []byte("# Checkout Guide\n\nApply the coupon before paying.")
	require.NoError(t, store.Save(ctx, "guide.md", BytesReader(payload), int64(len(payload))))

	rc, err := store.Open(ctx, "guide.md")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestLocalStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newLocalTestStore(t, "")

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, store.Save(ctx, "a.txt", BytesReader([]byte("a")), 1))
	require.NoError(t, store.Save(ctx, "b.txt", BytesReader([]byte("bb")), 2))

	entries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	keys := []string{entries[0].Key, entries[1].Key}
	require.ElementsMatch(t, []string{"a.txt", "b.txt"}, keys)
	for _, entry := range entries {
		require.WithinDuration(t, time.Now(), entry.ModTime, time.Minute)
	}

	require.NoError(t, store.Delete(ctx, "a.txt"))
	require.NoError(t, store.Delete(ctx, "a.txt"))

	entries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "b.txt", entries[0].Key)
}

func TestLocalStoreScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	uploads, err := New(config.FileStoreConfig{Type: "local", Dir: dir}, "uploads")
	require.NoError(t, err)
	scripts, err := New(config.FileStoreConfig{Type: "local", Dir: dir}, "scripts")
	require.NoError(t, err)

	require.NoError(t, uploads.Save(ctx, "doc.md", BytesReader([]byte("doc")), 3))
	require.NoError(t, scripts.Save(ctx, "tc_001.py", BytesReader([]byte("pass")), 4))

	entries, err := uploads.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "doc.md", entries[0].Key)

	_, err = uploads.Open(ctx, "tc_001.py")
	require.Error(t, err)
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	store := newLocalTestStore(t, "")

	require.Error(t, store.Save(ctx, "../escape.txt", BytesReader([]byte("x")), 1))
	require.Error(t, store.Save(ctx, "", BytesReader([]byte("x")), 1))
	_, err := store.Open(ctx, "a/b.txt")
	require.Error(t, err)
	require.Error(t, store.Delete(ctx, "a\\b.txt"))
}

func TestUnsupportedStoreType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"}, "")
	require.Error(t, err)
}
