package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-expense-tracker/pkg/apierror"
)

func newTestLocalStore(t *testing.T, maxBytes int64) *LocalStore {
	t.Helper()

	store, err := NewLocalStore(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return store
}

func TestLocalStorePut(t *testing.T) {
	t.Parallel()

	t.Run("writes the file and reports its checksum", func(t *testing.T) {
		store := newTestLocalStore(t, 1024)
		data := []byte("receipt body")

		result, err := store.Put(context.Background(), data, PutMeta{
			UserID:       "u1",
			SourceID:     "evt1",
			OriginalName: "receipt.pdf",
		})
		require.NoError(t, err)

		sum := sha256.Sum256(data)
		require.Equal(t, hex.EncodeToString(sum[:]), result.ChecksumSHA256)
		require.True(t, strings.HasPrefix(result.Key, "u1/evt1/"))
		require.True(t, strings.HasSuffix(result.Key, ".pdf"))

		path, err := store.LocalPath(result.Key)
		require.NoError(t, err)
		written, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, data, written)
	})

	t.Run("keys never collide for identical names", func(t *testing.T) {
		store := newTestLocalStore(t, 1024)
		meta := PutMeta{UserID: "u1", SourceID: "evt1", OriginalName: "scan.png"}

		first, err := store.Put(context.Background(), []byte("a"), meta)
		require.NoError(t, err)
		second, err := store.Put(context.Background(), []byte("b"), meta)
		require.NoError(t, err)
		require.NotEqual(t, first.Key, second.Key)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		store := newTestLocalStore(t, 8)

		_, err := store.Put(context.Background(), []byte("way too large"), PutMeta{
			UserID: "u1", SourceID: "evt1", OriginalName: "big.bin",
		})
		require.Error(t, err)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "FILE_TOO_LARGE", apiErr.Code)
	})

	t.Run("hostile filenames stay inside the base", func(t *testing.T) {
		store := newTestLocalStore(t, 1024)

		result, err := store.Put(context.Background(), []byte("x"), PutMeta{
			UserID: "u1", SourceID: "evt1", OriginalName: "../../../etc/passwd",
		})
		require.NoError(t, err)

		path, err := store.LocalPath(result.Key)
		require.NoError(t, err)
		rel, err := filepath.Rel(store.base, path)
		require.NoError(t, err)
		require.False(t, strings.HasPrefix(rel, ".."))
	})
}

func TestLocalStoreDelete(t *testing.T) {
	t.Parallel()

	store := newTestLocalStore(t, 1024)

	result, err := store.Put(context.Background(), []byte("x"), PutMeta{
		UserID: "u1", SourceID: "evt1", OriginalName: "note.txt",
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "", result.Key))

	path, err := store.LocalPath(result.Key)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Deleting a missing object is not an error.
	require.NoError(t, store.Delete(context.Background(), "", result.Key))
}

func TestLocalStorePresign(t *testing.T) {
	t.Parallel()

	store := newTestLocalStore(t, 1024)
	_, err := store.PresignGet(context.Background(), "", "u1/evt1/file", time.Minute)
	require.Error(t, err)
}
