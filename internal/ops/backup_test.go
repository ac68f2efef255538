package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"tropicalrevolution/internal/persist"
	"tropicalrevolution/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupRestoreSaves_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := store.NewFileStore(filepath.Join(t.TempDir(), "saves"))
	require.NoError(t, err)

	slots := map[string]string{
		persist.Key("0b8d3c1e-1111-4a4a-9c9c-000000000001"): `{"year":1990}`,
		persist.Key("0b8d3c1e-1111-4a4a-9c9c-000000000002"): `{"year":1991,"stats":{"economy":80}}`,
	}
	for k, v := range slots {
		require.NoError(t, src.Put(ctx, k, []byte(v)))
	}
	require.NoError(t, src.Put(ctx, "unrelated", []byte(`{}`)))

	archive := filepath.Join(t.TempDir(), "backups", "saves.tar.gz")
	n, err := BackupSaves(ctx, src, archive)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dst := store.NewMemoryStore()
	n, err = RestoreSaves(ctx, dst, archive)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for k, v := range slots {
		got, err := dst.Get(ctx, k)
		require.NoError(t, err)
		assert.JSONEq(t, v, string(got))
	}
	_, err = dst.Get(ctx, "unrelated")
	assert.ErrorIs(t, err, store.ErrNotFound)

	srcDigest, err := SavesDigest(ctx, src)
	require.NoError(t, err)
	dstDigest, err := SavesDigest(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, srcDigest, dstDigest)
}

func TestRestoreSaves_RejectsForeignEntries(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bad.tar.gz")
	f, err := os.Create(archive)
	require.NoError(t, err)

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	body := []byte("owned")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "../../etc/cron.d/evil",
		Mode: 0o644,
		Size: int64(len(body)),
	}))
	_, err = tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	dst := store.NewMemoryStore()
	_, err = RestoreSaves(context.Background(), dst, archive)
	require.Error(t, err)

	keys, err := dst.Keys(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBackupSaves_RequiresPath(t *testing.T) {
	_, err := BackupSaves(context.Background(), store.NewMemoryStore(), " ")
	assert.Error(t, err)
}
