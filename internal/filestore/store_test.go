package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docshare/internal/config"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
)

func TestLocalStoreOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "a.pdf"), []byte("pdf-bytes"), 0o644))

	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	rc, err := store.Open(context.Background(), "docs/a.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "pdf-bytes", string(data))

	_, err = store.Open(context.Background(), "docs/missing.pdf")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	_, err = store.Open(context.Background(), "../etc/passwd")
	require.Error(t, err)
}

func TestNewRejectsUnknownOrIncomplete(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "local"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "minio", Data: map[string]interface{}{"endpoint": "localhost:9000"}})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "s3", Data: map[string]interface{}{"region": "us-east-1"}})
	require.Error(t, err)
}

func TestMinioStoreConstructs(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "minio", Data: map[string]interface{}{
		"endpoint":   "localhost:9000",
		"access_key": "key",
		"secret_key": "secret",
		"bucket":     "docs",
	}})
	require.NoError(t, err)
	require.Equal(t, "minio", store.Type())
}
