package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func spoolTestFile(t *testing.T, name string, contents []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	return path
}

func TestBlobStorage_UploadAndDelete(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	store := newBlobStorage(bucket, "https://media.example.com/", time.Second, nil)

	ctx := context.Background()
	localPath := spoolTestFile(t, "avatar.png", []byte("png-bytes"))

	asset, err := store.Upload(ctx, localPath)
	require.NoError(t, err)
	require.NotNil(t, asset)

	assert.True(t, strings.HasPrefix(asset.URL, "https://media.example.com/"))
	assert.True(t, strings.HasSuffix(asset.Key, ".png"))
	assert.Equal(t, "https://media.example.com/"+asset.Key, asset.URL)

	// The object must exist in the bucket under the returned key.
	data, err := bucket.ReadAll(ctx, asset.Key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	// The spooled local file is consumed by the upload.
	_, err = os.Stat(localPath)
	assert.True(t, os.IsNotExist(err))

	// Delete removes the object.
	require.NoError(t, store.Delete(ctx, asset.Key))

	exists, err := bucket.Exists(ctx, asset.Key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBlobStorage_UploadMissingLocalFile(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	store := newBlobStorage(bucket, "https://media.example.com", time.Second, nil)

	asset, err := store.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Nil(t, asset)
}

func TestBlobStorage_DeleteMissingObject(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	store := newBlobStorage(bucket, "https://media.example.com", time.Second, nil)

	// Deleting an unknown key surfaces an error; compensation paths log it.
	assert.Error(t, store.Delete(context.Background(), "unknown-key"))
}

func TestBlobStorage_DistinctKeysPerUpload(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	store := newBlobStorage(bucket, "https://media.example.com", time.Second, nil)
	ctx := context.Background()

	first, err := store.Upload(ctx, spoolTestFile(t, "a.png", []byte("a")))
	require.NoError(t, err)
	second, err := store.Upload(ctx, spoolTestFile(t, "a.png", []byte("a")))
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
}
