package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRequest(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	file, header, err := req.FormFile("photo")
	require.NoError(t, err)
	return file, header
}

func TestDiskStoreSavesAllowedFile(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	file, header := uploadRequest(t, "pothole.jpg", []byte("fake image bytes"))
	defer file.Close()

	path, ok, err := store.Save(file, header)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ".jpg", filepath.Ext(path))

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), path))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), data)
}

func TestDiskStoreSkipsDisallowedExtension(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"payload.exe", "script.sh", "noextension"} {
		file, header := uploadRequest(t, name, []byte("data"))
		path, ok, err := store.Save(file, header)
		file.Close()

		// Skipped silently: the upload is dropped, the request succeeds.
		assert.NoError(t, err, name)
		assert.False(t, ok, name)
		assert.Empty(t, path, name)
	}

	entries, err := os.ReadDir(store.BaseDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStoreUniqueNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		file, header := uploadRequest(t, "same.png", []byte("x"))
		path, ok, err := store.Save(file, header)
		file.Close()
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, seen[path], "stored names must not collide")
		seen[path] = true
	}
}
