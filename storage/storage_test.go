package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploader_UploadAndDelete(t *testing.T) {
	root := t.TempDir()
	u, err := NewLocalUploader(root, "/uploads")
	require.NoError(t, err)

	res, err := u.Upload(context.Background(), "clips/abc.mp4", "video/mp4", strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Equal(t, "clips/abc.mp4", res.Key)
	assert.Equal(t, "/uploads/clips/abc.mp4", res.Location)

	data, err := os.ReadFile(filepath.Join(root, "clips", "abc.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))

	require.NoError(t, u.Delete(context.Background(), "clips/abc.mp4"))
	_, err = os.Stat(filepath.Join(root, "clips", "abc.mp4"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, u.Delete(context.Background(), "clips/abc.mp4"), "deleting a missing object is not an error")
}

func TestLocalUploader_RejectsEscapingKeys(t *testing.T) {
	u, err := NewLocalUploader(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), "../outside.mp4", "video/mp4", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = u.Upload(context.Background(), "", "video/mp4", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestJoinPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/logos/a.png", joinPublicURL("https://cdn.example.com", "logos/a.png"))
	assert.Equal(t, "https://cdn.example.com/media/logos/a.png", joinPublicURL("https://cdn.example.com/media/", "/logos/a.png"))
	assert.Equal(t, "", joinPublicURL("", "logos/a.png"))
}

func TestR2Config_Complete(t *testing.T) {
	assert.False(t, CloudflareR2UploaderConfig{AccountID: "a"}.Complete())
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "a"})
	assert.Error(t, err)
}
