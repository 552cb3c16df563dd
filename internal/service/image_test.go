package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/logging"
	"github.com/email-builder/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageService(t *testing.T, baseURL string) (*ImageService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewImageService(upload.NewOptimizer(), upload.NewDiskStore(dir), baseURL, "/uploads", logging.Discard()), dir
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	img.Set(10, 10, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload_NoFile(t *testing.T) {
	svc, dir := newImageService(t, "")

	_, err := svc.Upload(context.Background(), "owner", nil)
	require.ErrorIs(t, err, apperr.ErrBadRequest)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_StoresOptimizedJPEG(t *testing.T) {
	svc, dir := newImageService(t, "https://cdn.example/")

	url, err := svc.Upload(context.Background(), "owner", bytes.NewReader(samplePNG(t)))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.example/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	f, err := os.Open(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestUpload_Undecodable(t *testing.T) {
	svc, dir := newImageService(t, "")

	_, err := svc.Upload(context.Background(), "owner", strings.NewReader("plain text"))
	require.ErrorIs(t, err, apperr.ErrProcessing)
	assert.Equal(t, "Error processing image", apperr.Message(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
