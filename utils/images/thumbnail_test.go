package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestThumbnailFitsLongEdge(t *testing.T) {
	uri, err := Thumbnail(pngBytes(t, 400, 200), "image/png", 100)
	require.NoError(t, err)

	img := decodeDataURI(t, uri)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy(), "aspect ratio preserved")
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	uri, err := Thumbnail(pngBytes(t, 20, 10), "image/png", 100)
	require.NoError(t, err)

	img := decodeDataURI(t, uri)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestThumbnailRejectsNonImages(t *testing.T) {
	_, err := Thumbnail([]byte("%PDF-1.7 not an image"), "application/pdf", 100)
	assert.Error(t, err)

	_, err = Thumbnail(nil, "image/png", 100)
	assert.Error(t, err)

	// Declared image type with garbage bytes still fails at decode.
	_, err = Thumbnail([]byte("garbage"), "image/png", 100)
	assert.Error(t, err)
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "text/plain", DetectMIME("text/plain", []byte("ignored")))
	assert.Empty(t, DetectMIME("", nil))

	sniffed := DetectMIME("", pngBytes(t, 2, 2))
	assert.Contains(t, sniffed, "image/png")
}
