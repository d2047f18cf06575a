package recognition

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestResizeImageShrinksLargeImages(t *testing.T) {
	data, err := ResizeImage(encodePNG(t, 1600, 800), 800)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy(), "aspect ratio must be preserved")
}

func TestResizeImageKeepsSmallImages(t *testing.T) {
	data, err := ResizeImage(encodePNG(t, 100, 50), 800)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestResizeImagePortrait(t *testing.T) {
	data, err := ResizeImage(encodePNG(t, 600, 1200), 800)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 800, img.Bounds().Dy())
}

func TestResizeImageRejectsGarbage(t *testing.T) {
	_, err := ResizeImage([]byte("not an image"), 800)
	assert.Error(t, err)
}
