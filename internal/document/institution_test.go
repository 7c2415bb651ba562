package document

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareLogo_Downscales(t *testing.T) {
	out, err := PrepareLogo(testPNG(t, 1000, 500))
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, logoMaxSide, cfg.Width)
	assert.Equal(t, logoMaxSide/2, cfg.Height)
}

func TestPrepareLogo_SmallKept(t *testing.T) {
	out, err := PrepareLogo(testPNG(t, 64, 32))
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestPrepareLogo_Invalid(t *testing.T) {
	_, err := PrepareLogo([]byte("not an image"))
	assert.Error(t, err)

	out, err := PrepareLogo(nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestLoadLogo_EmptyPath(t *testing.T) {
	out, err := LoadLogo("")
	assert.NoError(t, err)
	assert.Nil(t, out)
}
