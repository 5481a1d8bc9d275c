package stride

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDiffScreenshotsIdentical(t *testing.T) {
	t.Parallel()

	a := encodePNG(t, solid(20, 10, color.White))
	n, err := DiffScreenshots(a, a, 0.1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDiffScreenshotsMismatch(t *testing.T) {
	t.Parallel()

	base := solid(20, 10, color.White)
	changed := solid(20, 10, color.White)
	for y := 2; y < 8; y++ {
		for x := 2; x < 10; x++ {
			changed.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	n, err := DiffScreenshots(encodePNG(t, base), encodePNG(t, changed), 0.1)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestDiffScreenshotsBadInput(t *testing.T) {
	t.Parallel()

	good := encodePNG(t, solid(4, 4, color.Black))
	_, err := DiffScreenshots([]byte("not a png"), good, 0.1)
	assert.Error(t, err)

	_, err = DiffScreenshots(good, []byte("not a png"), 0.1)
	assert.Error(t, err)
}

func TestSaveArtifact(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "artifacts", "run-1")
	path, err := saveArtifact(dir, "Visit the home page", "png", []byte{1, 2, 3})
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(path), "visit-the-home-page-")
	assert.Equal(t, ".png", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "visit-home", slugify("Visit Home"))
	assert.Equal(t, "step-2-buy", slugify("Step 2: Buy!"))
	assert.Equal(t, "step", slugify("***"))
}
