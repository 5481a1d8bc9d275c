package stride

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/orisano/pixelmatch"
)

// CaptureViewport takes a PNG screenshot of the current viewport.
func CaptureViewport(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capturing viewport: %w", err)
	}
	return buf, nil
}

// CaptureFullPage takes a PNG screenshot of the whole page, expanding the
// viewport to the page dimensions for the capture.
func CaptureFullPage(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("capturing full page: %w", err)
	}
	return buf, nil
}

// Screenshot takes a PNG screenshot clipped to the element's border box.
func (h *ElementHandle) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var clip page.Viewport
		if err := callFunctionOnNode(ctx, h.node, getClientRectJS, &clip); err != nil {
			return err
		}

		// The capture command does not handle fractional dimensions
		// properly; round the clip the way puppeteer does.
		x, y := math.Round(clip.X), math.Round(clip.Y)
		clip.Width, clip.Height = math.Round(clip.Width+clip.X-x), math.Round(clip.Height+clip.Y-y)
		clip.X, clip.Y = x, y
		clip.Scale = 1

		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithClip(&clip).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, h.wrap("screenshot", err)
	}
	return buf, nil
}

// DiffScreenshots compares two PNG screenshots pixel by pixel and returns
// the count of pixels differing beyond the threshold. threshold is the
// per-pixel color distance tolerance in [0,1]; 0.1 is a reasonable default.
// The images must have identical dimensions.
func DiffScreenshots(a, b []byte, threshold float64) (int, error) {
	imgA, err := png.Decode(bytes.NewReader(a))
	if err != nil {
		return 0, fmt.Errorf("decoding first screenshot: %w", err)
	}
	imgB, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("decoding second screenshot: %w", err)
	}

	n, err := pixelmatch.MatchPixel(imgA, imgB, pixelmatch.Threshold(threshold))
	if err != nil {
		return 0, fmt.Errorf("comparing screenshots: %w", err)
	}
	return n, nil
}

// saveArtifact writes data under dir with a unique name derived from the
// step name and returns the path.
func saveArtifact(dir, name, ext string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	file := fmt.Sprintf("%s-%s.%s", slugify(name), uuid.NewString()[:8], ext)
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// slugify reduces a step name to a filesystem-friendly token.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "step"
	}
	return s
}

// getClientRectJS returns the element's bounding client rect in page
// coordinates, as a page.Viewport.
const getClientRectJS = `function() {
	const e = this.getBoundingClientRect();
	const t = this.ownerDocument.documentElement.getBoundingClientRect();
	return {
		x: e.left - t.left,
		y: e.top - t.top,
		width: e.width,
		height: e.height,
	};
}`
