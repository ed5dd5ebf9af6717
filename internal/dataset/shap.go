// internal/dataset/shap.go
package dataset

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ShapImages maps the public image name to its file name.
var ShapImages = map[string]string{
	"summary-happiness": "shap_summary_happiness.png",
	"dot-happiness":     "shap_dot_happiness.png",
	"summary-stress":    "shap_summary_stress.png",
	"dot-stress":        "shap_dot_stress.png",
}

// ShapTitles are the captions shown on the dashboard.
var ShapTitles = map[string]string{
	"summary-happiness": "Happiness Summary",
	"dot-happiness":     "Happiness Dot",
	"summary-stress":    "Stress Summary",
	"dot-stress":        "Stress Dot",
}

// MaxThumbnailWidth bounds the requested resize width.
const MaxThumbnailWidth = 2000

// Explainability serves the optional SHAP images from a directory.
type Explainability struct {
	dir string
}

// NewExplainability creates a reader over dir.
func NewExplainability(dir string) *Explainability {
	return &Explainability{dir: dir}
}

// Available lists image names that exist on disk.
func (e *Explainability) Available() []string {
	var out []string
	for _, name := range []string{"summary-happiness", "summary-stress", "dot-happiness", "dot-stress"} {
		if _, err := os.Stat(filepath.Join(e.dir, ShapImages[name])); err == nil {
			out = append(out, name)
		}
	}
	return out
}

// Image returns the PNG bytes of a named image. A positive width returns a
// proportionally resized copy.
func (e *Explainability) Image(name string, width int) ([]byte, error) {
	file, ok := ShapImages[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown image %q", ErrNotAvailable, name)
	}
	raw, err := os.ReadFile(filepath.Join(e.dir, file))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	if width <= 0 {
		return raw, nil
	}
	if width > MaxThumbnailWidth {
		width = MaxThumbnailWidth
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return thumbnail(img, width)
}

func thumbnail(img image.Image, width int) ([]byte, error) {
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
