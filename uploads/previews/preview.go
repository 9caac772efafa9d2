package previews

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Thumbnail resizes an encoded image to width, preserving the aspect ratio,
// and re-encodes it in the source format. Formats imaging cannot write fall
// back to PNG.
func Thumbnail(data []byte, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid width %d", width)
	}

	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		format = imaging.PNG
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Resize while preserving aspect ratio
	preview := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, preview, format); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
