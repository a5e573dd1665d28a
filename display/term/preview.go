package term

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	// Register decoders for the formats a status card may arrive in.
	_ "image/jpeg"
	_ "image/png"
)

// kittyChunkSize is the maximum number of base64 bytes per Kitty chunk.
const kittyChunkSize = 4096

// PreviewConfig controls inline rendering of a status card.
type PreviewConfig struct {
	// Protocol is the image mechanism to use.
	Protocol Protocol
	// MaxCols is the maximum width in terminal columns.
	MaxCols int
	// MaxRows is the maximum height in terminal rows.
	MaxRows int
}

// DefaultPreviewConfig detects the protocol and sizes the preview to
// the current terminal, leaving a little margin for the shell prompt.
func DefaultPreviewConfig() PreviewConfig {
	cols, rows := DetectSize()
	if rows > 4 {
		rows -= 2
	}
	return PreviewConfig{
		Protocol: DetectProtocol(),
		MaxCols:  cols,
		MaxRows:  rows,
	}
}

// Preview converts encoded image bytes into the escape sequences (or
// unicode art) for the configured protocol.
func Preview(imageData []byte, cfg PreviewConfig) (string, error) {
	switch cfg.Protocol {
	case ProtocolKitty:
		return previewKitty(imageData, cfg.MaxCols, cfg.MaxRows)
	case ProtocolUnicode:
		return previewUnicode(imageData, cfg.MaxCols, cfg.MaxRows)
	default:
		return "(inline images not supported by this terminal)", nil
	}
}

// previewKitty emits the image via the Kitty Graphics Protocol, base64
// encoded and chunked into segments of at most kittyChunkSize bytes.
func previewKitty(imageData []byte, cols, rows int) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("term: empty image data")
	}

	encoded := base64.StdEncoding.EncodeToString(imageData)

	var b strings.Builder
	if len(encoded) <= kittyChunkSize {
		// m=0 marks the only (and last) chunk.
		fmt.Fprintf(&b, "\033_Gf=100,a=T,t=d,c=%d,r=%d,m=0;%s\033\\", cols, rows, encoded)
		return b.String(), nil
	}

	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := i + kittyChunkSize
		if end > len(encoded) {
			end = len(encoded)
		}
		chunk := encoded[i:end]
		isLast := end >= len(encoded)

		switch {
		case i == 0:
			// The first chunk carries all metadata.
			fmt.Fprintf(&b, "\033_Gf=100,a=T,t=d,c=%d,r=%d,m=1;%s\033\\", cols, rows, chunk)
		case isLast:
			fmt.Fprintf(&b, "\033_Gm=0;%s\033\\", chunk)
		default:
			fmt.Fprintf(&b, "\033_Gm=1;%s\033\\", chunk)
		}
	}
	return b.String(), nil
}

// previewUnicode decodes and resizes the image, then paints it with the
// upper half-block character. Each text row covers two pixel rows: the
// foreground color holds the top pixel, the background the bottom.
func previewUnicode(imageData []byte, cols, rows int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("term: decode preview image: %w", err)
	}

	resized := imaging.Fit(img, cols, rows*2, imaging.Lanczos)
	bounds := resized.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	var b strings.Builder
	for y := 0; y < h; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			topR, topG, topB := rgb8(resized.At(bounds.Min.X+x, bounds.Min.Y+y))

			var botR, botG, botB uint8
			if y+1 < h {
				botR, botG, botB = rgb8(resized.At(bounds.Min.X+x, bounds.Min.Y+y+1))
			}

			fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀\033[0m",
				topR, topG, topB, botR, botG, botB)
		}
	}
	return b.String(), nil
}

func rgb8(c color.Color) (r, g, b uint8) {
	r32, g32, b32, _ := c.RGBA()
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
}
