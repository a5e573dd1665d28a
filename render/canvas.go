package render

import (
	"fmt"
	"image/color"
)

// ImageCanvas is the drawing capability the painter depends on. The
// production implementation rasterizes through fogleman/gg; tests substitute
// a recording fake.
type ImageCanvas interface {
	// FillRoundedRect fills a rounded rectangle.
	FillRoundedRect(r Rect, radius float64, c color.NRGBA)
	// FillRect fills a rectangle.
	FillRect(r Rect, c color.NRGBA)
	// StrokeArc strokes a circular arc. Angles are degrees, 0 at three
	// o'clock, increasing clockwise.
	StrokeArc(cx, cy, radius, width, startDeg, sweepDeg float64, c color.NRGBA)
	// Text draws a text run with its baseline at y.
	Text(x, y, size float64, bold bool, s string, c color.NRGBA)
	// TextWidth measures a text run without drawing it.
	TextWidth(size float64, bold bool, s string) float64
	// Encode serializes the canvas to PNG bytes.
	Encode() ([]byte, error)
}

// CanvasFactory creates a canvas of the given size with a filled background.
type CanvasFactory func(width, height int, background color.NRGBA) (ImageCanvas, error)

// RenderError indicates that drawing resources were missing or the canvas
// failed. It is terminal for the request and never retried.
type RenderError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}
