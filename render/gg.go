package render

import (
	"bytes"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ggCanvas rasterizes onto a fogleman/gg context using the embedded Go fonts.
type ggCanvas struct {
	dc      *gg.Context
	regular *sfnt.Font
	bold    *sfnt.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

// NewGGCanvas is the production CanvasFactory.
func NewGGCanvas(width, height int, background color.NRGBA) (ImageCanvas, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, &RenderError{Op: "parse regular font", Err: err}
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, &RenderError{Op: "parse bold font", Err: err}
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	return &ggCanvas{
		dc:      dc,
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

// face returns a cached font.Face for the given size and weight.
func (c *ggCanvas) face(size float64, bold bool) (font.Face, error) {
	key := faceKey{size: size, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}

	src := c.regular
	if bold {
		src = c.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &RenderError{Op: "build font face", Err: err}
	}
	c.faces[key] = f
	return f, nil
}

func (c *ggCanvas) FillRoundedRect(r Rect, radius float64, col color.NRGBA) {
	c.dc.SetColor(col)
	c.dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
	c.dc.Fill()
}

func (c *ggCanvas) FillRect(r Rect, col color.NRGBA) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	c.dc.Fill()
}

func (c *ggCanvas) StrokeArc(cx, cy, radius, width, startDeg, sweepDeg float64, col color.NRGBA) {
	if sweepDeg == 0 {
		return
	}
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.SetLineCapRound()
	start := gg.Radians(startDeg)
	end := gg.Radians(startDeg + sweepDeg)
	c.dc.DrawArc(cx, cy, radius, start, end)
	c.dc.Stroke()
}

func (c *ggCanvas) Text(x, y, size float64, bold bool, s string, col color.NRGBA) {
	f, err := c.face(size, bold)
	if err != nil {
		// Face construction from embedded fonts cannot realistically fail
		// after Parse succeeded; skip the run rather than panic.
		return
	}
	c.dc.SetFontFace(f)
	c.dc.SetColor(col)
	c.dc.DrawString(s, x, y)
}

func (c *ggCanvas) TextWidth(size float64, bold bool, s string) float64 {
	f, err := c.face(size, bold)
	if err != nil {
		return 0
	}
	c.dc.SetFontFace(f)
	w, _ := c.dc.MeasureString(s)
	return w
}

func (c *ggCanvas) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, &RenderError{Op: "encode png", Err: err}
	}
	return buf.Bytes(), nil
}

// Compile-time interface compliance check.
var _ ImageCanvas = (*ggCanvas)(nil)
