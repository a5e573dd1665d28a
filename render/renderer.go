package render

import (
	"io"
	"log/slog"
	"math"

	"gitlab.com/tinyland/lab/status-pulse/config"
	"gitlab.com/tinyland/lab/status-pulse/metrics"
)

// gaugeStartDeg puts the value arc's origin at twelve o'clock, matching the
// original ring gauges.
const gaugeStartDeg = -90

// Renderer paints snapshots into PNG artifacts. It is stateless apart from
// its canvas factory and safe for concurrent use; rendering is a pure
// function of (snapshot, options).
type Renderer struct {
	newCanvas CanvasFactory
	logger    *slog.Logger
}

// NewRenderer creates a Renderer using the production gg canvas.
// If logger is nil, a no-op logger is used.
func NewRenderer(logger *slog.Logger) *Renderer {
	return NewRendererWithCanvas(NewGGCanvas, logger)
}

// NewRendererWithCanvas creates a Renderer with a custom canvas factory.
// Used by tests to substitute a recording canvas.
func NewRendererWithCanvas(factory CanvasFactory, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{newCanvas: factory, logger: logger}
}

// Render paints the snapshot into a themed PNG. A *RenderError is returned
// when drawing resources are unavailable; the result is never a partial
// image.
func (r *Renderer) Render(snap *metrics.Snapshot, opts config.RenderOptions) ([]byte, error) {
	layout := BuildLayout(snap, opts)
	pal := PaletteFor(opts.Theme)

	canvas, err := r.newCanvas(layout.Width, layout.Height, pal.Background)
	if err != nil {
		return nil, wrapRenderErr("create canvas", err)
	}

	for _, panel := range layout.Panels {
		paintPanel(canvas, panel, pal)
	}
	if layout.ProcessLine != nil {
		paintLine(canvas, *layout.ProcessLine, pal)
	}

	data, err := canvas.Encode()
	if err != nil {
		return nil, wrapRenderErr("encode", err)
	}

	r.logger.Debug("rendered status image",
		slog.Int("width", layout.Width),
		slog.Int("height", layout.Height),
		slog.Int("panels", len(layout.Panels)),
		slog.Int("bytes", len(data)),
	)
	return data, nil
}

// wrapRenderErr ensures callers always see a *RenderError without double
// wrapping errors that already are one.
func wrapRenderErr(op string, err error) error {
	if _, ok := err.(*RenderError); ok {
		return err
	}
	return &RenderError{Op: op, Err: err}
}

func paintPanel(canvas ImageCanvas, panel Panel, pal Palette) {
	canvas.FillRoundedRect(panel.Rect, 10, pal.PanelFill)

	if panel.Title != "" {
		canvas.Text(
			panel.Rect.X+panelPad, panel.Rect.Y+panelPad+14,
			titleSize, true, panel.Title, pal.RoleColor(panel.TitleRole),
		)
	}

	for _, g := range panel.Gauges {
		paintGauge(canvas, g, pal)
	}
	for _, b := range panel.Bars {
		paintBar(canvas, b, pal)
	}
	for _, line := range panel.Lines {
		paintLine(canvas, line, pal)
	}
}

func paintGauge(canvas ImageCanvas, g Gauge, pal Palette) {
	accent := pal.RoleColor(g.Role)

	canvas.StrokeArc(g.CX, g.CY, g.Radius, gaugeStroke, 0, 360, pal.Track)
	canvas.StrokeArc(g.CX, g.CY, g.Radius, gaugeStroke, gaugeStartDeg, fractionSweep(g.Fraction), accent)

	if g.Center != "" {
		w := canvas.TextWidth(titleSize, true, g.Center)
		canvas.Text(g.CX-w/2, g.CY+titleSize*0.35, titleSize, true, g.Center, accent)
	}
}

func paintBar(canvas ImageCanvas, b Bar, pal Palette) {
	accent := pal.RoleColor(b.Role)

	if b.Label != "" {
		canvas.Text(b.Rect.X, b.Rect.Y-5, smallSize, false, b.Label, pal.Text)
	}
	if b.Detail != "" {
		w := canvas.TextWidth(smallSize, false, b.Detail)
		canvas.Text(b.Rect.X+b.Rect.W-w, b.Rect.Y-5, smallSize, false, b.Detail, pal.Muted)
	}

	canvas.FillRoundedRect(b.Rect, b.Rect.H/2, pal.Track)
	fill := b.Rect
	fill.W = b.Rect.W * clampFraction(b.Fraction)
	if fill.W > 0 {
		canvas.FillRoundedRect(fill, fill.H/2, accent)
	}
}

func paintLine(canvas ImageCanvas, line Line, pal Palette) {
	canvas.Text(line.X, line.Y, line.Size, line.Bold, line.Text, pal.RoleColor(line.Role))
}

// fractionSweep converts a usage fraction to an arc sweep in degrees.
func fractionSweep(fraction float64) float64 {
	return clampFraction(fraction) * 360
}

func clampFraction(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
