package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"
)

// recordingCanvas captures draw calls for structural assertions.
type recordingCanvas struct {
	rects     int
	arcs      int
	texts     []string
	encodeErr error
}

func (c *recordingCanvas) FillRoundedRect(r Rect, radius float64, col color.NRGBA) { c.rects++ }
func (c *recordingCanvas) FillRect(r Rect, col color.NRGBA)                        { c.rects++ }
func (c *recordingCanvas) StrokeArc(cx, cy, radius, width, startDeg, sweepDeg float64, col color.NRGBA) {
	c.arcs++
}
func (c *recordingCanvas) Text(x, y, size float64, bold bool, s string, col color.NRGBA) {
	c.texts = append(c.texts, s)
}
func (c *recordingCanvas) TextWidth(size float64, bold bool, s string) float64 {
	return float64(len(s)) * size * 0.5
}
func (c *recordingCanvas) Encode() ([]byte, error) {
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	return []byte("png"), nil
}

func recordingFactory(c *recordingCanvas) CanvasFactory {
	return func(width, height int, background color.NRGBA) (ImageCanvas, error) {
		return c, nil
	}
}

func TestRenderPaintsEveryPanel(t *testing.T) {
	canvas := &recordingCanvas{}
	r := NewRendererWithCanvas(recordingFactory(canvas), nil)

	data, err := r.Render(syntheticSnapshot(true, true), lightOptions(true, true))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty artifact")
	}

	// Ring gauge paints a track arc and a value arc.
	if canvas.arcs != 2 {
		t.Errorf("arcs = %d, want 2", canvas.arcs)
	}

	wantTexts := []string{"box", "CPU", "Memory", "Disk", "Network", "43%", "321 processes"}
	for _, want := range wantTexts {
		found := false
		for _, got := range canvas.texts {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("text %q was not painted; painted: %v", want, canvas.texts)
		}
	}
}

func TestRenderOmittedPanelsNotPainted(t *testing.T) {
	canvas := &recordingCanvas{}
	r := NewRendererWithCanvas(recordingFactory(canvas), nil)

	if _, err := r.Render(syntheticSnapshot(false, false), lightOptions(false, false)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, got := range canvas.texts {
		if got == "Network" || got == "321 processes" {
			t.Errorf("unexpected text %q painted", got)
		}
	}
}

func TestRenderCanvasFailureIsRenderError(t *testing.T) {
	factory := func(width, height int, background color.NRGBA) (ImageCanvas, error) {
		return nil, errors.New("no framebuffer")
	}
	r := NewRendererWithCanvas(factory, nil)

	_, err := r.Render(syntheticSnapshot(true, true), lightOptions(true, true))
	var rendErr *RenderError
	if !errors.As(err, &rendErr) {
		t.Fatalf("expected *RenderError, got %v", err)
	}
}

func TestRenderEncodeFailureIsRenderError(t *testing.T) {
	canvas := &recordingCanvas{encodeErr: errors.New("disk full")}
	r := NewRendererWithCanvas(recordingFactory(canvas), nil)

	_, err := r.Render(syntheticSnapshot(true, true), lightOptions(true, true))
	var rendErr *RenderError
	if !errors.As(err, &rendErr) {
		t.Fatalf("expected *RenderError, got %v", err)
	}
}

func TestRenderProducesDecodablePNG(t *testing.T) {
	r := NewRenderer(nil)

	data, err := r.Render(syntheticSnapshot(true, true), lightOptions(true, true))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("artifact is not a valid PNG: %v", err)
	}

	layout := BuildLayout(syntheticSnapshot(true, true), lightOptions(true, true))
	bounds := img.Bounds()
	if bounds.Dx() != layout.Width || bounds.Dy() != layout.Height {
		t.Errorf("image %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), layout.Width, layout.Height)
	}
}

func TestRenderDarkThemeChangesPixelsOnly(t *testing.T) {
	r := NewRenderer(nil)

	light, err := r.Render(syntheticSnapshot(true, true), lightOptions(true, true))
	if err != nil {
		t.Fatalf("light render: %v", err)
	}
	darkOpts := lightOptions(true, true)
	darkOpts.Theme = "dark"
	dark, err := r.Render(syntheticSnapshot(true, true), darkOpts)
	if err != nil {
		t.Fatalf("dark render: %v", err)
	}

	lightImg, err := png.Decode(bytes.NewReader(light))
	if err != nil {
		t.Fatalf("decode light: %v", err)
	}
	darkImg, err := png.Decode(bytes.NewReader(dark))
	if err != nil {
		t.Fatalf("decode dark: %v", err)
	}
	if lightImg.Bounds() != darkImg.Bounds() {
		t.Error("themes must not change image dimensions")
	}
	if bytes.Equal(light, dark) {
		t.Error("themes should produce different pixels")
	}
}
