package render

import (
	"fmt"

	"gitlab.com/tinyland/lab/status-pulse/config"
	"gitlab.com/tinyland/lab/status-pulse/internal/format"
	"gitlab.com/tinyland/lab/status-pulse/metrics"
)

// Fixed geometry, identical for every theme.
const (
	layoutWidth  = 880
	layoutMargin = 24
	panelGap     = 16
	panelPad     = 18

	titleSize  = 19
	textSize   = 15
	smallSize  = 13
	headerSize = 26

	gaugeRadius = 46
	gaugeStroke = 13

	coreRowH = 22
	barRowH  = 40
	lineH    = 24
)

// Rect is an axis-aligned rectangle in image coordinates.
type Rect struct {
	X, Y, W, H float64
}

// PanelKind identifies one of the fixed panel types.
type PanelKind string

const (
	PanelHeader  PanelKind = "header"
	PanelCPU     PanelKind = "cpu"
	PanelMemory  PanelKind = "memory"
	PanelDisk    PanelKind = "disk"
	PanelNetwork PanelKind = "network"
)

// Gauge is a ring gauge: a circular track with a value arc starting at
// twelve o'clock, and a centered value label.
type Gauge struct {
	CX, CY, Radius float64
	Fraction       float64
	Center         string
	Role           Role
}

// Bar is a horizontal usage bar with an optional label above-left and an
// optional detail string above-right. Rect is the bar track itself.
type Bar struct {
	Rect     Rect
	Fraction float64
	Label    string
	Detail   string
	Role     Role
}

// Line is a positioned text run. Y is the text baseline.
type Line struct {
	X, Y float64
	Size float64
	Bold bool
	Text string
	Role Role
}

// Panel is one rendered section of the status image.
type Panel struct {
	Kind      PanelKind
	Title     string
	TitleRole Role
	Rect      Rect
	Gauges    []Gauge
	Bars      []Bar
	Lines     []Line
}

// Layout is the complete deterministic description of one rendered image.
type Layout struct {
	Width  int
	Height int
	Panels []Panel
	// ProcessLine is present iff the process count was requested.
	ProcessLine *Line
}

// PanelKinds returns the ordered panel kinds, for structural assertions.
func (l *Layout) PanelKinds() []PanelKind {
	kinds := make([]PanelKind, len(l.Panels))
	for i, p := range l.Panels {
		kinds[i] = p.Kind
	}
	return kinds
}

// BuildLayout composes the panel layout for a snapshot. It is a pure
// function: equal inputs produce equal layouts. The declared panel set is
// {header, cpu, memory, disk} plus network iff the options request it and
// the snapshot carries network data, plus a trailing process-count line
// under the same rule for the process count. A collector honoring the same
// options always populates both; the double gate keeps a mismatched
// snapshot from rendering data the options excluded.
func BuildLayout(snap *metrics.Snapshot, opts config.RenderOptions) *Layout {
	innerW := float64(layoutWidth - 2*layoutMargin)
	contentW := innerW - 2*panelPad

	layout := &Layout{Width: layoutWidth}
	y := float64(layoutMargin)

	y = appendHeaderPanel(layout, snap, y, innerW)
	y = appendCPUPanel(layout, snap, y, innerW, contentW)
	y = appendMemoryPanel(layout, snap, y, innerW, contentW)
	y = appendDiskPanel(layout, snap, y, innerW, contentW)
	if opts.ShowNetwork && snap.Network != nil {
		y = appendNetworkPanel(layout, snap, y, innerW)
	}

	if opts.ShowProcessCount && snap.ProcessCount != nil {
		layout.ProcessLine = &Line{
			X:    layoutMargin + 4,
			Y:    y + 18,
			Size: smallSize,
			Text: fmt.Sprintf("%d processes", *snap.ProcessCount),
			Role: RoleMuted,
		}
		y += 28
	}

	layout.Height = int(y + layoutMargin)
	return layout
}

func appendHeaderPanel(layout *Layout, snap *metrics.Snapshot, y, innerW float64) float64 {
	const h = 92
	rect := Rect{X: layoutMargin, Y: y, W: innerW, H: h}

	platform := snap.Host.Platform
	if platform == "" {
		platform = snap.Host.OS
	}
	sub := fmt.Sprintf("%s %s", platform, snap.Host.PlatformVersion)
	if snap.Host.Arch != "" {
		sub += " · " + snap.Host.Arch
	}
	sub += " · up " + format.Uptime(snap.Host.UptimeSeconds)

	layout.Panels = append(layout.Panels, Panel{
		Kind: PanelHeader,
		Rect: rect,
		Lines: []Line{
			{
				X: rect.X + panelPad, Y: rect.Y + panelPad + 24,
				Size: headerSize, Bold: true,
				Text: snap.Host.Hostname, Role: RoleText,
			},
			{
				X: rect.X + panelPad, Y: rect.Y + panelPad + 52,
				Size: textSize - 1,
				Text: sub, Role: RoleMuted,
			},
		},
	})
	return y + h + panelGap
}

func appendCPUPanel(layout *Layout, snap *metrics.Snapshot, y, innerW, contentW float64) float64 {
	coreRows := (snap.CPU.Cores + 1) / 2
	gaugeArea := 112.0
	h := panelPad + 26 + gaugeArea + 10 + float64(coreRows)*coreRowH + panelPad
	rect := Rect{X: layoutMargin, Y: y, W: innerW, H: h}

	gaugeTop := rect.Y + panelPad + 26
	gauge := Gauge{
		CX: rect.X + panelPad + 54, CY: gaugeTop + 54, Radius: gaugeRadius,
		Fraction: snap.CPU.OverallPercent / 100,
		Center:   fmt.Sprintf("%.0f%%", snap.CPU.OverallPercent),
		Role:     RoleCPU,
	}

	idX := rect.X + panelPad + 134
	idLine := fmt.Sprintf("%d cores", snap.CPU.Cores)
	if snap.CPU.FrequencyMHz > 0 {
		idLine = fmt.Sprintf("%d cores @ %.2f GHz", snap.CPU.Cores, snap.CPU.FrequencyMHz/1000)
	}
	lines := []Line{
		{X: idX, Y: gaugeTop + 34, Size: textSize, Text: format.TruncateWithEllipsis(snap.CPU.Model, 48), Role: RoleText},
		{X: idX, Y: gaugeTop + 58, Size: smallSize, Text: idLine, Role: RoleMuted},
	}

	// Per-core bars in two columns, filling rows left to right.
	const colGap = 24
	colW := (contentW - colGap) / 2
	barsTop := gaugeTop + gaugeArea + 10
	bars := make([]Bar, 0, snap.CPU.Cores)
	for i, pct := range snap.CPU.PerCore {
		col := float64(i % 2)
		row := float64(i / 2)
		bars = append(bars, Bar{
			Rect: Rect{
				X: rect.X + panelPad + col*(colW+colGap),
				Y: barsTop + row*coreRowH + 13,
				W: colW,
				H: 7,
			},
			Fraction: pct / 100,
			Label:    fmt.Sprintf("c%d", i),
			Detail:   format.Percent(pct),
			Role:     RoleCPU,
		})
	}

	layout.Panels = append(layout.Panels, Panel{
		Kind:      PanelCPU,
		Title:     "CPU",
		TitleRole: RoleCPU,
		Rect:      rect,
		Gauges:    []Gauge{gauge},
		Bars:      bars,
		Lines:     lines,
	})
	return y + h + panelGap
}

func appendMemoryPanel(layout *Layout, snap *metrics.Snapshot, y, innerW, contentW float64) float64 {
	barCount := 1
	if snap.Swap.TotalBytes > 0 {
		barCount = 2
	}
	h := panelPad + 26 + float64(barCount)*barRowH + panelPad
	rect := Rect{X: layoutMargin, Y: y, W: innerW, H: h}
	barsTop := rect.Y + panelPad + 26

	bars := []Bar{{
		Rect:     Rect{X: rect.X + panelPad, Y: barsTop + 18, W: contentW, H: 10},
		Fraction: snap.Memory.Percent / 100,
		Label:    "RAM",
		Detail: fmt.Sprintf("%s (%s)",
			format.UsedOfTotal(snap.Memory.UsedBytes, snap.Memory.TotalBytes),
			format.Percent(snap.Memory.Percent)),
		Role: RoleMemory,
	}}

	if snap.Swap.TotalBytes > 0 {
		bars = append(bars, Bar{
			Rect:     Rect{X: rect.X + panelPad, Y: barsTop + barRowH + 18, W: contentW, H: 10},
			Fraction: snap.Swap.Percent / 100,
			Label:    "Swap",
			Detail: fmt.Sprintf("%s (%s)",
				format.UsedOfTotal(snap.Swap.UsedBytes, snap.Swap.TotalBytes),
				format.Percent(snap.Swap.Percent)),
			Role: RoleSwap,
		})
	}

	layout.Panels = append(layout.Panels, Panel{
		Kind:      PanelMemory,
		Title:     "Memory",
		TitleRole: RoleMemory,
		Rect:      rect,
		Bars:      bars,
	})
	return y + h + panelGap
}

func appendDiskPanel(layout *Layout, snap *metrics.Snapshot, y, innerW, contentW float64) float64 {
	rows := len(snap.Disk)
	if rows == 0 {
		rows = 1
	}
	h := panelPad + 26 + float64(rows)*barRowH + panelPad
	rect := Rect{X: layoutMargin, Y: y, W: innerW, H: h}
	barsTop := rect.Y + panelPad + 26

	var bars []Bar
	var lines []Line
	if len(snap.Disk) == 0 {
		lines = append(lines, Line{
			X: rect.X + panelPad, Y: barsTop + 20,
			Size: textSize, Text: "no readable mounts", Role: RoleMuted,
		})
	}
	for i, d := range snap.Disk {
		bars = append(bars, Bar{
			Rect:     Rect{X: rect.X + panelPad, Y: barsTop + float64(i)*barRowH + 18, W: contentW, H: 10},
			Fraction: d.Percent / 100,
			Label:    format.TruncateWithEllipsis(d.Mount, 28),
			Detail: fmt.Sprintf("%s (%s)",
				format.UsedOfTotal(d.UsedBytes, d.TotalBytes),
				format.Percent(d.Percent)),
			Role: RoleDisk,
		})
	}

	layout.Panels = append(layout.Panels, Panel{
		Kind:      PanelDisk,
		Title:     "Disk",
		TitleRole: RoleDisk,
		Rect:      rect,
		Bars:      bars,
		Lines:     lines,
	})
	return y + h + panelGap
}

func appendNetworkPanel(layout *Layout, snap *metrics.Snapshot, y, innerW float64) float64 {
	h := float64(panelPad + 26 + 2*lineH + panelPad)
	rect := Rect{X: layoutMargin, Y: y, W: innerW, H: h}
	top := rect.Y + panelPad + 26
	net := snap.Network

	layout.Panels = append(layout.Panels, Panel{
		Kind:      PanelNetwork,
		Title:     "Network",
		TitleRole: RoleNetDown,
		Rect:      rect,
		Lines: []Line{
			{
				X: rect.X + panelPad, Y: top + 18, Size: textSize,
				Text: fmt.Sprintf("↑ sent %s · %s", format.Bytes(net.BytesSent), format.Rate(net.SendRate)),
				Role: RoleNetUp,
			},
			{
				X: rect.X + panelPad, Y: top + 18 + lineH, Size: textSize,
				Text: fmt.Sprintf("↓ received %s · %s", format.Bytes(net.BytesRecv), format.Rate(net.RecvRate)),
				Role: RoleNetDown,
			},
		},
	})
	return y + h + panelGap
}
