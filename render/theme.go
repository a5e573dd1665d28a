// Package render paints metric snapshots into themed PNG images.
//
// Rendering happens in two stages: BuildLayout computes a pure, deterministic
// Layout value (panel geometry and formatted text) from a snapshot, and
// Renderer paints that layout onto an ImageCanvas. Tests assert on the layout
// structure rather than on raster bytes, which keeps them independent of font
// rasterization differences across platforms.
package render

import (
	"image/color"

	"gitlab.com/tinyland/lab/status-pulse/config"
)

// Role identifies which palette color an element is painted with.
type Role string

const (
	RoleText    Role = "text"
	RoleMuted   Role = "muted"
	RoleCPU     Role = "cpu"
	RoleMemory  Role = "memory"
	RoleSwap    Role = "swap"
	RoleDisk    Role = "disk"
	RoleNetUp   Role = "netup"
	RoleNetDown Role = "netdown"
)

// Palette is the fixed color set for one theme. Themes swap colors only;
// layout geometry is identical across themes.
type Palette struct {
	Background color.NRGBA
	PanelFill  color.NRGBA
	Track      color.NRGBA
	Text       color.NRGBA
	Muted      color.NRGBA
	CPU        color.NRGBA
	Memory     color.NRGBA
	Swap       color.NRGBA
	Disk       color.NRGBA
	NetUp      color.NRGBA
	NetDown    color.NRGBA
}

// Accent colors shared by both themes, carried over from the original kawaii
// status palette.
var (
	accentCPU     = color.NRGBA{R: 84, G: 173, B: 255, A: 255}
	accentMemory  = color.NRGBA{R: 255, G: 179, B: 204, A: 255}
	accentSwap    = color.NRGBA{R: 251, G: 170, B: 147, A: 255}
	accentDisk    = color.NRGBA{R: 184, G: 170, B: 159, A: 255}
	accentNetUp   = color.NRGBA{R: 255, G: 165, B: 0, A: 255}
	accentNetDown = color.NRGBA{R: 135, G: 206, B: 235, A: 255}
)

// lightPalette is the default theme.
var lightPalette = Palette{
	Background: color.NRGBA{R: 250, G: 250, B: 252, A: 255},
	PanelFill:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	Track:      color.NRGBA{R: 228, G: 230, B: 235, A: 255},
	Text:       color.NRGBA{R: 40, G: 44, B: 52, A: 255},
	Muted:      color.NRGBA{R: 130, G: 135, B: 145, A: 255},
	CPU:        accentCPU,
	Memory:     accentMemory,
	Swap:       accentSwap,
	Disk:       accentDisk,
	NetUp:      accentNetUp,
	NetDown:    accentNetDown,
}

// darkPalette mirrors the light layout on a dark background.
var darkPalette = Palette{
	Background: color.NRGBA{R: 24, G: 26, B: 32, A: 255},
	PanelFill:  color.NRGBA{R: 36, G: 39, B: 48, A: 255},
	Track:      color.NRGBA{R: 58, G: 62, B: 74, A: 255},
	Text:       color.NRGBA{R: 225, G: 228, B: 235, A: 255},
	Muted:      color.NRGBA{R: 140, G: 146, B: 158, A: 255},
	CPU:        accentCPU,
	Memory:     accentMemory,
	Swap:       accentSwap,
	Disk:       accentDisk,
	NetUp:      accentNetUp,
	NetDown:    accentNetDown,
}

// PaletteFor returns the palette for a theme. Unknown themes fall back to
// light; config validation rejects them long before rendering.
func PaletteFor(theme config.Theme) Palette {
	if theme == config.ThemeDark {
		return darkPalette
	}
	return lightPalette
}

// RoleColor resolves an element role to its palette color.
func (p Palette) RoleColor(r Role) color.NRGBA {
	switch r {
	case RoleCPU:
		return p.CPU
	case RoleMemory:
		return p.Memory
	case RoleSwap:
		return p.Swap
	case RoleDisk:
		return p.Disk
	case RoleNetUp:
		return p.NetUp
	case RoleNetDown:
		return p.NetDown
	case RoleMuted:
		return p.Muted
	default:
		return p.Text
	}
}
