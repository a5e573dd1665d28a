package term

import (
	"os"
	"strconv"

	xterm "github.com/charmbracelet/x/term"
)

// DetectSize returns the terminal dimensions in character cells. TTY
// detection comes first, then COLUMNS/LINES, then an 80x24 default.
func DetectSize() (cols, rows int) {
	return detectSize(func() (int, int, error) {
		return xterm.GetSize(os.Stdout.Fd())
	}, os.Getenv)
}

func detectSize(ttySize func() (int, int, error), getenv environ) (cols, rows int) {
	if w, h, err := ttySize(); err == nil && w > 0 && h > 0 {
		return w, h
	}

	if v := getenv("COLUMNS"); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cols = w
		}
	}
	if v := getenv("LINES"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			rows = h
		}
	}

	if cols == 0 {
		cols = 80
	}
	if rows == 0 {
		rows = 24
	}
	return cols, rows
}
