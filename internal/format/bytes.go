// Package format provides shared numeric and time formatting helpers used by
// the renderer and the config summary. All output is deterministic so tests
// can assert on exact strings.
package format

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Bytes renders a byte count with binary prefixes, e.g. "4.2 GiB".
func Bytes(n uint64) string {
	return humanize.IBytes(n)
}

// Rate renders a bytes-per-second rate, e.g. "1.5 MiB/s".
func Rate(bytesPerSec float64) string {
	if bytesPerSec < 0 {
		bytesPerSec = 0
	}
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

// Percent renders a percentage with one decimal, e.g. "42.5%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// UsedOfTotal renders a used/total pair, e.g. "12 GiB / 31 GiB".
func UsedOfTotal(used, total uint64) string {
	return Bytes(used) + " / " + Bytes(total)
}

// TruncateWithEllipsis truncates a string to maxWidth runes, appending "..."
// if the string exceeds the limit. If maxWidth is less than 4, the string is
// hard-truncated without an ellipsis suffix.
func TruncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}

	if maxWidth < 4 {
		return string(runes[:maxWidth])
	}

	return string(runes[:maxWidth-3]) + "..."
}
