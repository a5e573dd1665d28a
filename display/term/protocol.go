// Package term renders encoded status cards inline in the terminal. It
// speaks the Kitty Graphics Protocol where the emulator supports it and
// falls back to unicode half-blocks with ANSI 24-bit color everywhere
// else.
package term

import (
	"os"
	"strings"
)

// Protocol identifies which inline image mechanism to use.
type Protocol int

const (
	// ProtocolKitty uses the Kitty Graphics Protocol (Ghostty, Kitty, WezTerm).
	ProtocolKitty Protocol = iota
	// ProtocolUnicode uses half-block characters with ANSI 24-bit color.
	ProtocolUnicode
	// ProtocolNone disables inline rendering.
	ProtocolNone
)

// String returns the human-readable name of the protocol.
func (p Protocol) String() string {
	switch p {
	case ProtocolKitty:
		return "kitty"
	case ProtocolUnicode:
		return "unicode"
	case ProtocolNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseProtocol maps a protocol name to its value. Unknown names map to
// ProtocolNone.
func ParseProtocol(name string) Protocol {
	switch strings.ToLower(name) {
	case "kitty":
		return ProtocolKitty
	case "unicode":
		return ProtocolUnicode
	default:
		return ProtocolNone
	}
}

// environ abstracts os.Getenv so detection is testable.
type environ func(string) string

// DetectProtocol inspects the environment to pick the best supported
// protocol. It is SSH-aware: TERM_PROGRAM and KITTY_WINDOW_ID are often
// inherited over SSH, but the Kitty Graphics Protocol does not survive
// the transport, so SSH sessions always get unicode half-blocks.
func DetectProtocol() Protocol {
	return detectProtocol(os.Getenv)
}

func detectProtocol(getenv environ) Protocol {
	if isSSHSession(getenv) {
		return ProtocolUnicode
	}

	switch strings.ToLower(getenv("TERM_PROGRAM")) {
	case "ghostty", "kitty", "wezterm":
		return ProtocolKitty
	}
	if getenv("TERM") == "xterm-kitty" {
		return ProtocolKitty
	}
	if getenv("KITTY_WINDOW_ID") != "" {
		return ProtocolKitty
	}

	return ProtocolUnicode
}

// isSSHSession reports whether we are running inside an SSH session.
func isSSHSession(getenv environ) bool {
	return getenv("SSH_CLIENT") != "" || getenv("SSH_CONNECTION") != "" ||
		getenv("SSH_TTY") != ""
}
