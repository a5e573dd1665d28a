package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gitlab.com/tinyland/lab/status-pulse/config"
	"gitlab.com/tinyland/lab/status-pulse/metrics"
	"gitlab.com/tinyland/lab/status-pulse/render"
)

// statusService is the surface the dispatcher needs from the pipeline.
type statusService interface {
	Status(ctx context.Context) ([]byte, error)
	DescribeConfig() string
	ClearCache() int
}

// Invocation is one incoming chat command.
type Invocation struct {
	// Command is the raw command word, without any prefix.
	Command string
	// IsSuperuser reports whether the sender holds superuser rights.
	IsSuperuser bool
}

// Reply is what the dispatcher hands back to the chat layer. Exactly one
// of Image and Text is set.
type Reply struct {
	// Image holds an encoded PNG status card.
	Image []byte
	// Text holds a plain-text response.
	Text string
}

// statusAliases are the command words that trigger a status card. The
// CJK forms match what chat users actually type.
var statusAliases = map[string]bool{
	"status": true,
	"状态":     true,
	"运行状态":   true,
}

const (
	cmdConfig     = "status_config"
	cmdClearCache = "status_clear_cache"
)

// Dispatcher routes chat commands to the status service.
type Dispatcher struct {
	svc    statusService
	cfg    *config.Config
	logger *slog.Logger
}

// NewDispatcher wires a dispatcher over an assembled service.
func NewDispatcher(svc statusService, cfg *config.Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{svc: svc, cfg: cfg, logger: logger}
}

// Handles reports whether the command word belongs to this dispatcher.
func (d *Dispatcher) Handles(command string) bool {
	return statusAliases[command] || command == cmdConfig || command == cmdClearCache
}

// Dispatch executes one invocation. Failures come back as user-facing
// text replies; a partial or stale image is never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) Reply {
	if d.cfg.OnlySuperuser && !inv.IsSuperuser {
		d.logger.Info("rejected non-superuser invocation",
			slog.String("command", inv.Command))
		return Reply{Text: "This command is restricted to superusers."}
	}

	switch {
	case statusAliases[inv.Command]:
		return d.handleStatus(ctx)
	case inv.Command == cmdConfig:
		return Reply{Text: d.svc.DescribeConfig()}
	case inv.Command == cmdClearCache:
		n := d.svc.ClearCache()
		return Reply{Text: fmt.Sprintf("Cleared %d cached status card(s).", n)}
	default:
		return Reply{Text: fmt.Sprintf("Unknown command %q.", inv.Command)}
	}
}

func (d *Dispatcher) handleStatus(ctx context.Context) Reply {
	artifact, err := d.svc.Status(ctx)
	if err != nil {
		d.logger.Error("status request failed", slog.String("error", err.Error()))
		return Reply{Text: userMessage(err)}
	}
	return Reply{Image: artifact}
}

// userMessage maps pipeline errors to short chat-friendly text.
func userMessage(err error) string {
	var cerr *metrics.CollectionError
	if errors.As(err, &cerr) {
		return fmt.Sprintf("Could not read host metrics (%s). Try again shortly.", cerr.Op)
	}
	var rerr *render.RenderError
	if errors.As(err, &rerr) {
		return "Could not render the status card. Check the service logs."
	}
	return "Status is unavailable right now. Try again shortly."
}
