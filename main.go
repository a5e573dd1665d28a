// status-pulse renders a host status card for chat bots and terminals.
//
// It samples CPU, memory, disk, and network metrics, draws them as a PNG
// card, and caches the result so repeated status requests within the
// expiry window cost nothing.
//
// Usage:
//
//	status-pulse [flags]
//
// Flags:
//
//	-config string    Path to configuration file (default: ~/.config/status-pulse/config.yaml)
//	-out string       Write the status card PNG to a file
//	-show             Preview the status card inline in the terminal
//	-protocol string  Preview protocol override (kitty|unicode)
//	-watch            Launch the interactive watch TUI
//	-dispatch string  Dispatch a chat command (status|status_config|status_clear_cache)
//	-superuser        Treat the dispatched command as sent by a superuser
//	-describe         Print the effective configuration summary
//	-clear-cache      Remove all cached status cards and exit
//	-theme string     Theme override (light|dark)
//	-verbose          Enable verbose logging
//	-version          Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/tinyland/lab/status-pulse/cache"
	"gitlab.com/tinyland/lab/status-pulse/config"
	"gitlab.com/tinyland/lab/status-pulse/display/term"
	"gitlab.com/tinyland/lab/status-pulse/display/tui"
	"gitlab.com/tinyland/lab/status-pulse/metrics"
	"gitlab.com/tinyland/lab/status-pulse/render"
	"gitlab.com/tinyland/lab/status-pulse/status"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.config/status-pulse/config.yaml)")
		outPath     = flag.String("out", "", "Write the status card PNG to a file")
		show        = flag.Bool("show", false, "Preview the status card inline in the terminal")
		protocol    = flag.String("protocol", "", "Preview protocol override (kitty|unicode)")
		watch       = flag.Bool("watch", false, "Launch the interactive watch TUI")
		dispatchCmd = flag.String("dispatch", "", "Dispatch a chat command (status|status_config|status_clear_cache)")
		superuser   = flag.Bool("superuser", false, "Treat the dispatched command as sent by a superuser")
		describe    = flag.Bool("describe", false, "Print the effective configuration summary")
		clearCache  = flag.Bool("clear-cache", false, "Remove all cached status cards and exit")
		themeFlag   = flag.String("theme", "", "Theme override (light|dark)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("status-pulse %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "status-pulse: %v\n", err)
		os.Exit(1)
	}
	if *themeFlag != "" {
		cfg.Theme = *themeFlag
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "status-pulse: %v\n", err)
			os.Exit(1)
		}
	}

	logger, closeLog, err := setupLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "status-pulse: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	svc, err := assembleService(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "status-pulse: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *describe:
		fmt.Println(svc.DescribeConfig())

	case *clearCache:
		n := svc.ClearCache()
		fmt.Printf("removed %d cached status card(s)\n", n)

	case *dispatchCmd != "":
		d := NewDispatcher(svc, cfg, logger)
		reply := d.Dispatch(ctx, Invocation{Command: *dispatchCmd, IsSuperuser: *superuser})
		if reply.Text != "" {
			fmt.Println(reply.Text)
		} else {
			fmt.Printf("(image reply, %d bytes)\n", len(reply.Image))
		}

	case *watch:
		if err := tui.Run(svc); err != nil {
			fmt.Fprintf(os.Stderr, "status-pulse: %v\n", err)
			os.Exit(1)
		}

	default:
		artifact, err := svc.Status(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "status-pulse: %v\n", err)
			os.Exit(1)
		}
		if err := emitArtifact(artifact, *outPath, *show, *protocol); err != nil {
			fmt.Fprintf(os.Stderr, "status-pulse: %v\n", err)
			os.Exit(1)
		}
	}
}

// assembleService builds the collect, render, cache pipeline from config.
func assembleService(cfg *config.Config, logger *slog.Logger) (*status.Service, error) {
	collector := metrics.NewCollector(metrics.NewSystemSource(), logger)
	renderer := render.NewRenderer(logger)

	store := cache.NewStore(cfg.CacheEnabled, logger)
	if cfg.CacheEnabled && cfg.CacheDir != "" {
		disk, err := cache.NewDiskStore(cfg.CacheDir, cfg.CacheTTL(), cfg.MaxCacheMB, logger)
		if err != nil {
			return nil, err
		}
		store.AttachDisk(disk)
	}

	return status.NewService(cfg, collector, renderer, store, logger), nil
}

// emitArtifact delivers a rendered card to the requested sinks. With no
// -out or -show it writes the raw PNG to stdout so output can be piped.
func emitArtifact(artifact []byte, outPath string, show bool, protocol string) error {
	if outPath != "" {
		if err := os.WriteFile(outPath, artifact, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", outPath, len(artifact))
	}

	if show {
		cfg := term.DefaultPreviewConfig()
		if protocol != "" {
			cfg.Protocol = term.ParseProtocol(protocol)
		}
		preview, err := term.Preview(artifact, cfg)
		if err != nil {
			return err
		}
		fmt.Println(preview)
	}

	if outPath == "" && !show {
		if _, err := os.Stdout.Write(artifact); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	}
	return nil
}

// setupLogger builds the process logger. Verbose enables debug level;
// cfg.LogFile redirects output from stderr to a file.
func setupLogger(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeLog := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeLog = func() { f.Close() }
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeLog, nil
}
