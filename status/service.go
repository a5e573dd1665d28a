// Package status coordinates the collect, render, and cache stages behind
// the chat-facing status commands. A request first consults the artifact
// cache; on a miss, concurrent requests for the same options collapse into
// a single collect-and-render pass whose result every caller shares.
package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"gitlab.com/tinyland/lab/status-pulse/cache"
	"gitlab.com/tinyland/lab/status-pulse/config"
	"gitlab.com/tinyland/lab/status-pulse/metrics"
)

// Collector produces a point-in-time host snapshot.
type Collector interface {
	Sample(ctx context.Context, opts config.RenderOptions) (*metrics.Snapshot, error)
}

// Renderer turns a snapshot into an encoded PNG artifact.
type Renderer interface {
	Render(snap *metrics.Snapshot, opts config.RenderOptions) ([]byte, error)
}

// Service wires the pipeline stages together and owns the request-level
// policy: cache-first lookup, single-flight rebuilds, and cache lifecycle.
// The render options live behind a lock so callers like the watch TUI can
// retarget the theme while requests are in flight.
type Service struct {
	cfg       *config.Config
	collector Collector
	renderer  Renderer
	store     *cache.Store
	flight    singleflight.Group
	logger    *slog.Logger

	mu   sync.RWMutex
	opts config.RenderOptions
}

// NewService builds a Service from already-constructed stages. The render
// options are snapshotted from cfg; later config mutations are not seen.
func NewService(cfg *config.Config, collector Collector, renderer Renderer, store *cache.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		cfg:       cfg,
		collector: collector,
		renderer:  renderer,
		store:     store,
		logger:    logger,
		opts:      cfg.RenderOptions(),
	}
}

// Options returns the render options currently in effect.
func (s *Service) Options() config.RenderOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// SetTheme switches the palette for subsequent requests. Safe to call
// while requests are in flight; each request reads one consistent options
// value.
func (s *Service) SetTheme(theme config.Theme) {
	s.mu.Lock()
	s.opts.Theme = theme
	s.mu.Unlock()
}

// CacheKey derives the artifact key for a set of render options. All
// requests under the same options share one cached artifact, so the key
// covers every input that changes the rendered output.
func CacheKey(opts config.RenderOptions) cache.Key {
	raw := fmt.Sprintf("status|%s|%t|%t", opts.Theme, opts.ShowNetwork, opts.ShowProcessCount)
	sum := sha256.Sum256([]byte(raw))
	return cache.Key(hex.EncodeToString(sum[:])[:16])
}

// Status returns the current status card as PNG bytes, serving from the
// cache when a fresh artifact exists. Concurrent cache misses for the
// same options trigger exactly one collect-and-render pass.
func (s *Service) Status(ctx context.Context) ([]byte, error) {
	opts := s.Options()
	key := CacheKey(opts)

	if artifact, ok := s.store.Lookup(key); ok {
		s.logger.Debug("cache hit", slog.String("key", string(key)))
		return artifact, nil
	}

	v, err, shared := s.flight.Do(string(key), func() (any, error) {
		// A concurrent flight may have populated the cache while this
		// caller waited for the lock.
		if artifact, ok := s.store.Lookup(key); ok {
			return artifact, nil
		}
		return s.rebuild(ctx, key, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("shared in-flight result", slog.String("key", string(key)))
	}
	return v.([]byte), nil
}

func (s *Service) rebuild(ctx context.Context, key cache.Key, opts config.RenderOptions) ([]byte, error) {
	snap, err := s.collector.Sample(ctx, opts)
	if err != nil {
		return nil, err
	}
	artifact, err := s.renderer.Render(snap, opts)
	if err != nil {
		return nil, err
	}
	s.store.Put(key, artifact, s.cfg.CacheTTL())
	s.logger.Info("rendered status card",
		slog.String("key", string(key)),
		slog.Int("bytes", len(artifact)))
	return artifact, nil
}

// DescribeConfig returns a human-readable summary of the effective
// configuration, including how many artifacts are currently cached.
func (s *Service) DescribeConfig() string {
	opts := s.Options()

	var b strings.Builder
	b.WriteString("status-pulse configuration\n")
	fmt.Fprintf(&b, "  superuser only:     %t\n", s.cfg.OnlySuperuser)
	fmt.Fprintf(&b, "  cache enabled:      %t\n", s.cfg.CacheEnabled)
	fmt.Fprintf(&b, "  cache expiry:       %d min\n", s.cfg.CacheExpireMinutes)
	fmt.Fprintf(&b, "  theme:              %s\n", opts.Theme)
	fmt.Fprintf(&b, "  show network:       %t\n", opts.ShowNetwork)
	fmt.Fprintf(&b, "  show process count: %t\n", opts.ShowProcessCount)
	fmt.Fprintf(&b, "  cached artifacts:   %d", s.store.Len())
	return b.String()
}

// CachedArtifacts reports how many unexpired artifacts are resident in
// the memory layer.
func (s *Service) CachedArtifacts() int {
	return s.store.Len()
}

// ClearCache removes every cached artifact and reports how many were
// dropped.
func (s *Service) ClearCache() int {
	n := s.store.Clear()
	s.logger.Info("cache cleared", slog.Int("removed", n))
	return n
}
