// Package cache stores rendered status artifacts with per-key TTL.
//
// The primary store is in-memory; an optional on-disk mirror keeps artifact
// bytes across process restarts as a pure size/latency optimization with
// identical TTL semantics. Neither layer retains history: at most one
// artifact per key at a time.
package cache

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Key identifies a renderable configuration (theme plus visible panels),
// not a point in time.
type Key string

// CacheError indicates an internal store fault. It never surfaces to users;
// callers log it and degrade to rendering fresh.
type CacheError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// entry is one cached artifact with its expiry metadata.
type entry struct {
	artifact  []byte
	createdAt time.Time
	expiresAt time.Time
}

// Store is a mutex-protected TTL cache mapping keys to artifact bytes.
// Expired entries are evicted lazily at lookup time. When administratively
// disabled, Lookup always misses and Put is a no-op.
type Store struct {
	mu      sync.Mutex
	entries map[Key]entry
	enabled bool
	disk    *DiskStore
	logger  *slog.Logger

	// timeNow is wrapped for testing TTL expiry.
	timeNow func() time.Time
}

// NewStore creates a Store. If logger is nil, a no-op logger is used.
func NewStore(enabled bool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		entries: make(map[Key]entry),
		enabled: enabled,
		logger:  logger,
		timeNow: time.Now,
	}
}

// AttachDisk adds an on-disk artifact mirror. Disk faults are logged and
// never fail a request.
func (s *Store) AttachDisk(d *DiskStore) {
	s.mu.Lock()
	s.disk = d
	s.mu.Unlock()
}

// Enabled reports whether caching is administratively enabled.
func (s *Store) Enabled() bool {
	return s.enabled
}

// Lookup returns the cached artifact for key if one exists and has not
// expired. An expired entry is evicted and reported as a miss. On a memory
// miss the disk mirror is consulted with the lock released, so a slow disk
// read never blocks lookups for other keys; a fresh disk artifact then
// repopulates the memory layer with its remaining TTL. Callers must treat
// the returned bytes as immutable.
func (s *Store) Lookup(key Key) ([]byte, bool) {
	if !s.enabled {
		return nil, false
	}

	s.mu.Lock()
	now := s.timeNow()
	if e, ok := s.entries[key]; ok {
		if now.Before(e.expiresAt) {
			s.mu.Unlock()
			return e.artifact, true
		}
		delete(s.entries, key)
		s.logger.Debug("evicted expired entry", slog.String("key", string(key)))
	}
	disk := s.disk
	s.mu.Unlock()

	if disk == nil {
		return nil, false
	}

	data, remaining, ok, err := disk.Get(key)
	if err != nil {
		s.logger.Warn("disk mirror degraded", slog.String("error", (&CacheError{Op: "disk get", Err: err}).Error()))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A writer may have repopulated the key while the lock was released;
	// its entry is newer than the mirror and wins.
	now = s.timeNow()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.artifact, true
	}
	s.entries[key] = entry{
		artifact:  data,
		createdAt: now,
		expiresAt: now.Add(remaining),
	}
	return data, true
}

// Put stores an artifact under key, overwriting any existing entry and
// setting its expiry to now + ttl. A non-positive ttl or a disabled store
// makes Put a no-op, since such entries could never be served.
func (s *Store) Put(key Key, artifact []byte, ttl time.Duration) {
	if !s.enabled || ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeNow()
	s.entries[key] = entry{
		artifact:  artifact,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}

	if s.disk != nil {
		if err := s.disk.Put(key, artifact); err != nil {
			s.logger.Warn("disk mirror degraded", slog.String("error", (&CacheError{Op: "disk put", Err: err}).Error()))
		}
	}
}

// Clear removes all entries from both layers and returns the number of
// cached artifacts removed. The disk mirror holds the same keys as memory
// plus any survivors from a previous process, so the larger side is the
// artifact count; summing would double-count mirrored entries.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)
	s.entries = make(map[Key]entry)

	if s.disk != nil {
		diskRemoved, err := s.disk.Clear()
		if err != nil {
			s.logger.Warn("disk mirror degraded", slog.String("error", (&CacheError{Op: "disk clear", Err: err}).Error()))
		} else if diskRemoved > removed {
			removed = diskRemoved
		}
	}

	return removed
}

// Len returns the number of live (unexpired) entries in the memory layer.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeNow()
	n := 0
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}
