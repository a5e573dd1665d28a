package cache

import (
	"bytes"
	"sync"
	"testing"
	"time"
)

// fakeClock drives a Store's notion of now for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s := NewStore(true, nil)
	s.timeNow = clock.Now
	return s, clock
}

func TestPutThenLookupHits(t *testing.T) {
	s, _ := newTestStore(t)
	artifact := []byte("png-bytes")

	s.Put("k", artifact, 5*time.Minute)

	got, ok := s.Lookup("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if !bytes.Equal(got, artifact) {
		t.Errorf("artifact = %q, want %q", got, artifact)
	}
}

func TestLookupMissesAfterTTL(t *testing.T) {
	s, clock := newTestStore(t)
	s.Put("k", []byte("a"), 5*time.Minute)

	clock.Advance(5*time.Minute + time.Second)

	if _, ok := s.Lookup("k"); ok {
		t.Fatal("expected miss after expiry")
	}
	// Expired entry was lazily evicted, not just hidden.
	if n := len(s.entries); n != 0 {
		t.Errorf("entries after expired lookup = %d, want 0", n)
	}
}

func TestPutOverwritesExisting(t *testing.T) {
	s, _ := newTestStore(t)
	s.Put("k", []byte("old"), time.Minute)
	s.Put("k", []byte("new"), time.Minute)

	got, ok := s.Lookup("k")
	if !ok || string(got) != "new" {
		t.Errorf("got %q ok=%v, want new entry", got, ok)
	}
}

func TestZeroTTLNeverHits(t *testing.T) {
	s, _ := newTestStore(t)
	s.Put("k", []byte("a"), 0)

	if _, ok := s.Lookup("k"); ok {
		t.Fatal("ttl=0 must behave as always-miss")
	}
}

func TestDisabledStoreMissesAndIgnoresPut(t *testing.T) {
	s := NewStore(false, nil)
	if s.Enabled() {
		t.Fatal("store should report disabled")
	}

	s.Put("k", []byte("a"), time.Minute)
	if _, ok := s.Lookup("k"); ok {
		t.Fatal("disabled store must always miss")
	}
	if s.Clear() != 0 {
		t.Error("disabled store should have nothing to clear")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	s.Put("a", []byte("1"), time.Minute)
	s.Put("b", []byte("2"), time.Minute)

	if got := s.Clear(); got != 2 {
		t.Errorf("first Clear = %d, want 2", got)
	}
	if got := s.Clear(); got != 0 {
		t.Errorf("second Clear = %d, want 0", got)
	}
}

func TestLenCountsOnlyLiveEntries(t *testing.T) {
	s, clock := newTestStore(t)
	s.Put("a", []byte("1"), time.Minute)
	s.Put("b", []byte("2"), time.Hour)

	clock.Advance(2 * time.Minute)
	if got := s.Len(); got != 1 {
		t.Errorf("Len = %d, want 1", got)
	}
}

func TestConcurrentAccessDistinctKeys(t *testing.T) {
	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key(string(rune('a' + i%8)))
			s.Put(key, []byte{byte(i)}, time.Minute)
			s.Lookup(key)
		}(i)
	}
	wg.Wait()

	if got := s.Len(); got != 8 {
		t.Errorf("Len = %d, want 8", got)
	}
}

func TestLookupRepopulatesFromDisk(t *testing.T) {
	disk, err := NewDiskStore(t.TempDir(), time.Hour, 10, nil)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if err := disk.Put("k", []byte("survivor")); err != nil {
		t.Fatalf("disk Put: %v", err)
	}

	// Fresh store with empty memory, as after a restart.
	s, _ := newTestStore(t)
	s.AttachDisk(disk)

	got, ok := s.Lookup("k")
	if !ok || string(got) != "survivor" {
		t.Fatalf("got %q ok=%v, want disk survivor", got, ok)
	}
	// Now resident in memory too.
	if len(s.entries) != 1 {
		t.Error("disk hit should repopulate the memory layer")
	}
}

func TestLookupPrefersEntryWrittenDuringDiskConsult(t *testing.T) {
	disk, err := NewDiskStore(t.TempDir(), time.Hour, 10, nil)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if err := disk.Put("k", []byte("mirror")); err != nil {
		t.Fatalf("disk Put: %v", err)
	}

	s := NewStore(true, nil)
	s.AttachDisk(disk)

	// The mirror is read with the lock released, so a writer can land a
	// fresh entry before repopulation re-acquires it. The clock's second
	// reading happens inside that re-acquired section; use it to model
	// the interleaved writer.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	s.timeNow = func() time.Time {
		calls++
		if calls == 2 {
			s.entries["k"] = entry{
				artifact:  []byte("fresh"),
				createdAt: base,
				expiresAt: base.Add(time.Minute),
			}
		}
		return base
	}

	got, ok := s.Lookup("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != "fresh" {
		t.Errorf("artifact = %q, want the interleaved writer's entry", got)
	}
}

func TestClearCountsDiskSurvivors(t *testing.T) {
	disk, err := NewDiskStore(t.TempDir(), time.Hour, 10, nil)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if err := disk.Put("old", []byte("survivor")); err != nil {
		t.Fatalf("disk Put: %v", err)
	}

	s, _ := newTestStore(t)
	s.AttachDisk(disk)
	s.Put("new", []byte("fresh"), time.Minute)

	// Memory holds {new}; disk holds {new, old}.
	if got := s.Clear(); got != 2 {
		t.Errorf("Clear = %d, want 2", got)
	}
	if got := s.Clear(); got != 0 {
		t.Errorf("second Clear = %d, want 0", got)
	}
}
