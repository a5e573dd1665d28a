package cache

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DiskStore mirrors artifact bytes as {dir}/{key}.png files. TTL is tracked
// through file modification times, writes are atomic (temp file + rename),
// and total size is bounded with oldest-first eviction.
type DiskStore struct {
	dir      string
	ttl      time.Duration
	maxBytes int64
	logger   *slog.Logger
}

// NewDiskStore creates a DiskStore rooted at dir, creating the directory
// with 0700 permissions if needed. maxSizeMB <= 0 disables size eviction.
// If logger is nil, a no-op logger is used.
func NewDiskStore(dir string, ttl time.Duration, maxSizeMB int, logger *slog.Logger) (*DiskStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("cache: create directory %s: %w", dir, err)
	}
	return &DiskStore{
		dir:      dir,
		ttl:      ttl,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
		logger:   logger,
	}, nil
}

// keyPath returns the filesystem path for a cache key.
func (d *DiskStore) keyPath(key Key) string {
	return filepath.Join(d.dir, string(key)+".png")
}

// Get reads a mirrored artifact. It returns the bytes, the remaining TTL,
// and whether a fresh entry existed. Expired files are removed and reported
// as a miss.
func (d *DiskStore) Get(key Key) ([]byte, time.Duration, bool, error) {
	path := d.keyPath(key)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, false, nil
		}
		return nil, 0, false, fmt.Errorf("stat %s: %w", key, err)
	}

	age := time.Since(info.ModTime())
	if age >= d.ttl {
		d.logger.Debug("removing expired artifact", slog.String("key", string(key)))
		_ = os.Remove(path)
		return nil, 0, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, false, fmt.Errorf("read %s: %w", key, err)
	}

	return data, d.ttl - age, true, nil
}

// Put writes an artifact atomically: write to a temp file, then rename over
// the destination. After writing, the store evicts oldest files if the total
// size exceeds the configured bound.
func (d *DiskStore) Put(key Key, data []byte) error {
	path := d.keyPath(key)

	tmp, err := os.CreateTemp(d.dir, ".tmp-"+string(key)+"-*.png")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any failure path.
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp for %s: %w", key, err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp for %s: %w", key, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp for %s: %w", key, err)
	}

	success = true

	if err := d.evict(); err != nil {
		d.logger.Warn("eviction error", slog.String("error", err.Error()))
	}
	return nil
}

// Clear removes all mirrored artifacts and returns how many were removed.
func (d *DiskStore) Clear() (int, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("clear read dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(d.dir, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("clear remove %s: %w", e.Name(), err)
		}
		if isArtifactFile(e.Name()) {
			removed++
		}
	}
	return removed, nil
}

// artifactFileInfo holds info about a single mirrored file for sorting.
type artifactFileInfo struct {
	path    string
	size    int64
	modTime time.Time
}

// evict removes the oldest files (by modification time) until the total
// size is under the configured bound.
func (d *DiskStore) evict() error {
	if d.maxBytes <= 0 {
		return nil
	}

	files, totalSize, err := d.scanFiles()
	if err != nil {
		return err
	}
	if totalSize <= d.maxBytes {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for _, f := range files {
		if totalSize <= d.maxBytes {
			break
		}
		d.logger.Debug("evicting artifact",
			slog.String("file", filepath.Base(f.path)),
			slog.Int64("size", f.size),
		)
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("evict remove %s: %w", filepath.Base(f.path), err)
		}
		totalSize -= f.size
	}
	return nil
}

// scanFiles reads the store directory and returns info for all artifact
// files along with their total size. Temp files and directories are skipped.
func (d *DiskStore) scanFiles() ([]artifactFileInfo, int64, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("scan read dir: %w", err)
	}

	var files []artifactFileInfo
	var totalSize int64
	for _, e := range entries {
		if e.IsDir() || !isArtifactFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, artifactFileInfo{
			path:    filepath.Join(d.dir, e.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		totalSize += info.Size()
	}
	return files, totalSize, nil
}

// isArtifactFile reports whether the filename is a mirrored artifact
// (.png extension, not a temp file).
func isArtifactFile(name string) bool {
	return filepath.Ext(name) == ".png" && name[0] != '.'
}
