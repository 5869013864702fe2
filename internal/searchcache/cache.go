package searchcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"shotscout/internal/logging"
	"shotscout/internal/textutil"
)

// Key identifies one cached search call.
type Key struct {
	Provider  string
	MediaType string
	Query     string
}

func (k Key) normalized() Key {
	return Key{
		Provider:  strings.ToLower(strings.TrimSpace(k.Provider)),
		MediaType: strings.ToLower(strings.TrimSpace(k.MediaType)),
		Query:     textutil.NormalizeQuery(k.Query),
	}
}

// filename derives the content-addressed cache file name for the key.
func (k Key) filename() string {
	n := k.normalized()
	sum := sha256.Sum256([]byte(n.Provider + "|" + n.MediaType + "|" + n.Query))
	return hex.EncodeToString(sum[:]) + ".json"
}

// Entry is the on-disk representation of one cached result set.
type Entry struct {
	Provider  string          `json:"provider"`
	MediaType string          `json:"media_type"`
	Query     string          `json:"query"`
	CachedAt  time.Time       `json:"cached_at"`
	Results   json.RawMessage `json:"results"`
}

// Store provides disk-backed caching scoped to one cache directory. Readers
// are safe concurrently; writers serialize across processes via a lock file
// and publish entries with a write-then-rename so partial files are never
// observed. An empty dir makes every operation a no-op.
type Store struct {
	dir    string
	maxAge time.Duration // 0 means entries never expire
	logger *slog.Logger
	lock   *flock.Flock
}

// NewStore creates a cache store rooted at dir.
func NewStore(dir string, maxAge time.Duration, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "searchcache")
	dir = strings.TrimSpace(dir)
	s := &Store{dir: dir, maxAge: maxAge, logger: logger}
	if dir == "" {
		return s, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	s.lock = flock.New(filepath.Join(dir, ".write.lock"))
	return s, nil
}

// Lookup returns the cached results for the key, decoded into dest, and
// reports whether a fresh entry was found. Stale or unreadable entries are
// treated as misses.
func (s *Store) Lookup(key Key, dest any) bool {
	if s == nil || s.dir == "" {
		return false
	}
	path := filepath.Join(s.dir, key.filename())
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("cache read failed", logging.Error(err), logging.String("path", path))
		}
		return false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Debug("cache entry corrupt", logging.Error(err), logging.String("path", path))
		return false
	}
	if s.maxAge > 0 && time.Since(entry.CachedAt) > s.maxAge {
		return false
	}
	if err := json.Unmarshal(entry.Results, dest); err != nil {
		s.logger.Debug("cache payload decode failed", logging.Error(err), logging.String("path", path))
		return false
	}
	return true
}

// Store persists results under the key atomically.
func (s *Store) Store(key Key, results any) error {
	if s == nil || s.dir == "" {
		return nil
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal cache payload: %w", err)
	}
	n := key.normalized()
	entry := Entry{
		Provider:  n.Provider,
		MediaType: n.MediaType,
		Query:     n.Query,
		CachedAt:  time.Now().UTC(),
		Results:   payload,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if s.lock != nil {
		if err := s.lock.Lock(); err != nil {
			return fmt.Errorf("acquire cache lock: %w", err)
		}
		defer func() { _ = s.lock.Unlock() }()
	}

	path := filepath.Join(s.dir, key.filename())
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publish cache file: %w", err)
	}
	return nil
}

// Stats reports the number of cache entries and their total size in bytes.
func (s *Store) Stats() (int, int64, error) {
	if s == nil || s.dir == "" {
		return 0, 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("read cache directory: %w", err)
	}
	count := 0
	var size int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		count++
		if info, err := entry.Info(); err == nil {
			size += info.Size()
		}
	}
	return count, size, nil
}

// Clear removes every cache entry.
func (s *Store) Clear() error {
	if s == nil || s.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove cache entry: %w", err)
		}
	}
	return nil
}
