package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/genops/observe"
)

// entrySuffix is the filename suffix for cache entry files.
const entrySuffix = ".json"

// DefaultTTL is the advisory time-to-live applied when none is configured.
const DefaultTTL = 24 * time.Hour

// ErrNilCache is returned when operating on a nil cache.
var ErrNilCache = errors.New("cache: cache is nil")

// Metadata is stored alongside every cached response.
type Metadata struct {
	Prompt  string `json:"prompt"`
	Backend string `json:"backend"`
	Model   string `json:"model"`
}

// entryFile is the on-disk representation of a cache entry.
type entryFile struct {
	Response string    `json:"response"`
	Metadata Metadata  `json:"metadata"`
	StoredAt time.Time `json:"stored_at"`
}

// EntryInfo describes a stored entry without loading its payload.
// Age is derived from the file's modification time.
type EntryInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// DeleteResult is the outcome of a Delete call.
type DeleteResult int

const (
	// Deleted means the entry existed and was removed.
	Deleted DeleteResult = iota
	// NotFound means no entry existed for the key.
	NotFound
)

// String returns the string representation of the result.
func (r DeleteResult) String() string {
	switch r {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Config configures a ResponseCache.
type Config struct {
	// Dir is the directory holding one file per entry. Required.
	Dir string

	// TTL is the advisory entry time-to-live used by maintenance
	// operations. It is never enforced inside Get or Set.
	// Default: DefaultTTL.
	TTL time.Duration

	// MaxBytes is the advisory size budget. 0 means unlimited; the
	// fragmentation ratio is reported as not applicable in that case.
	MaxBytes int64

	// Logger receives soft-failure diagnostics. Default: no-op.
	Logger observe.Logger
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return errors.New("cache: dir is required")
	}
	if c.TTL < 0 {
		return errors.New("cache: ttl must not be negative")
	}
	if c.MaxBytes < 0 {
		return errors.New("cache: max bytes must not be negative")
	}
	return nil
}

// ResponseCache is a durable key-value store for generated text.
//
// Contract:
// - Concurrency: safe for concurrent use; writes are atomic (temp file
//   plus rename), so readers see either no entry or a complete one.
// - Eviction: TTL and MaxBytes are advisory. Expired or over-budget
//   entries are only removed by explicit maintenance calls, never
//   implicitly inside Get or Set.
// - Errors: disk failures on the read path are soft; they count as a
//   miss and are logged, never surfaced to the caller's request.
type ResponseCache struct {
	dir      string
	ttl      time.Duration
	maxBytes int64
	logger   observe.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a ResponseCache, creating the directory if needed.
func New(cfg Config) (*ResponseCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	return &ResponseCache{
		dir:      cfg.Dir,
		ttl:      cfg.TTL,
		maxBytes: cfg.MaxBytes,
		logger:   cfg.Logger,
	}, nil
}

// Dir returns the cache directory.
func (c *ResponseCache) Dir() string { return c.dir }

// TTL returns the advisory time-to-live.
func (c *ResponseCache) TTL() time.Duration { return c.ttl }

// MaxBytes returns the advisory size budget, 0 meaning unlimited.
func (c *ResponseCache) MaxBytes() int64 { return c.maxBytes }

// Get retrieves a cached response. Returns ("", false) on miss.
// Every call counts toward hit/miss statistics. Expired entries are
// still returned; staleness is a maintenance concern.
func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool) {
	if err := ValidateKey(key); err != nil {
		c.misses.Add(1)
		return "", false
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn(ctx, "cache read failed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()})
		}
		c.misses.Add(1)
		return "", false
	}

	var entry entryFile
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn(ctx, "cache entry corrupt",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
		c.misses.Add(1)
		return "", false
	}

	c.hits.Add(1)
	return entry.Response, true
}

// Contains reports whether an entry exists for key without touching
// hit/miss statistics. Maintenance code uses it so pre-filtering does
// not distort hit rates.
func (c *ResponseCache) Contains(_ context.Context, key string) bool {
	if err := ValidateKey(key); err != nil {
		return false
	}
	_, err := os.Stat(c.path(key))
	return err == nil
}

// GetMetadata returns the stored metadata for key without affecting
// hit/miss statistics.
func (c *ResponseCache) GetMetadata(_ context.Context, key string) (Metadata, bool) {
	if err := ValidateKey(key); err != nil {
		return Metadata{}, false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return Metadata{}, false
	}
	var entry entryFile
	if err := json.Unmarshal(data, &entry); err != nil {
		return Metadata{}, false
	}
	return entry.Metadata, true
}

// Set creates or overwrites the entry for key.
//
// The entry is written to a temporary file in the cache directory and
// renamed into place, so concurrent readers never observe a partial
// write even if the writer crashes.
func (c *ResponseCache) Set(ctx context.Context, key, value string, meta Metadata) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	data, err := json.Marshal(entryFile{
		Response: value,
		Metadata: meta,
		StoredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		c.logger.Warn(ctx, "cache write failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
		return fmt.Errorf("cache: create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: close entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: publish entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (c *ResponseCache) Delete(ctx context.Context, key string) (DeleteResult, error) {
	if err := ValidateKey(key); err != nil {
		return NotFound, err
	}

	err := os.Remove(c.path(key))
	switch {
	case err == nil:
		return Deleted, nil
	case errors.Is(err, fs.ErrNotExist):
		return NotFound, nil
	default:
		c.logger.Warn(ctx, "cache delete failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
		return NotFound, fmt.Errorf("cache: delete entry: %w", err)
	}
}

// Clear removes every entry. Hit/miss counters are preserved; use
// ResetStats to zero them. Clearing an empty cache is a no-op.
func (c *ResponseCache) Clear(_ context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("cache: read dir: %w", err)
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), entrySuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cache: clear: %w", errors.Join(errs...))
	}
	return nil
}

// Entries lists stored entries with their on-disk size and age.
func (c *ResponseCache) Entries(_ context.Context) ([]EntryInfo, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("cache: read dir: %w", err)
	}

	infos := make([]EntryInfo, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), entrySuffix) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			// Entry removed between ReadDir and Info.
			continue
		}
		infos = append(infos, EntryInfo{
			Key:     strings.TrimSuffix(e.Name(), entrySuffix),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return infos, nil
}

// Stats computes current cache statistics. Occupancy is recomputed from
// the entry set on every call; hit/miss counters live for the lifetime
// of this instance.
func (c *ResponseCache) Stats(ctx context.Context) (Stats, error) {
	infos, err := c.Entries(ctx)
	if err != nil {
		return Stats{}, err
	}

	var bytes int64
	for _, info := range infos {
		bytes += info.Size
	}

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	s := Stats{
		Hits:          hits,
		Misses:        misses,
		TotalRequests: total,
		TotalBytes:    bytes,
		Entries:       len(infos),
		MaxBytes:      c.maxBytes,
	}
	if total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s, nil
}

// ResetStats zeroes the hit/miss counters without touching entries.
func (c *ResponseCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}

func (c *ResponseCache) path(key string) string {
	return filepath.Join(c.dir, key+entrySuffix)
}
