// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a durable JSON response cache keyed by request
// fingerprint. One file per key, written atomically; a corrupt or expired
// entry reads as a miss, never as an error.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// nowFunc returns the current time. Tests override it to age entries.
var nowFunc = time.Now

// entry is the on-disk payload: the fetch timestamp (float epoch seconds)
// and the opaque JSON response.
type entry struct {
	FetchedAt float64         `json:"fetched_at"`
	Response  json.RawMessage `json:"response"`
}

// Disk is a directory-backed cache. TTL of zero means entries never
// expire on age. The cache is unbounded: nothing evicts entries beyond
// the TTL check at read time.
type Disk struct {
	dir string
	ttl time.Duration
}

// NewDisk creates the cache directory if needed and returns the cache.
func NewDisk(dir string, ttl time.Duration) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &Disk{dir: dir, ttl: ttl}, nil
}

func (c *Disk) pathFor(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached response for key. The second result reports a
// hit; a missing, unreadable, or expired entry is a miss.
func (c *Disk) Get(key string) (json.RawMessage, bool) {
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if e.Response == nil {
		return nil, false
	}

	if c.ttl > 0 {
		age := nowFunc().Sub(time.Unix(0, int64(e.FetchedAt*float64(time.Second))))
		if age > c.ttl {
			return nil, false
		}
	}
	return e.Response, true
}

// Set stores response under key. The write goes to a temp file in the
// cache directory and is renamed into place, so a crash mid-write never
// leaves a truncated entry readable by a later Get.
func (c *Disk) Set(key string, response json.RawMessage) error {
	payload, err := json.Marshal(entry{
		FetchedAt: float64(nowFunc().UnixNano()) / float64(time.Second),
		Response:  response,
	})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	dest := c.pathFor(key)
	tmp, err := os.CreateTemp(c.dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(payload)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing cache entry: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
