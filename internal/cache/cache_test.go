// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetMissOnEmptyCache(t *testing.T) {
	c, err := NewDisk(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c, err := NewDisk(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	payload := json.RawMessage(`{"data":[{"paperId":"abc"}]}`)
	if err := c.Set("key1", payload); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(payload) {
		t.Errorf("Get = %s, want %s", got, payload)
	}
}

func TestSetOverwrites(t *testing.T) {
	c, err := NewDisk(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set("key1", json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("key1", json.RawMessage(`{"v":2}`)); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != `{"v":2}` {
		t.Errorf("Get = %s, want overwritten value", got)
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDisk(dir, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Simulate a truncated or garbage entry written outside the cache.
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"fetched_at": 1.5, "resp`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("bad"); ok {
		t.Error("corrupt entry should read as a miss")
	}
}

func TestEntryWithoutResponseIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDisk(dir, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`{"fetched_at": 1.5}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("empty"); ok {
		t.Error("entry without a response should read as a miss")
	}
}

func TestTTLExpiry(t *testing.T) {
	c, err := NewDisk(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Now()
	nowFunc = func() time.Time { return base }
	defer func() { nowFunc = time.Now }()

	if err := c.Set("key1", json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}

	// Fresh entry within the TTL.
	nowFunc = func() time.Time { return base.Add(30 * time.Minute) }
	if _, ok := c.Get("key1"); !ok {
		t.Error("entry within TTL should be a hit")
	}

	// Aged past the TTL.
	nowFunc = func() time.Time { return base.Add(2 * time.Hour) }
	if _, ok := c.Get("key1"); ok {
		t.Error("entry past TTL should be a miss")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c, err := NewDisk(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Now()
	nowFunc = func() time.Time { return base }
	defer func() { nowFunc = time.Now }()

	if err := c.Set("key1", json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}

	nowFunc = func() time.Time { return base.Add(10 * 365 * 24 * time.Hour) }
	if _, ok := c.Get("key1"); !ok {
		t.Error("zero TTL entry should never expire")
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDisk(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("key1", json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
