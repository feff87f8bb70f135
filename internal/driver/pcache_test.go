package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/skvithalani/dotty/internal/project"
)

func testCache(t *testing.T) *PickleCache {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, err := OpenPickleCache("dotty-test")
	if err != nil {
		t.Fatalf("OpenPickleCache: %v", err)
	}
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := testCache(t)
	data := []byte{0x5c, 0xa1, 0xab, 0x1f, 0x81, 0x80}
	key := project.HashBytes(data)

	in := &Payload{Name: "alpha", Path: "alpha.dt", Compact: true, Digest: key, Data: data}
	if err := c.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out Payload
	hit, err := c.Get(key, &out)
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if out.Name != in.Name || out.Digest != key || !bytes.Equal(out.Data, data) {
		t.Fatalf("payload corrupted on round trip: %+v", out)
	}
	if out.Schema != cacheSchemaVersion {
		t.Fatalf("schema stamped as %d", out.Schema)
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	c := testCache(t)
	var out Payload
	hit, err := c.Get(project.HashBytes([]byte("never stored")), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Fatalf("unknown key reported as hit")
	}
}

func TestCacheSchemaMismatchIsMiss(t *testing.T) {
	c := testCache(t)
	data := []byte("payload")
	key := project.HashBytes(data)
	if err := c.Put(key, &Payload{Name: "x", Data: data}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Corrupt the entry so it no longer decodes as the current schema.
	path := c.pathFor(key)
	if err := os.WriteFile(path, []byte{0xc1}, 0o644); err != nil {
		t.Fatalf("corrupting entry: %v", err)
	}
	var out Payload
	if hit, err := c.Get(key, &out); err == nil && hit {
		t.Fatalf("corrupted entry reported as hit")
	}
}

func TestCacheDropAll(t *testing.T) {
	c := testCache(t)
	data := []byte("payload")
	key := project.HashBytes(data)
	if err := c.Put(key, &Payload{Name: "x", Data: data}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(c.pathFor(key))); !os.IsNotExist(err) {
		t.Fatalf("cache directory survived DropAll")
	}

	// Dropping an already-missing cache is fine.
	if err := c.DropAll(); err != nil {
		t.Fatalf("second DropAll: %v", err)
	}
}
