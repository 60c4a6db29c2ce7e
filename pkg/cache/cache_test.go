package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "tree:x"); err != nil || hit {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "tree:x", []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "tree:x")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "tree:x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tree:x"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "tree:x"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
}

func TestFileCacheTruncatedEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	path := c.(*FileCache).path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("bad"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("truncated entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("truncated entry not removed")
	}
}

func TestFileCacheStoresRawData(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	if err := c.Set(ctx, "k", svg, 0); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(c.(*FileCache).path("k"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != headerSize+len(svg) || string(raw[headerSize:]) != string(svg) {
		t.Errorf("entry = %q", raw)
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc := c.(*FileCache)
	if err := c.Set(ctx, "old", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "fresh", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	removed, err := fc.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d entries, want 1", removed)
	}
	for _, key := range []string{"forever", "fresh"} {
		if _, hit, _ := c.Get(ctx, key); !hit {
			t.Errorf("%s pruned", key)
		}
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.TreeKey("abc", TreeKeyOpts{Format: "svg"})
	k2 := k.TreeKey("abc", TreeKeyOpts{Format: "svg", Detailed: true})
	k3 := k.TreeKey("abd", TreeKeyOpts{Format: "svg"})
	if k1 == k2 || k1 == k3 {
		t.Error("keys should differ by hash and options")
	}
	if k1 != k.TreeKey("abc", TreeKeyOpts{Format: "svg"}) {
		t.Error("keys should be deterministic")
	}
	if k1[:5] != "tree:" {
		t.Errorf("unexpected key prefix: %s", k1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
	key := scoped.TreeKey("abc", TreeKeyOpts{})
	if key[:7] != "v1.2.0:" {
		t.Errorf("ScopedKeyer key should be prefixed: %s", key)
	}
	if key[7:] != NewDefaultKeyer().TreeKey("abc", TreeKeyOpts{}) {
		t.Error("ScopedKeyer should only add the prefix")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.TreeKey("x", TreeKeyOpts{}); got[:12] != "prefix:tree:" {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}
