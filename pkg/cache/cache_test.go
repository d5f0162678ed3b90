package cache

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "frames"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get on empty cache should miss")
	}

	payload := []byte{0x89, 'P', 'N', 'G'}
	if err := c.Set(ctx, "frame:a", payload, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "frame:a")
	if err != nil || !hit {
		t.Fatalf("Get() = hit %v, err %v", hit, err)
	}
	if string(data) != string(payload) {
		t.Errorf("Get() = %v, want %v", data, payload)
	}

	if err := c.Delete(ctx, "frame:a"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "frame:a"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "frame:a"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashColors(t *testing.T) {
	a := []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}}
	b := []color.RGBA{{G: 2, A: 255}, {R: 1, A: 255}}
	if HashColors(a) == HashColors(b) {
		t.Error("HashColors should depend on order")
	}
	if HashColors(a) != HashColors(append([]color.RGBA(nil), a...)) {
		t.Error("HashColors should be deterministic")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := FrameKeyOpts{Width: 4, PixelWidth: 100, PixelHeight: 100, MaxIterations: 32, EscapeRadius: 1000, Format: "png"}

	key := k.FrameKey(base)
	if !strings.HasPrefix(key, "frame:") {
		t.Errorf("FrameKey() = %q, want frame: prefix", key)
	}
	if key != k.FrameKey(base) {
		t.Error("FrameKey should be deterministic")
	}

	variants := []func(*FrameKeyOpts){
		func(o *FrameKeyOpts) { o.CenterRe = -0.5 },
		func(o *FrameKeyOpts) { o.CenterIm = 0.1 },
		func(o *FrameKeyOpts) { o.Width = 2 },
		func(o *FrameKeyOpts) { o.PixelWidth = 101 },
		func(o *FrameKeyOpts) { o.MaxIterations = 64 },
		func(o *FrameKeyOpts) { o.Smooth = true },
		func(o *FrameKeyOpts) { o.Samples = 2 },
		func(o *FrameKeyOpts) { o.Palette = "abc" },
		func(o *FrameKeyOpts) { o.Format = "jpeg" },
	}
	for i, mutate := range variants {
		opts := base
		mutate(&opts)
		if k.FrameKey(opts) == key {
			t.Errorf("variant %d should change the key", i)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := FrameKeyOpts{Width: 4}
	scoped := NewScopedKeyer(NewDefaultKeyer(), "user:123:")

	want := "user:123:" + NewDefaultKeyer().FrameKey(opts)
	if got := scoped.FrameKey(opts); got != want {
		t.Errorf("ScopedKeyer.FrameKey() = %q, want %q", got, want)
	}

	if got := NewScopedKeyer(nil, "p:").FrameKey(opts); !strings.HasPrefix(got, "p:frame:") {
		t.Errorf("nil inner should fall back to DefaultKeyer, got %q", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	calls := 0
	permanent := errors.New("permanent")
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("non-retryable: err %v after %d calls", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err %v after %d calls", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err %v after %d calls", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url"); err == nil {
		t.Error("NewRedisCache should reject an invalid url")
	}
}
