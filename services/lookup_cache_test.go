package services

import (
	"strings"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	cache := NewMemoryCache()

	cache.Set("fixtures_abc", DataClassFixture, []byte(`{"id":1}`))

	data, ok := cache.Get("fixtures_abc")
	if !ok {
		t.Fatal("Get = miss, want hit")
	}
	if string(data) != `{"id":1}` {
		t.Errorf("Get = %s, want stored payload", data)
	}

	if _, ok := cache.Get("missing"); ok {
		t.Error("Get(missing) = hit, want miss")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	cache := NewMemoryCache()

	cache.Set("key", DataClassLive, []byte("v"))
	cache.Delete("key")

	if _, ok := cache.Get("key"); ok {
		t.Error("Get after Delete = hit, want miss")
	}
	if cache.Size() != 0 {
		t.Errorf("Size = %d, want 0", cache.Size())
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()

	cache.mu.Lock()
	cache.cache["stale"] = &cacheEntry{
		data:      []byte("v"),
		expiresAt: time.Now().Add(-time.Second),
	}
	cache.mu.Unlock()

	if _, ok := cache.Get("stale"); ok {
		t.Error("Get(expired) = hit, want miss")
	}

	// 过期条目在后台清理前占据容量,清理后移除
	if cache.Size() != 1 {
		t.Fatalf("Size before cleanup = %d, want 1", cache.Size())
	}
	cache.cleanup()
	if cache.Size() != 0 {
		t.Errorf("Size after cleanup = %d, want 0", cache.Size())
	}
}

func TestTTLFor(t *testing.T) {
	cases := []struct {
		class DataClass
		want  time.Duration
	}{
		{DataClassLive, 10 * time.Second},
		{DataClassOdds, 15 * time.Second},
		{DataClassFixture, 60 * time.Second},
		{DataClassHistory, 6 * time.Hour},
		{DataClassStatic, 7 * 24 * time.Hour},
		{DataClass("unknown"), 10 * time.Second}, // 未知类别按最短处理
	}

	for _, c := range cases {
		if got := TTLFor(c.class); got != c.want {
			t.Errorf("TTLFor(%q) = %v, want %v", c.class, got, c.want)
		}
	}
}

func TestCacheKey(t *testing.T) {
	params := map[string]interface{}{"fixture": 8001, "live": true}

	key1 := CacheKey("odds", params)
	key2 := CacheKey("odds", map[string]interface{}{"fixture": 8001, "live": true})
	if key1 != key2 {
		t.Errorf("same params produced different keys: %q vs %q", key1, key2)
	}
	if !strings.HasPrefix(key1, "odds_") {
		t.Errorf("key = %q, want odds_ prefix", key1)
	}

	other := CacheKey("odds", map[string]interface{}{"fixture": 8002, "live": true})
	if other == key1 {
		t.Error("different params produced identical keys")
	}

	if CacheKey("live", params) == key1 {
		t.Error("different prefixes produced identical keys")
	}
}
