package services

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// DataClass 缓存数据类别,决定条目存活时长
//
// 直播数据秒级过期,静态数据天级过期,调用方只声明类别,
// 不自行指定 TTL。
type DataClass string

const (
	DataClassLive    DataClass = "live"    // 进行中比赛的比分/统计
	DataClassOdds    DataClass = "odds"    // 赔率快照
	DataClassFixture DataClass = "fixture" // 比赛基础信息
	DataClassHistory DataClass = "history" // 赛季统计/交锋史
	DataClassStatic  DataClass = "static"  // 联赛/球队等静态数据
)

var classTTL = map[DataClass]time.Duration{
	DataClassLive:    10 * time.Second,
	DataClassOdds:    15 * time.Second,
	DataClassFixture: 60 * time.Second,
	DataClassHistory: 6 * time.Hour,
	DataClassStatic:  7 * 24 * time.Hour,
}

// TTLFor 类别对应的存活时长,未知类别按最短处理
func TTLFor(class DataClass) time.Duration {
	if ttl, ok := classTTL[class]; ok {
		return ttl
	}
	return classTTL[DataClassLive]
}

// LookupCache 只读查询缓存抽象
//
// 流水线核心不直接访问缓存,由轮询方注入已取好的数据;
// 缓存只服务于上游 API 查询的去重。
type LookupCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, class DataClass, data []byte)
	Delete(key string)
}

// MemoryCache 进程内查询缓存,未配置 Redis 时的默认实现
type MemoryCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		cache: make(map[string]*cacheEntry),
	}

	// 启动清理协程
	go cache.cleanupLoop()

	return cache
}

// Get 获取缓存
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists {
		return nil, false
	}

	// 检查是否过期
	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.data, true
}

// Set 按数据类别设置缓存
func (c *MemoryCache) Set(key string, class DataClass, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(TTLFor(class)),
	}
}

// Delete 删除缓存
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
}

// Size 获取缓存大小
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cache)
}

// cleanupLoop 定期清理过期缓存
func (c *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup 清理过期缓存
func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.cache {
		if now.After(entry.expiresAt) {
			delete(c.cache, key)
		}
	}
}

// CacheKey 生成缓存键
func CacheKey(prefix string, params interface{}) string {
	// 将参数序列化为 JSON
	jsonBytes, err := json.Marshal(params)
	if err != nil {
		// 序列化失败时使用时间戳作为键(相当于不缓存)
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}

	// 使用 SHA256 生成哈希
	hash := sha256.Sum256(jsonBytes)
	return fmt.Sprintf("%s_%x", prefix, hash[:16]) // 使用前 16 字节
}
