package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache 基于 Redis 的查询缓存
//
// 多实例部署时共享缓存,避免每个实例各自打满上游 API 配额。
// Redis 不可用时调用方应回退到 MemoryCache。
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Printf("[RedisCache] Connected to %s", opts.Addr)
	return &RedisCache{client: client}, nil
}

// Get 获取缓存
func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[RedisCache] Get %s failed: %v", key, err)
		}
		return nil, false
	}
	return data, true
}

// Set 按数据类别设置缓存,TTL 由 Redis 负责
func (c *RedisCache) Set(key string, class DataClass, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, key, data, TTLFor(class)).Err(); err != nil {
		log.Printf("[RedisCache] Set %s failed: %v", key, err)
	}
}

// Delete 删除缓存
func (c *RedisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[RedisCache] Delete %s failed: %v", key, err)
	}
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}
