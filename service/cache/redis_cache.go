/*
 * @module service/cache/redis_cache
 * @description 基于Redis的目标清单样本查询缓存,服务模式下降低对hub的重复查询压力
 * @architecture 工具层 - 读穿缓存
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 查询缓存 -> 未命中回源 -> 写回缓存(短TTL)
 * @rules 缓存故障只降级为回源查询,不影响对账正确性;TTL默认10分钟
 * @dependencies github.com/go-redis/redis/v8, encoding/json
 * @refs client/xena_client.go, service/init.go
 */

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// keyPrefix 缓存键前缀
	keyPrefix = "recon:samples:"
	// defaultTTL 缓存默认过期时间
	defaultTTL = 10 * time.Minute
)

// RedisSampleCache Redis样本查询缓存
type RedisSampleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSampleCache 创建Redis缓存,从环境变量读取连接配置
func NewRedisSampleCache() (*RedisSampleCache, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		fmt.Sscanf(dbStr, "%d", &db)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	slog.Info("样本查询缓存初始化成功", "redis_host", host, "redis_port", port)
	return &RedisSampleCache{client: client, ttl: defaultTTL}, nil
}

// Get 查询缓存,返回false表示未命中或缓存故障
func (c *RedisSampleCache) Get(ctx context.Context, key string) ([]string, bool) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("缓存查询失败,降级为回源", "key", key, "error", err)
		return nil, false
	}

	var samples []string
	if err := json.Unmarshal([]byte(val), &samples); err != nil {
		slog.Warn("缓存内容解析失败,降级为回源", "key", key, "error", err)
		return nil, false
	}
	return samples, true
}

// Set 写入缓存,失败仅记录日志
func (c *RedisSampleCache) Set(ctx context.Context, key string, samples []string) {
	data, err := json.Marshal(samples)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		slog.Warn("缓存写入失败", "key", key, "error", err)
	}
}

// Close 关闭Redis连接
func (c *RedisSampleCache) Close() error {
	return c.client.Close()
}

// getEnvWithDefault 获取环境变量,不存在时返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
