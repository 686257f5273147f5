/*
 * @module service/lock/run_lock
 * @description Redis运行锁,多实例部署时保证同一时刻只有一个实例执行定时对账
 * @architecture 工具层 - 分布式锁能力
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 获取锁 -> 执行对账 -> 释放锁/自动过期
 * @rules 使用Redis SET NX实现;锁未获取到时跳过执行,不视为错误;释放走Lua脚本校验持有者
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/scheduler/recon_scheduler.go, service/init.go
 */

package lock

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// RunLock 对账运行锁接口
type RunLock interface {
	// TryLock 尝试获取锁
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unlock 释放锁
	Unlock(ctx context.Context, key string) error
}

// RedisRunLock Redis运行锁实现
type RedisRunLock struct {
	client     *redis.Client
	instanceID string // 锁持有者标识
}

// NewRedisRunLock 创建Redis运行锁,配置取自REDIS_*环境变量
func NewRedisRunLock() (*RedisRunLock, error) {
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
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	hostname, _ := os.Hostname()
	instanceID := fmt.Sprintf("%s:%d", hostname, os.Getpid())

	slog.Info("Redis运行锁初始化成功",
		"instance_id", instanceID,
		"redis_host", host,
		"redis_port", port)

	return &RedisRunLock{
		client:     client,
		instanceID: instanceID,
	}, nil
}

// TryLock 尝试获取锁
// 使用SET NX命令,只有当key不存在时才会设置成功
func (r *RedisRunLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	lockKey := "recon:lock:" + key

	ok, err := r.client.SetNX(ctx, lockKey, r.instanceID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("获取锁失败: %w", err)
	}
	if ok {
		slog.Debug("运行锁: 成功获取锁",
			"key", key, "ttl", ttl, "instance", r.instanceID)
	}
	return ok, nil
}

// Unlock 释放锁
// Lua脚本保证只有持有者能删除
func (r *RedisRunLock) Unlock(ctx context.Context, key string) error {
	lockKey := "recon:lock:" + key

	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`
	result, err := r.client.Eval(ctx, script, []string{lockKey}, r.instanceID).Result()
	if err != nil {
		return fmt.Errorf("释放锁失败: %w", err)
	}
	if result.(int64) != 1 {
		slog.Warn("运行锁: 锁不存在或已被其他实例持有",
			"key", key, "instance", r.instanceID)
	}
	return nil
}

// Close 关闭Redis客户端
func (r *RedisRunLock) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// WithLock 在锁保护下执行函数,锁被其他实例持有时跳过执行
func WithLock(ctx context.Context, l RunLock, key string, ttl time.Duration, fn func() error) error {
	locked, err := l.TryLock(ctx, key, ttl)
	if err != nil {
		return fmt.Errorf("获取锁失败: %w", err)
	}
	if !locked {
		slog.Warn("运行锁被其他实例持有,跳过执行", "key", key)
		return nil
	}
	defer func() {
		if unlockErr := l.Unlock(ctx, key); unlockErr != nil {
			slog.Error("运行锁释放失败", "key", key, "error", unlockErr)
		}
	}()
	return fn()
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
