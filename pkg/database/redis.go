package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"painpoint-advisor/pkg/log"
)

// InitRedis 初始化 Redis 客户端连接。addr 为空时返回 nil，调用方退回到进程内锁。
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		log.Info("Redis address not configured, using in-process conversation locks")
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis client connected successfully")
	return rdb, nil
}
