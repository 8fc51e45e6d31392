package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// RedisTextCache Redis后端的提取文本缓存
// 每份简历对应一个HASH，字段为提取文本和其来源文件的修改时间戳；
// 新鲜度判断在读取端完成：记录的来源时间戳早于当前源文件修改时间即视为过期
type RedisTextCache struct {
	Client *redis.Client
	config *config.RedisConfig
}

const (
	fieldText        = "text"
	fieldSourceMTime = "source_mtime"
)

// NewRedisTextCache creates a new Redis-backed text cache
func NewRedisTextCache(cfg *config.RedisConfig) (*RedisTextCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	// 使用扩展的配置选项
	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,     // 默认10
		MinIdleConns: cfg.MinIdleConns, // 默认2

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		// 重试设置
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,
	}

	client := redis.NewClient(opt)

	// Ping to check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &RedisTextCache{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (c *RedisTextCache) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

func (c *RedisTextCache) key(fileName string) string {
	return fmt.Sprintf(constants.KeyResumeText, fileName)
}

// Get 实现TextCache接口
func (c *RedisTextCache) Get(ctx context.Context, fileName string, sourceModTime time.Time) (string, bool, error) {
	if err := CheckFileName(fileName); err != nil {
		return "", false, err
	}

	vals, err := c.Client.HGetAll(ctx, c.key(fileName)).Result()
	if err != nil {
		return "", false, fmt.Errorf("读取Redis缓存失败: %w", err)
	}
	if len(vals) == 0 {
		return "", false, nil
	}

	mtimeStr, ok := vals[fieldSourceMTime]
	if !ok {
		return "", false, nil
	}
	storedNanos, err := strconv.ParseInt(mtimeStr, 10, 64)
	if err != nil {
		// 记录损坏按未命中处理，下次Put会覆盖
		return "", false, nil
	}
	if storedNanos < sourceModTime.UnixNano() {
		return "", false, nil
	}

	text, ok := vals[fieldText]
	if !ok {
		return "", false, nil
	}
	return text, true, nil
}

// Put 实现TextCache接口，单条HSET保证不会出现半写状态
func (c *RedisTextCache) Put(ctx context.Context, fileName string, text string, sourceModTime time.Time) error {
	if err := CheckFileName(fileName); err != nil {
		return err
	}

	key := c.key(fileName)
	if err := c.Client.HSet(ctx, key,
		fieldText, text,
		fieldSourceMTime, strconv.FormatInt(sourceModTime.UnixNano(), 10),
	).Err(); err != nil {
		return fmt.Errorf("写入Redis缓存失败: %w", err)
	}

	if days := c.config.TextCacheExpireDays; days > 0 {
		if err := c.Client.Expire(ctx, key, time.Duration(days)*24*time.Hour).Err(); err != nil {
			return fmt.Errorf("设置Redis缓存过期时间失败: %w", err)
		}
	}
	return nil
}

// Delete 实现TextCache接口
func (c *RedisTextCache) Delete(ctx context.Context, fileName string) error {
	if err := CheckFileName(fileName); err != nil {
		return err
	}
	if err := c.Client.Del(ctx, c.key(fileName)).Err(); err != nil {
		return fmt.Errorf("删除Redis缓存失败: %w", err)
	}
	return nil
}
