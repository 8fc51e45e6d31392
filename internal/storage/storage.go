package storage

import (
	"context"
	"fmt"
	"log"

	"resume-match-go/internal/config"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 简历文件存储
	Files *FileStore

	// 提取文本缓存（file或redis后端）
	Cache TextCache

	// 简历元数据存储
	Metadata *MetadataStore

	// 仅当缓存为redis后端时非nil，用于关闭连接
	redisCache *RedisTextCache
}

// NewStorage 创建存储管理器
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error

	storage.Files, err = NewFileStore(cfg.Storage.ResumeDir)
	if err != nil {
		return nil, fmt.Errorf("初始化简历文件存储失败: %w", err)
	}
	log.Println("简历文件存储初始化成功")

	storage.Metadata, err = NewMetadataStore(cfg.Storage.MetadataDir)
	if err != nil {
		return nil, fmt.Errorf("初始化元数据存储失败: %w", err)
	}
	log.Println("元数据存储初始化成功")

	// 根据配置选择缓存后端，redis初始化失败时回退到file后端
	switch cfg.Cache.Backend {
	case "redis":
		log.Printf("初始化Redis文本缓存 at %s...", cfg.Redis.Address)
		redisCache, err := NewRedisTextCache(&cfg.Redis)
		if err != nil {
			log.Printf("警告: 初始化Redis文本缓存失败: %v, 回退到file后端", err)
			storage.Cache, err = NewFileTextCache(cfg.Storage.ParsedDir)
			if err != nil {
				return nil, fmt.Errorf("初始化文件文本缓存失败: %w", err)
			}
		} else {
			storage.Cache = redisCache
			storage.redisCache = redisCache
		}
	default:
		storage.Cache, err = NewFileTextCache(cfg.Storage.ParsedDir)
		if err != nil {
			return nil, fmt.Errorf("初始化文件文本缓存失败: %w", err)
		}
	}
	log.Println("文本缓存初始化成功")

	return storage, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.redisCache != nil {
		if err := s.redisCache.Close(); err != nil {
			log.Printf("关闭Redis连接失败: %v", err)
		}
	}
}
