package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-match-go/internal/constants"
)

// TextCache 提取文本的外部侧表缓存
// 缓存项仅当其自身时间戳不早于源文件修改时间时才算新鲜；
// 内容对同一源文件是确定性的，因此并发写入按last-write-wins处理
type TextCache interface {
	// Get 返回缓存文本。第二个返回值为false表示未命中或已过期
	Get(ctx context.Context, fileName string, sourceModTime time.Time) (string, bool, error)
	// Put 写入缓存文本，并记录其对应的源文件修改时间
	Put(ctx context.Context, fileName string, text string, sourceModTime time.Time) error
	// Delete 移除缓存项（随简历删除时尽力而为地调用）
	Delete(ctx context.Context, fileName string) error
}

// FileTextCache 文件后端的提取文本缓存
// 每份简历对应一个 <fileName>.txt 侧文件，新鲜度用文件系统mtime判断
type FileTextCache struct {
	dir string
}

// NewFileTextCache 创建文件后端缓存，目录不存在时自动创建
func NewFileTextCache(dir string) (*FileTextCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("缓存目录不能为空")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建缓存目录失败: %w", err)
	}
	return &FileTextCache{dir: dir}, nil
}

func (c *FileTextCache) cachePath(fileName string) (string, error) {
	if err := CheckFileName(fileName); err != nil {
		return "", err
	}
	return filepath.Join(c.dir, fileName+constants.CachedTextSuffix), nil
}

// Get 实现TextCache接口
func (c *FileTextCache) Get(ctx context.Context, fileName string, sourceModTime time.Time) (string, bool, error) {
	path, err := c.cachePath(fileName)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("读取缓存文件信息失败: %w", err)
	}
	// 缓存比源文件旧则视为过期，需要重新提取
	if info.ModTime().Before(sourceModTime) {
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("读取缓存文件失败: %w", err)
	}
	return string(data), true, nil
}

// Put 实现TextCache接口，写临时文件后原子重命名
func (c *FileTextCache) Put(ctx context.Context, fileName string, text string, sourceModTime time.Time) error {
	path, err := c.cachePath(fileName)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("创建缓存临时文件失败: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入缓存失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("关闭缓存临时文件失败: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("保存缓存文件失败: %w", err)
	}
	return nil
}

// Delete 实现TextCache接口
func (c *FileTextCache) Delete(ctx context.Context, fileName string) error {
	path, err := c.cachePath(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除缓存文件失败: %w", err)
	}
	return nil
}
