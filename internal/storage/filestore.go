package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsafeFileName 文件名不满足安全约定（包含路径分隔符或父目录段）
	ErrUnsafeFileName = errors.New("非法的简历文件名")
	// ErrResumeNotFound 指定的简历文件不存在
	ErrResumeNotFound = errors.New("简历文件不存在")
)

// FileStore 本地磁盘上的简历文件存储
// 所有简历以裸文件名为键，平铺在单一目录下
type FileStore struct {
	dir string
}

// NewFileStore 创建简历文件存储，目录不存在时自动创建
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("简历存储目录不能为空")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建简历存储目录失败: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir 返回存储目录
func (s *FileStore) Dir() string {
	return s.dir
}

// CheckFileName 校验文件名是否满足安全约定：
// 必须等于自身的basename，不含路径分隔符，不含父目录穿越段
func CheckFileName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrUnsafeFileName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrUnsafeFileName
	}
	if name != filepath.Base(name) {
		return ErrUnsafeFileName
	}
	for _, seg := range strings.Split(name, string(filepath.Separator)) {
		if seg == ".." {
			return ErrUnsafeFileName
		}
	}
	return nil
}

// Resolve 将文件名解析为存储目录内的绝对路径
// 解析结果必须严格位于存储目录内部，否则拒绝
func (s *FileStore) Resolve(name string) (string, error) {
	if err := CheckFileName(name); err != nil {
		return "", err
	}
	full := filepath.Join(s.dir, name)
	base := filepath.Clean(s.dir) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(full), base) {
		return "", ErrUnsafeFileName
	}
	return full, nil
}

// Save 保存一份简历文件，内容写入临时文件后原子重命名到位
func (s *FileStore) Save(name string, r io.Reader) error {
	full, err := s.Resolve(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入简历文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("保存简历文件失败: %w", err)
	}
	return nil
}

// List 列举存储目录下的全部简历文件名，顺序与目录列举一致
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("列举简历目录失败: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Stat 返回简历文件的元信息（主要用于取修改时间）
func (s *FileStore) Stat(name string) (os.FileInfo, error) {
	full, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrResumeNotFound
		}
		return nil, fmt.Errorf("读取简历文件信息失败: %w", err)
	}
	return info, nil
}

// Read 读取简历文件的全部内容
func (s *FileStore) Read(name string) ([]byte, error) {
	full, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrResumeNotFound
		}
		return nil, fmt.Errorf("读取简历文件失败: %w", err)
	}
	return data, nil
}

// Delete 删除简历文件，文件不存在时返回ErrResumeNotFound
func (s *FileStore) Delete(name string) error {
	full, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return ErrResumeNotFound
		}
		return fmt.Errorf("删除简历文件失败: %w", err)
	}
	return nil
}
