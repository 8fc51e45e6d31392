package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"resume-match-go/internal/constants"
)

// ErrOverrideOutOfRange 经验覆盖值超出 [0, 80] 或不是有限数值
var ErrOverrideOutOfRange = errors.New("经验覆盖值必须是 [0, 80] 范围内的有限数值")

// MetadataStore 简历元数据存储，每份简历对应一个JSON侧记录
// 更新采用读取-合并-写回，记录中未知的字段在更新后原样保留
type MetadataStore struct {
	dir string
}

// NewMetadataStore 创建元数据存储，目录不存在时自动创建
func NewMetadataStore(dir string) (*MetadataStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("元数据目录不能为空")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建元数据目录失败: %w", err)
	}
	return &MetadataStore{dir: dir}, nil
}

func (s *MetadataStore) recordPath(fileName string) (string, error) {
	if err := CheckFileName(fileName); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, fileName+constants.MetadataSuffix), nil
}

// readRecord 读取原始记录。缺失或损坏的记录按空记录处理，不向调用方传播
func (s *MetadataStore) readRecord(path string) map[string]json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]json.RawMessage{}
	}
	record := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &record); err != nil {
		return map[string]json.RawMessage{}
	}
	return record
}

// ReadOverride 读取经验覆盖值，记录缺失/损坏/值非法时按"无覆盖"返回
func (s *MetadataStore) ReadOverride(fileName string) (float64, bool, error) {
	path, err := s.recordPath(fileName)
	if err != nil {
		return 0, false, err
	}

	record := s.readRecord(path)
	raw, ok := record[constants.OverrideField]
	if !ok {
		return 0, false, nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > constants.MaxOverrideYears {
		return 0, false, nil
	}
	return v, true, nil
}

// WriteOverride 写入经验覆盖值，nil表示清除覆盖
// 越界或非有限输入返回ErrOverrideOutOfRange，不做静默截断
func (s *MetadataStore) WriteOverride(fileName string, value *float64) error {
	path, err := s.recordPath(fileName)
	if err != nil {
		return err
	}

	if value != nil {
		v := *value
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > constants.MaxOverrideYears {
			return ErrOverrideOutOfRange
		}
	}

	// 读取-合并-写回：只动覆盖值字段，其余字段保留
	record := s.readRecord(path)
	if value == nil {
		delete(record, constants.OverrideField)
	} else {
		raw, err := json.Marshal(*value)
		if err != nil {
			return fmt.Errorf("序列化覆盖值失败: %w", err)
		}
		record[constants.OverrideField] = raw
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化元数据记录失败: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".meta-*")
	if err != nil {
		return fmt.Errorf("创建元数据临时文件失败: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入元数据失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("关闭元数据临时文件失败: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("保存元数据记录失败: %w", err)
	}
	return nil
}

// Delete 删除简历的元数据记录（随简历删除时尽力而为地调用）
func (s *MetadataStore) Delete(fileName string) error {
	path, err := s.recordPath(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除元数据记录失败: %w", err)
	}
	return nil
}
