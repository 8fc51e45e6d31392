package matcher

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrEmptySkills          = errors.New("技能列表不能为空")
	ErrInvalidMinExperience = errors.New("最低经验年限必须是大于等于0的有限数值")
	ErrExtractFailed        = errors.New("提取简历文本失败")
)

// MatchError 包含详细错误信息的自定义错误
type MatchError struct {
	FileName string
	Op       string
	BaseErr  error
	Detail   string
}

func (e *MatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.FileName, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.FileName)
}

func (e *MatchError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *MatchError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewExtractError 构造单份简历的文本提取错误（仅用于日志，不会中断批处理）
func NewExtractError(fileName, detail string) error {
	return &MatchError{
		FileName: fileName,
		Op:       "extract",
		BaseErr:  ErrExtractFailed,
		Detail:   detail,
	}
}
