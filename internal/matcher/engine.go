package matcher

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

// Engine 简历匹配引擎
//
// 每份简历的处理是一条独立流水线（提取→推断→覆盖→匹配→打分），
// 相互之间没有顺序依赖，批处理时做有界并发扇出，结束后按分数稳定排序
type Engine struct {
	storage        *storage.Storage
	extractor      *TextExtractor
	maxWorkers     int
	extractTimeout time.Duration
	now            func() time.Time
}

// EngineOption 匹配引擎的配置选项
type EngineOption func(*Engine)

// WithMaxWorkers 配置批处理的最大并发数
func WithMaxWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxWorkers = n
		}
	}
}

// WithExtractTimeout 配置单份简历的提取超时
func WithExtractTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.extractTimeout = d
		}
	}
}

// WithNowFunc 配置当前时间来源，测试中用于固定"present"解析到的月份
func WithNowFunc(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine 创建匹配引擎
func NewEngine(st *storage.Storage, extractor *TextExtractor, options ...EngineOption) *Engine {
	engine := &Engine{
		storage:        st,
		extractor:      extractor,
		maxWorkers:     4,
		extractTimeout: 30 * time.Second,
		now:            time.Now,
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// ValidateRequest 校验匹配请求，非法请求立即拒绝，不进入批处理
func ValidateRequest(req *types.SkillRequest) error {
	if req == nil || len(req.Skills) == 0 {
		return ErrEmptySkills
	}
	hasSkill := false
	for _, s := range req.Skills {
		if NormalizeSkill(s) != "" {
			hasSkill = true
			break
		}
	}
	if !hasSkill {
		return ErrEmptySkills
	}
	if math.IsNaN(req.MinExperience) || math.IsInf(req.MinExperience, 0) || req.MinExperience < 0 {
		return ErrInvalidMinExperience
	}
	return nil
}

// MatchAll 对存储中的全部简历执行一次匹配
// 返回结果按分数降序，平分时保持目录列举顺序；每份列举到的简历都有一行结果
func (e *Engine) MatchAll(ctx context.Context, req *types.SkillRequest) ([]types.MatchResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	files, err := e.storage.Files.List()
	if err != nil {
		return nil, fmt.Errorf("列举简历失败: %w", err)
	}

	results := make([]types.MatchResult, len(files))
	sem := make(chan struct{}, e.maxWorkers)
	var wg sync.WaitGroup

	for i, name := range files {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.MatchOne(ctx, name, req)
		}(i, name)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Match > results[j].Match
	})
	return results, nil
}

// MatchOne 对单份简历执行匹配流水线
// 提取失败或超时只会让这一份简历降级为空文本，不影响批内其他简历
func (e *Engine) MatchOne(ctx context.Context, fileName string, req *types.SkillRequest) types.MatchResult {
	extractCtx, cancel := context.WithTimeout(ctx, e.extractTimeout)
	defer cancel()
	text := e.extractor.Extract(extractCtx, fileName)

	found, foundOK := InferYears(text, e.now())

	override, overrideOK, err := e.storage.Metadata.ReadOverride(fileName)
	if err != nil {
		logger.Warn().Err(err).Str("file_name", fileName).Msg("读取经验覆盖值失败，按无覆盖处理")
		overrideOK = false
	}

	matched, missing := MatchSkills(text, req.Skills)

	// 实际参与打分的经验：覆盖优先，其次为推断值
	var used float64
	usedOK := false
	switch {
	case overrideOK:
		used, usedOK = override, true
	case foundOK:
		used, usedOK = found, true
	}

	// 两者都缺失时惩罚计算按0处理，但结果中的经验字段保持缺失
	penaltyExp := 0.0
	if usedOK {
		penaltyExp = used
	}
	score := ComposeScore(len(matched), len(matched)+len(missing), req.MinExperience, penaltyExp)

	result := types.MatchResult{
		FileName:      fileName,
		Match:         score,
		MatchedSkills: matched,
		MissingSkills: missing,
	}
	if foundOK {
		v := found
		result.ExperienceFound = &v
	}
	if overrideOK {
		v := override
		result.ExperienceOverride = &v
	}
	if usedOK {
		v := used
		result.ExperienceUsed = &v
	}
	return result
}
