package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
)

// 上传文件名中不允许的字符统一替换为下划线
var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// ResumeHandler 简历接口处理器，负责上传、列举、匹配、删除与元数据读写
type ResumeHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	engine  *matcher.Engine
	nowMs   func() int64
}

// NewResumeHandler 创建简历接口处理器
func NewResumeHandler(cfg *config.Config, st *storage.Storage, engine *matcher.Engine) *ResumeHandler {
	return &ResumeHandler{
		cfg:     cfg,
		storage: st,
		engine:  engine,
		nowMs:   func() int64 { return time.Now().UnixMilli() },
	}
}

// SanitizeFileName 清洗上传文件名，保留扩展名，其余不安全字符替换为下划线
func SanitizeFileName(name string) string {
	base := filepath.Base(name)
	cleaned := unsafeNameChars.ReplaceAllString(base, "_")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		cleaned = "resume"
	}
	return cleaned
}

// HandleUpload 处理简历上传请求
// 存储名为 <毫秒时间戳>-<清洗后的原始文件名>，同名冲突靠时间戳前缀避免
func (h *ResumeHandler) HandleUpload(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "读取上传文件内容失败"})
		return
	}

	storedName := fmt.Sprintf("%d-%s", h.nowMs(), SanitizeFileName(fileHeader.Filename))
	if err := h.storage.Files.Save(storedName, bytes.NewReader(data)); err != nil {
		logger.Error().Err(err).Str("file_name", storedName).Msg("保存简历文件失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "保存简历文件失败"})
		return
	}

	uuidV7, err := uuid.NewV7()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "生成提交ID失败"})
		return
	}

	logger.Info().
		Str("file_name", storedName).
		Int("size", len(data)).
		Msg("简历上传成功")

	c.JSON(consts.StatusOK, types.UploadResponse{
		SubmissionID: uuidV7.String(),
		FileName:     storedName,
		Status:       "UPLOADED",
	})
}

// HandleList 列举存储目录下的全部简历文件名
func (h *ResumeHandler) HandleList(ctx context.Context, c *app.RequestContext) {
	files, err := h.storage.Files.List()
	if err != nil {
		logger.Error().Err(err).Msg("列举简历失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "列举简历失败"})
		return
	}
	c.JSON(consts.StatusOK, types.ListResponse{Files: files})
}

// HandleMatch 对全部简历执行一次技能匹配
func (h *ResumeHandler) HandleMatch(ctx context.Context, c *app.RequestContext) {
	var req types.SkillRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
		return
	}

	results, err := h.engine.MatchAll(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, matcher.ErrEmptySkills), errors.Is(err, matcher.ErrInvalidMinExperience):
			c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		default:
			logger.Error().Err(err).Msg("匹配执行失败")
			c.JSON(consts.StatusInternalServerError, utils.H{"error": "匹配执行失败"})
		}
		return
	}

	c.JSON(consts.StatusOK, types.MatchResponse{Results: results})
}

// HandleDelete 删除简历文件及其派生数据（文本缓存、元数据）
// 派生数据的删除是尽力而为，失败只记日志，不影响主删除结果
func (h *ResumeHandler) HandleDelete(ctx context.Context, c *app.RequestContext) {
	name := c.Param("name")
	if err := storage.CheckFileName(name); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "非法文件名"})
		return
	}

	if err := h.storage.Files.Delete(name); err != nil {
		if errors.Is(err, storage.ErrResumeNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "简历不存在"})
			return
		}
		logger.Error().Err(err).Str("file_name", name).Msg("删除简历失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "删除简历失败"})
		return
	}

	if err := h.storage.Cache.Delete(ctx, name); err != nil {
		logger.Warn().Err(err).Str("file_name", name).Msg("删除文本缓存失败")
	}
	if err := h.storage.Metadata.Delete(name); err != nil {
		logger.Warn().Err(err).Str("file_name", name).Msg("删除元数据失败")
	}

	c.JSON(consts.StatusOK, utils.H{"status": "DELETED", "file_name": name})
}

// HandleGetMetadata 读取简历的元数据覆盖值
func (h *ResumeHandler) HandleGetMetadata(ctx context.Context, c *app.RequestContext) {
	name := c.Param("name")
	if err := storage.CheckFileName(name); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "非法文件名"})
		return
	}
	if _, err := h.storage.Files.Stat(name); err != nil {
		c.JSON(consts.StatusNotFound, utils.H{"error": "简历不存在"})
		return
	}

	meta := types.ResumeMetadata{FileName: name}
	if v, ok, err := h.storage.Metadata.ReadOverride(name); err != nil {
		logger.Error().Err(err).Str("file_name", name).Msg("读取元数据失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "读取元数据失败"})
		return
	} else if ok {
		meta.ExperienceYearsOverride = &v
	}

	c.JSON(consts.StatusOK, meta)
}

// HandleSetMetadata 写入或清除简历的经验年限覆盖值
func (h *ResumeHandler) HandleSetMetadata(ctx context.Context, c *app.RequestContext) {
	name := c.Param("name")
	if err := storage.CheckFileName(name); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "非法文件名"})
		return
	}
	if _, err := h.storage.Files.Stat(name); err != nil {
		c.JSON(consts.StatusNotFound, utils.H{"error": "简历不存在"})
		return
	}

	var req types.OverrideUpdateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
		return
	}

	if err := h.storage.Metadata.WriteOverride(name, req.ExperienceYearsOverride); err != nil {
		if errors.Is(err, storage.ErrOverrideOutOfRange) {
			c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		logger.Error().Err(err).Str("file_name", name).Msg("写入元数据失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "写入元数据失败"})
		return
	}

	meta := types.ResumeMetadata{FileName: name, ExperienceYearsOverride: req.ExperienceYearsOverride}
	c.JSON(consts.StatusOK, meta)
}
