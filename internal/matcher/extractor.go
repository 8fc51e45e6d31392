package matcher

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/storage"
)

// PDFExtractor 从PDF内容中提取文本
type PDFExtractor interface {
	ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, error)
}

// DocxExtractor 从DOCX内容中提取文本
type DocxExtractor interface {
	ExtractFromBytes(data []byte) (string, error)
}

// TextExtractor 按文件类型提取简历文本，结果写入外部缓存侧表
//
// 提取失败在本层吞掉并降级为空文本：一份解析不了的简历仍然要出现在
// 匹配结果中（零命中、无经验信号），而不是让整批匹配失败
type TextExtractor struct {
	files *storage.FileStore
	cache storage.TextCache
	pdf   PDFExtractor
	docx  DocxExtractor
}

// NewTextExtractor 创建文本提取器
func NewTextExtractor(files *storage.FileStore, cache storage.TextCache, pdf PDFExtractor, docx DocxExtractor) *TextExtractor {
	return &TextExtractor{
		files: files,
		cache: cache,
		pdf:   pdf,
		docx:  docx,
	}
}

// Extract 提取一份简历的归一化文本
//
// 先查缓存：缓存项时间戳不早于源文件修改时间即直接返回，跳过重复解析。
// 未命中时按扩展名分发解析，换行归一化(CRLF->LF)后写回缓存
func (e *TextExtractor) Extract(ctx context.Context, fileName string) string {
	info, err := e.files.Stat(fileName)
	if err != nil {
		logger.Warn().Err(err).Str("file_name", fileName).Msg("读取简历文件信息失败，按空文本处理")
		return ""
	}

	cached, hit, err := e.cache.Get(ctx, fileName, info.ModTime())
	if err != nil {
		logger.Warn().Err(err).Str("file_name", fileName).Msg("读取文本缓存失败，将重新提取")
	} else if hit {
		return cached
	}

	text := normalizeNewlines(e.extractByType(ctx, fileName))

	if err := e.cache.Put(ctx, fileName, text, info.ModTime()); err != nil {
		// 缓存写失败不影响本次结果，下次匹配会再次尝试
		logger.Warn().Err(err).Str("file_name", fileName).Msg("写入文本缓存失败")
	}
	return text
}

// extractByType 按扩展名（大小写不敏感）分发解析，不支持的类型返回空文本
func (e *TextExtractor) extractByType(ctx context.Context, fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt":
		data, err := e.files.Read(fileName)
		if err != nil {
			logger.Warn().Err(NewExtractError(fileName, err.Error())).Msg("读取文本简历失败")
			return ""
		}
		return string(data)

	case ".pdf":
		if e.pdf == nil {
			logger.Warn().Str("file_name", fileName).Msg("PDF提取器未配置")
			return ""
		}
		data, err := e.files.Read(fileName)
		if err != nil {
			logger.Warn().Err(NewExtractError(fileName, err.Error())).Msg("读取PDF简历失败")
			return ""
		}
		text, err := e.pdf.ExtractFromReader(ctx, bytes.NewReader(data), fileName)
		if err != nil {
			logger.Warn().Err(NewExtractError(fileName, err.Error())).Msg("解析PDF简历失败")
			return ""
		}
		return text

	case ".docx":
		if e.docx == nil {
			logger.Warn().Str("file_name", fileName).Msg("DOCX提取器未配置")
			return ""
		}
		data, err := e.files.Read(fileName)
		if err != nil {
			logger.Warn().Err(NewExtractError(fileName, err.Error())).Msg("读取DOCX简历失败")
			return ""
		}
		text, err := e.docx.ExtractFromBytes(data)
		if err != nil {
			logger.Warn().Err(NewExtractError(fileName, err.Error())).Msg("解析DOCX简历失败")
			return ""
		}
		return text

	default:
		// 不支持的类型（例如未转换的.doc）按无信号处理
		return ""
	}
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
