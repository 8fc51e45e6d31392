package parser

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxTextExtractor 使用 nguyenthenguyen/docx 从 Word 文档中提取纯文本
type DocxTextExtractor struct {
	logger *log.Logger
}

// DocxOption DOCX提取器的配置选项
type DocxOption func(*DocxTextExtractor)

// WithDocxLogger 配置自定义日志记录器
func WithDocxLogger(logger *log.Logger) DocxOption {
	return func(d *DocxTextExtractor) {
		d.logger = logger
	}
}

// NewDocxTextExtractor 初始化DOCX文本提取器
func NewDocxTextExtractor(options ...DocxOption) *DocxTextExtractor {
	extractor := &DocxTextExtractor{
		logger: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// 段落结束标签映射为换行，其余XML标签全部剥离
var (
	docxParagraphEndRe = regexp.MustCompile(`</w:p>`)
	docxTagRe          = regexp.MustCompile(`<[^>]+>`)
	docxEntityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

// ExtractFromBytes 从DOCX文件内容中提取纯文本
func (d *DocxTextExtractor) ExtractFromBytes(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	text := StripDocxMarkup(content)

	d.logger.Printf("DOCX处理完成: 提取了 %d 个字符", len(text))
	return text, nil
}

// StripDocxMarkup 剥离document.xml中的标签，只保留文本内容
// 段落边界转换为换行，XML实体还原为原字符
func StripDocxMarkup(content string) string {
	text := docxParagraphEndRe.ReplaceAllString(content, "\n")
	text = docxTagRe.ReplaceAllString(text, "")
	text = docxEntityReplacer.Replace(text)
	return strings.TrimSpace(text)
}
