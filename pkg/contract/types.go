package contract

import (
	"net/url"
	"strings"
)

// Format: 请求的响应编码。
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Valid 判断是否为已知格式。
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatMarkdown, FormatHTML:
		return true
	}
	return false
}

// Model: 解析请求的工作模式。
type Model string

const (
	ModelText    Model = "text"
	ModelOCR     Model = "ocr"
	ModelVLM     Model = "vlm"
	ModelLAM     Model = "lam"
	ModelCrawler Model = "crawler"
)

func (m Model) Valid() bool {
	switch m {
	case ModelText, ModelOCR, ModelVLM, ModelLAM, ModelCrawler:
		return true
	}
	return false
}

// Encoding: 文本编码。
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin1"
)

func (e Encoding) Valid() bool { return e == EncodingUTF8 || e == EncodingLatin1 }

// CrawlStrategy: 跟随链接时的遍历顺序（LIFO 近似深度优先，FIFO 近似广度优先）。
type CrawlStrategy string

const (
	StrategyLIFO CrawlStrategy = "LIFO"
	StrategyFIFO CrawlStrategy = "FIFO"
)

func (s CrawlStrategy) Valid() bool { return s == StrategyLIFO || s == StrategyFIFO }

// TraversalScope: 抓取边界（URL 子树 / 整个域名）。
type TraversalScope string

const (
	ScopeSubtree TraversalScope = "subtree"
	ScopeDomain  TraversalScope = "domain"
)

func (s TraversalScope) Valid() bool { return s == ScopeSubtree || s == ScopeDomain }

// ModelSettings: 按 Model 区分的封闭变体，每个变体只携带自身合法的字段。
// 约束：OCR 字段与 crawler 字段不可能同时出现；image/table 仅存在于 text/vlm/lam。
type ModelSettings interface {
	Model() Model
	isModelSettings()
}

// Extraction: text/vlm/lam 共享的可选开关（nil 表示未设置，线上不发送）。
type Extraction struct {
	Image *bool
	Table *bool
}

type TextSettings struct{ Extraction }

type VLMSettings struct{ Extraction }

type LAMSettings struct{ Extraction }

// OCRSettings: 仅 OCR 模式可用。
type OCRSettings struct {
	Languages []OCRLanguage
	Preset    OCRPreset // 空表示未设置
}

// CrawlerSettings: 仅 crawler 模式可用；指针为 nil 表示未设置。
type CrawlerSettings struct {
	MaxDepth       *int
	MaxExecutions  *int
	Strategy       CrawlStrategy
	TraversalScope TraversalScope
}

func (TextSettings) Model() Model    { return ModelText }
func (VLMSettings) Model() Model     { return ModelVLM }
func (LAMSettings) Model() Model     { return ModelLAM }
func (OCRSettings) Model() Model     { return ModelOCR }
func (CrawlerSettings) Model() Model { return ModelCrawler }

func (TextSettings) isModelSettings()    {}
func (VLMSettings) isModelSettings()     {}
func (LAMSettings) isModelSettings()     {}
func (OCRSettings) isModelSettings()     {}
func (CrawlerSettings) isModelSettings() {}

// ResolvedInput: 校验后的输入集合（FileSet 或 CrawlTarget 二选一）。
type ResolvedInput interface {
	isResolvedInput()
}

// File: 已完整读入内存的单个文件。
type File struct {
	Name    string // 原始基名
	Content []byte
}

// FileSet: 按输入顺序排列的文件集合。
type FileSet []File

// CrawlTarget: 规范化后的绝对 URL。
type CrawlTarget struct {
	URL string
}

func (FileSet) isResolvedInput()     {}
func (CrawlTarget) isResolvedInput() {}

// Configuration: 解析完成后的只读请求配置。
// 约束：APIURL 与 APIKey 在 Resolve 成功后必然存在；Input 由输入校验阶段填充。
type Configuration struct {
	APIURL   *url.URL
	APIKey   string
	Format   Format
	Encoding Encoding
	Settings ModelSettings
	Input    ResolvedInput
}

// Model 返回当前变体对应的模式；未设置时视为 text。
func (c Configuration) Model() Model {
	if c.Settings == nil {
		return ModelText
	}
	return c.Settings.Model()
}

// WithInput 返回挂载了输入集合的副本（原值不变）。
func (c Configuration) WithInput(in ResolvedInput) Configuration {
	out := c
	out.Input = in
	return out
}

// Redacted 返回适合写入日志的 key 摘要（仅保留末尾 4 位）。
func (c Configuration) Redacted() string {
	k := strings.TrimSpace(c.APIKey)
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}
