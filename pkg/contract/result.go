package contract

// Result: JSON 响应中的单条结果（封闭联合）。
// 变体按区分字段判定：startUrl/robotsDirective → *CrawlResult；
// items/totalItems → *DocumentResult；其余 → *TextResult。
type Result interface {
	Base() *ResultBase
	isResult()
}

// ResultBase: 所有结果共享的字段。
type ResultBase struct {
	RID              string `json:"rid"`
	OriginalFilename string `json:"originalFilename,omitempty"`
	Checksum         string `json:"checksum,omitempty"`
	TotalCharacters  *int   `json:"totalCharacters,omitempty"`
	Markdown         string `json:"markdown,omitempty"`
}

func (b *ResultBase) Base() *ResultBase { return b }

// TextResult: 仅含公共字段的结果。
type TextResult struct {
	ResultBase
}

// ImageReference: 抽取出的图片。
type ImageReference struct {
	Base64Data  string `json:"base64Data"`
	DisplayName string `json:"displayName"`
	Page        *int   `json:"page,omitempty"`
	ImageIndex  int    `json:"imageIndex"`
}

// Page: 分页文档的一页。
type Page struct {
	PageNumber int              `json:"pageNumber"`
	Markdown   string           `json:"markdown,omitempty"`
	Text       string           `json:"text,omitempty"`
	Images     []ImageReference `json:"images,omitempty"`
}

// DocumentResult: 分页文档（PDF 等）。
type DocumentResult struct {
	ResultBase
	TotalItems *int   `json:"totalItems,omitempty"`
	Items      []Page `json:"items,omitempty"`
}

// CrawlDirective: 抓取指令（HTTP Header / HTML Meta / Combined）。
// Combined 时 Underlying 列出参与合并的原始指令。
type CrawlDirective struct {
	Type             string           `json:"type"`
	Priority         int              `json:"priority"`
	Name             string           `json:"name,omitempty"`
	NoIndex          *bool            `json:"noindex,omitempty"`
	NoFollow         *bool            `json:"nofollow,omitempty"`
	CrawlDelay       *float64         `json:"crawlDelay,omitempty"`
	UnavailableAfter string           `json:"unavailableAfter,omitempty"`
	Underlying       []CrawlDirective `json:"underlying,omitempty"`
}

// CrawledURL: 单个被抓取页面。
type CrawledURL struct {
	URL             string           `json:"url"`
	Title           string           `json:"title,omitempty"`
	CrawledAt       string           `json:"crawledAt,omitempty"`
	StatusCode      int              `json:"statusCode"`
	StatusMessage   string           `json:"statusMessage"`
	Directive       CrawlDirective   `json:"directive"`
	TotalCharacters *int             `json:"totalCharacters,omitempty"`
	Markdown        string           `json:"markdown,omitempty"`
	Images          []ImageReference `json:"images,omitempty"`
	Text            string           `json:"text,omitempty"`
	PolitenessDelay float64          `json:"politenessDelay"`
}

// RobotsDirective: robots.txt 摘要。
type RobotsDirective struct {
	UserAgent  string   `json:"userAgent"`
	Disallow   []string `json:"disallow"`
	Allow      []string `json:"allow"`
	CrawlDelay *float64 `json:"crawlDelay,omitempty"`
}

// CrawlResult: 抓取结果。
type CrawlResult struct {
	ResultBase
	StartURL        string          `json:"startUrl"`
	TotalItems      int             `json:"totalItems"`
	Items           []CrawledURL    `json:"items,omitempty"`
	RobotsDirective RobotsDirective `json:"robotsDirective"`
}

func (*TextResult) isResult()     {}
func (*DocumentResult) isResult() {}
func (*CrawlResult) isResult()    {}
