// Package options 合并默认值与调用方选项，产出只读的 contract.Configuration。
package options

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"anyparser/pkg/contract"
)

// FallbackAPIURL: 未配置 ANYPARSER_API_URL（或其值非法）时使用的服务地址。
const FallbackAPIURL = "https://anyparserapi.com"

const (
	EnvAPIURL = "ANYPARSER_API_URL"
	EnvAPIKey = "ANYPARSER_API_KEY"
)

// Options: 调用方选项。指针/空值字段表示“未设置”，沿用默认值；显式的 false/0 会被保留。
// OCR 字段仅在 Model=ocr 时生效，crawler 字段仅在 Model=crawler 时生效（但都会被校验）。
type Options struct {
	APIURL   string  // 空表示未设置
	APIKey   *string // nil 表示未设置
	Format   contract.Format
	Model    contract.Model
	Encoding contract.Encoding

	Image *bool
	Table *bool

	OCRLanguages []contract.OCRLanguage
	OCRPreset    contract.OCRPreset

	MaxDepth       *int
	MaxExecutions  *int
	Strategy       contract.CrawlStrategy
	TraversalScope contract.TraversalScope
}

// Defaults: 进程级默认值，由 LoadDefaults 一次性读取环境得到。
type Defaults struct {
	APIURL   *url.URL
	APIKey   *string
	Format   contract.Format
	Model    contract.Model
	Encoding contract.Encoding
	Image    bool
	Table    bool
}

// Builtin 返回不读取环境的内置默认值（无 key）。
func Builtin() Defaults {
	u, _ := url.Parse(FallbackAPIURL)
	return Defaults{
		APIURL:   u,
		Format:   contract.FormatJSON,
		Model:    contract.ModelText,
		Encoding: contract.EncodingUTF8,
		Image:    true,
		Table:    true,
	}
}

// LoadDefaults 读取 ANYPARSER_API_URL 与 ANYPARSER_API_KEY。
// 空白值视为未设置；URL 非法时记录告警并回退到 FallbackAPIURL。
func LoadDefaults(lookup contract.LookupFunc, log zerolog.Logger) Defaults {
	d := Builtin()
	if lookup == nil {
		return d
	}
	if raw, ok := lookupNonBlank(lookup, EnvAPIURL); ok {
		if u, err := parseAbsolute(raw); err == nil {
			d.APIURL = u
		} else {
			log.Warn().Str("value", raw).Msg("invalid API URL")
			log.Debug().Str("fallback", FallbackAPIURL).Msg("defaulting API URL")
		}
	}
	if key, ok := lookupNonBlank(lookup, EnvAPIKey); ok {
		d.APIKey = &key
	}
	return d
}

func lookupNonBlank(lookup contract.LookupFunc, name string) (string, bool) {
	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// parseAbsolute 要求 scheme 与 host 均存在。
func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errNotAbsolute}
	}
	return u, nil
}

// Clone 深拷贝，调用方后续修改原值不影响副本。nil 返回 nil。
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	c := *o
	if o.APIKey != nil {
		k := *o.APIKey
		c.APIKey = &k
	}
	c.Image = cloneBool(o.Image)
	c.Table = cloneBool(o.Table)
	c.MaxDepth = cloneInt(o.MaxDepth)
	c.MaxExecutions = cloneInt(o.MaxExecutions)
	if o.OCRLanguages != nil {
		c.OCRLanguages = append([]contract.OCRLanguage(nil), o.OCRLanguages...)
	}
	return &c
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
