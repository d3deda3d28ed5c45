package options

import (
	"errors"
	"strings"

	"anyparser/pkg/contract"
)

var errNotAbsolute = errors.New("not an absolute URL")

// Resolve 合并默认值与调用方选项并校验。
// 校验顺序：key → API URL → OCR 语言 → OCR 预设 → format → model → encoding → crawler 参数。
// 失败返回 *contract.ConfigurationError。不读取环境。
func Resolve(d Defaults, user *Options) (contract.Configuration, error) {
	var o Options
	if user != nil {
		o = *user
	}

	key := d.APIKey
	if o.APIKey != nil {
		key = o.APIKey
	}
	if key == nil || *key == "" {
		return contract.Configuration{}, contract.Configurationf("API key is required")
	}
	if strings.TrimSpace(*key) == "" {
		return contract.Configuration{}, contract.Configurationf("API key must be a non-empty string")
	}

	apiURL := d.APIURL
	if strings.TrimSpace(o.APIURL) != "" {
		u, err := parseAbsolute(o.APIURL)
		if err != nil {
			return contract.Configuration{}, contract.Configurationf("API URL is invalid: %s", o.APIURL)
		}
		apiURL = u
	}
	if apiURL == nil {
		return contract.Configuration{}, contract.Configurationf("API URL is required")
	}

	for _, l := range o.OCRLanguages {
		if !l.Valid() {
			return contract.Configuration{}, contract.Configurationf("Invalid OCR language")
		}
	}
	if o.OCRPreset != "" && !o.OCRPreset.Valid() {
		return contract.Configuration{}, contract.Configurationf("Invalid OCR preset")
	}

	format := pick(o.Format, d.Format, contract.FormatJSON)
	if !format.Valid() {
		return contract.Configuration{}, contract.Configurationf("Unsupported format: %s", format)
	}
	model := pick(o.Model, d.Model, contract.ModelText)
	if !model.Valid() {
		return contract.Configuration{}, contract.Configurationf("Unsupported model: %s", model)
	}
	enc := pick(o.Encoding, d.Encoding, contract.EncodingUTF8)
	if !enc.Valid() {
		return contract.Configuration{}, contract.Configurationf("Unsupported encoding: %s", enc)
	}

	if o.MaxDepth != nil && *o.MaxDepth < 0 {
		return contract.Configuration{}, contract.Configurationf("Invalid max depth: %d", *o.MaxDepth)
	}
	if o.MaxExecutions != nil && *o.MaxExecutions < 0 {
		return contract.Configuration{}, contract.Configurationf("Invalid max executions: %d", *o.MaxExecutions)
	}
	if o.Strategy != "" && !o.Strategy.Valid() {
		return contract.Configuration{}, contract.Configurationf("Invalid crawl strategy: %s", o.Strategy)
	}
	if o.TraversalScope != "" && !o.TraversalScope.Valid() {
		return contract.Configuration{}, contract.Configurationf("Invalid traversal scope: %s", o.TraversalScope)
	}

	// 复制 URL，避免调用方后续修改 Defaults 影响已生成的配置。
	u := *apiURL
	return contract.Configuration{
		APIURL:   &u,
		APIKey:   *key,
		Format:   format,
		Encoding: enc,
		Settings: settingsFor(model, d, o),
	}, nil
}

func settingsFor(m contract.Model, d Defaults, o Options) contract.ModelSettings {
	switch m {
	case contract.ModelOCR:
		var langs []contract.OCRLanguage
		if len(o.OCRLanguages) > 0 {
			langs = append(langs, o.OCRLanguages...)
		}
		return contract.OCRSettings{Languages: langs, Preset: o.OCRPreset}
	case contract.ModelCrawler:
		return contract.CrawlerSettings{
			MaxDepth:       cloneInt(o.MaxDepth),
			MaxExecutions:  cloneInt(o.MaxExecutions),
			Strategy:       o.Strategy,
			TraversalScope: o.TraversalScope,
		}
	}
	ex := contract.Extraction{Image: boolOr(o.Image, d.Image), Table: boolOr(o.Table, d.Table)}
	switch m {
	case contract.ModelVLM:
		return contract.VLMSettings{Extraction: ex}
	case contract.ModelLAM:
		return contract.LAMSettings{Extraction: ex}
	default:
		return contract.TextSettings{Extraction: ex}
	}
}

func pick[T ~string](user, def, builtin T) T {
	if user != "" {
		return user
	}
	if def != "" {
		return def
	}
	return builtin
}

func boolOr(p *bool, def bool) *bool {
	v := def
	if p != nil {
		v = *p
	}
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
