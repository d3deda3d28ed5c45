// Package form 将已解析的配置转换为 multipart 线上请求描述。
package form

import (
	"strconv"
	"strings"

	"anyparser/pkg/contract"
)

// Build 构造线上请求（纯函数）。
// 规则：
//   - format、model 总是发送；
//   - image/table 仅在 text/vlm/lam 且已设置时发送；
//   - ocrLanguage（逗号拼接，非空时）与 ocrPreset（已设置时）仅在 ocr 发送；
//   - crawler 总是发送 url（缺省为空串），maxDepth/maxExecutions/strategy/traversalScope 已设置时发送；
//   - 文件部件仅在非 crawler 发送。
func Build(cfg contract.Configuration) contract.WireRequest {
	var w contract.WireRequest
	add := func(name, value string) {
		w.Fields = append(w.Fields, contract.Field{Name: name, Value: value})
	}
	add("format", string(cfg.Format))
	add("model", string(cfg.Model()))

	switch s := cfg.Settings.(type) {
	case contract.TextSettings:
		addExtraction(add, s.Extraction)
	case contract.VLMSettings:
		addExtraction(add, s.Extraction)
	case contract.LAMSettings:
		addExtraction(add, s.Extraction)
	case contract.OCRSettings:
		if len(s.Languages) > 0 {
			langs := make([]string, len(s.Languages))
			for i, l := range s.Languages {
				langs[i] = string(l)
			}
			add("ocrLanguage", strings.Join(langs, ","))
		}
		if s.Preset != "" {
			add("ocrPreset", string(s.Preset))
		}
	case contract.CrawlerSettings:
		target, _ := cfg.Input.(contract.CrawlTarget)
		add("url", target.URL)
		if s.MaxDepth != nil {
			add("maxDepth", strconv.Itoa(*s.MaxDepth))
		}
		if s.MaxExecutions != nil {
			add("maxExecutions", strconv.Itoa(*s.MaxExecutions))
		}
		if s.Strategy != "" {
			add("strategy", string(s.Strategy))
		}
		if s.TraversalScope != "" {
			add("traversalScope", string(s.TraversalScope))
		}
		return w
	}

	if files, ok := cfg.Input.(contract.FileSet); ok {
		for _, f := range files {
			w.Files = append(w.Files, contract.FilePart{FileName: f.Name, Content: f.Content})
		}
	}
	return w
}

func addExtraction(add func(string, string), ex contract.Extraction) {
	if ex.Image != nil {
		add("image", strconv.FormatBool(*ex.Image))
	}
	if ex.Table != nil {
		add("table", strconv.FormatBool(*ex.Table))
	}
}
