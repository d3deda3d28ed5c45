package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// 键使用 snake_case；未知字段在解析期失败。
// API key 不进入配置文件，只从 ANYPARSER_API_KEY（或 .env）读取。
type Config struct {
	Inputs  []string `json:"inputs" yaml:"inputs"`
	Parse   Parse    `json:"parse" yaml:"parse"`
	Output  Output   `json:"output" yaml:"output"`
	Logging Logging  `json:"logging" yaml:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components" yaml:"components"`
	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options" yaml:"options"`
}

// Parse: 解析请求选项；空值/nil 表示沿用默认。
type Parse struct {
	APIURL         string   `json:"api_url" yaml:"api_url"`
	Format         string   `json:"format" yaml:"format"`
	Model          string   `json:"model" yaml:"model"`
	Encoding       string   `json:"encoding" yaml:"encoding"`
	Image          *bool    `json:"image,omitempty" yaml:"image,omitempty"`
	Table          *bool    `json:"table,omitempty" yaml:"table,omitempty"`
	OCRLanguages   []string `json:"ocr_languages" yaml:"ocr_languages"`
	OCRPreset      string   `json:"ocr_preset" yaml:"ocr_preset"`
	MaxDepth       *int     `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	MaxExecutions  *int     `json:"max_executions,omitempty" yaml:"max_executions,omitempty"`
	Strategy       string   `json:"strategy" yaml:"strategy"`
	TraversalScope string   `json:"traversal_scope" yaml:"traversal_scope"`
}

// Output: 结果去向。Dir 非空时启用 writer 并注入 output_dir；为空时输出到 stdout。
type Output struct {
	Dir string `json:"dir" yaml:"dir"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `json:"level" yaml:"level"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Transport  string `json:"transport" yaml:"transport"`
	FileSystem string `json:"filesystem" yaml:"filesystem"`
	Writer     string `json:"writer" yaml:"writer"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Transport  json.RawMessage `json:"transport,omitempty"`
	FileSystem json.RawMessage `json:"filesystem,omitempty"`
	Writer     json.RawMessage `json:"writer,omitempty"`
}

// UnmarshalYAML: YAML 子树转为 JSON 原文，交由工厂严格解码。
func (o *Options) UnmarshalYAML(n *yaml.Node) error {
	var m map[string]any
	if err := n.Decode(&m); err != nil {
		return err
	}
	for k, v := range m {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("options.%s: %w", k, err)
		}
		switch k {
		case "transport":
			o.Transport = raw
		case "filesystem":
			o.FileSystem = raw
		case "writer":
			o.Writer = raw
		default:
			return fmt.Errorf("options: unknown component %q", k)
		}
	}
	return nil
}

// MarshalYAML: 原样 JSON 还原为结构化节点，便于模板输出。
func (o Options) MarshalYAML() (any, error) {
	out := map[string]any{}
	for k, raw := range map[string]json.RawMessage{"transport": o.Transport, "filesystem": o.FileSystem, "writer": o.Writer} {
		if len(raw) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("options.%s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
