package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

// EnvPrefix: 配置覆盖类环境变量前缀。
const EnvPrefix = "ANYPARSER_"

// Defaults 返回带有安全默认值的 Config 雏形。
// 解析选项不在此处设默认（由 options.Builtin 统一提供）。
func Defaults() Config {
	return Config{
		Logging: Logging{Level: "info"},
		Components: Components{
			Transport:  "http",
			FileSystem: "fs",
			Writer:     "fs",
		},
	}
}

// LoadFile 从文件路径或原始内容解析 Config（严格拒绝未知字段）。
// 按扩展名选择格式：.yaml/.yml → YAML；.json5 → JSON5；其余 → JSON。
// raw 非空时优先使用 raw，path 仅用于判定格式。
func LoadFile(path string, raw []byte) (Config, error) {
	var cfg Config
	if len(raw) == 0 {
		if path == "" {
			return cfg, errors.New("no config source provided")
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		raw = b
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("yaml: %w", err)
		}
		return cfg, nil
	case ".json5":
		var m map[string]any
		if err := json5.Unmarshal(raw, &m); err != nil {
			return cfg, fmt.Errorf("json5: %w", err)
		}
		norm, err := json.Marshal(m)
		if err != nil {
			return cfg, err
		}
		raw = norm
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 字符串空值、指针 nil、切片为空视为未设置；原样 JSON 整体替换，不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}

	p, q := &out.Parse, over.Parse
	setStr(&p.APIURL, q.APIURL)
	setStr(&p.Format, q.Format)
	setStr(&p.Model, q.Model)
	setStr(&p.Encoding, q.Encoding)
	setStr(&p.OCRPreset, q.OCRPreset)
	setStr(&p.Strategy, q.Strategy)
	setStr(&p.TraversalScope, q.TraversalScope)
	if q.Image != nil {
		v := *q.Image
		p.Image = &v
	}
	if q.Table != nil {
		v := *q.Table
		p.Table = &v
	}
	if q.MaxDepth != nil {
		v := *q.MaxDepth
		p.MaxDepth = &v
	}
	if q.MaxExecutions != nil {
		v := *q.MaxExecutions
		p.MaxExecutions = &v
	}
	if len(q.OCRLanguages) > 0 {
		p.OCRLanguages = cloneStrings(q.OCRLanguages)
	}

	setStr(&out.Output.Dir, over.Output.Dir)
	setStr(&out.Logging.Level, over.Logging.Level)

	setStr(&out.Components.Transport, over.Components.Transport)
	setStr(&out.Components.FileSystem, over.Components.FileSystem)
	setStr(&out.Components.Writer, over.Components.Writer)

	if len(over.Options.Transport) > 0 {
		out.Options.Transport = cloneRaw(over.Options.Transport)
	}
	if len(over.Options.FileSystem) > 0 {
		out.Options.FileSystem = cloneRaw(over.Options.FileSystem)
	}
	if len(over.Options.Writer) > 0 {
		out.Options.Writer = cloneRaw(over.Options.Writer)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 ANYPARSER_；API_URL/API_KEY 由 options.LoadDefaults 读取，此处忽略；
// 空值视为未设置；布尔/整数非法时返回错误。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[len(EnvPrefix):eq]
		val := strings.TrimSpace(kv[eq+1:])
		if val == "" {
			continue
		}
		var err error
		switch key {
		case "INPUTS":
			over.Inputs = splitComma(val)
		case "FORMAT":
			over.Parse.Format = val
		case "MODEL":
			over.Parse.Model = val
		case "ENCODING":
			over.Parse.Encoding = val
		case "IMAGE":
			over.Parse.Image, err = parseBool(val)
		case "TABLE":
			over.Parse.Table, err = parseBool(val)
		case "OCR_LANGUAGE":
			over.Parse.OCRLanguages = splitComma(val)
		case "OCR_PRESET":
			over.Parse.OCRPreset = val
		case "MAX_DEPTH":
			over.Parse.MaxDepth, err = parseInt(val)
		case "MAX_EXECUTIONS":
			over.Parse.MaxExecutions, err = parseInt(val)
		case "STRATEGY":
			over.Parse.Strategy = val
		case "TRAVERSAL_SCOPE":
			over.Parse.TraversalScope = val
		case "OUTPUT_DIR":
			over.Output.Dir = val
		case "LOG_LEVEL":
			over.Logging.Level = val
		case "COMPONENTS_TRANSPORT":
			over.Components.Transport = val
		case "COMPONENTS_FILESYSTEM":
			over.Components.FileSystem = val
		case "COMPONENTS_WRITER":
			over.Components.Writer = val
		case "OPTIONS_TRANSPORT_JSON":
			over.Options.Transport = json.RawMessage(val)
		case "OPTIONS_FILESYSTEM_JSON":
			over.Options.FileSystem = json.RawMessage(val)
		case "OPTIONS_WRITER_JSON":
			over.Options.Writer = json.RawMessage(val)
		default:
			// 集合之外的键（API_URL/API_KEY/CONFIG_FILE 等）忽略。
		}
		if err != nil {
			return Config{}, fmt.Errorf("env %s%s: %w", EnvPrefix, key, err)
		}
	}
	return over, nil
}

func setStr(dst *string, v string) {
	if t := strings.TrimSpace(v); t != "" {
		*dst = t
	}
}

func parseBool(s string) (*bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt(s string) (*int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
