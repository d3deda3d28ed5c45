package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"anyparser/internal/pipeline"
	"anyparser/pkg/contract"
	"anyparser/pkg/options"
	"anyparser/pkg/registry"
)

// Validate 对最小必要边界做静态校验；解析选项复用 options.Resolve 的规则提前报错。
func Validate(cfg Config) error {
	if len(cfg.Inputs) == 0 {
		return errors.New("config: inputs empty")
	}
	for _, in := range cfg.Inputs {
		if strings.TrimSpace(in) == "" {
			return errors.New("config: input cannot be empty")
		}
	}
	d := Defaults()
	if name := effName(cfg.Components.Transport, d.Components.Transport); registry.Transport[name] == nil {
		return fmt.Errorf("config: transport %q not registered", name)
	}
	if name := effName(cfg.Components.FileSystem, d.Components.FileSystem); registry.FileSystem[name] == nil {
		return fmt.Errorf("config: filesystem %q not registered", name)
	}
	if WriterEnabled(cfg) {
		if name := effName(cfg.Components.Writer, d.Components.Writer); registry.Writer[name] == nil {
			return fmt.Errorf("config: writer %q not registered", name)
		}
	}
	// key 由环境提供，此处以占位值通过“必填”检查，仅校验其余选项。
	probe := options.Builtin()
	placeholder := "validate"
	probe.APIKey = &placeholder
	if _, err := options.Resolve(probe, ParseOptions(cfg.Parse)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// WriterEnabled: 配置了输出目录时结果落盘，否则写到 stdout。
func WriterEnabled(cfg Config) bool { return strings.TrimSpace(cfg.Output.Dir) != "" }

// ParseOptions 将配置中的解析选项转换为 options.Options（不含 key）。
func ParseOptions(p Parse) *options.Options {
	o := &options.Options{
		APIURL:         strings.TrimSpace(p.APIURL),
		Format:         contract.Format(p.Format),
		Model:          contract.Model(p.Model),
		Encoding:       contract.Encoding(p.Encoding),
		OCRPreset:      contract.OCRPreset(p.OCRPreset),
		Strategy:       contract.CrawlStrategy(p.Strategy),
		TraversalScope: contract.TraversalScope(p.TraversalScope),
		Image:          p.Image,
		Table:          p.Table,
		MaxDepth:       p.MaxDepth,
		MaxExecutions:  p.MaxExecutions,
	}
	for _, l := range p.OCRLanguages {
		o.OCRLanguages = append(o.OCRLanguages, contract.OCRLanguage(strings.TrimSpace(l)))
	}
	return o.Clone()
}

// Assemble 构造 pipeline.Components 与解析选项。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (pipeline.Components, *options.Options, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, nil, err
	}
	d := Defaults()

	tr, err := registry.Transport[effName(cfg.Components.Transport, d.Components.Transport)](cfg.Options.Transport)
	if err != nil {
		return pipeline.Components{}, nil, fmt.Errorf("transport options: %w", err)
	}
	fs, err := registry.FileSystem[effName(cfg.Components.FileSystem, d.Components.FileSystem)](cfg.Options.FileSystem)
	if err != nil {
		return pipeline.Components{}, nil, fmt.Errorf("filesystem options: %w", err)
	}
	comp := pipeline.Components{FS: fs, Transport: tr}

	if WriterEnabled(cfg) {
		raw, err := withOutputDir(cfg.Options.Writer, strings.TrimSpace(cfg.Output.Dir))
		if err != nil {
			return pipeline.Components{}, nil, fmt.Errorf("writer options: %w", err)
		}
		w, err := registry.Writer[effName(cfg.Components.Writer, d.Components.Writer)](raw)
		if err != nil {
			return pipeline.Components{}, nil, fmt.Errorf("writer options: %w", err)
		}
		comp.Writer = w
	}
	return comp, ParseOptions(cfg.Parse), nil
}

// withOutputDir: 将 output_dir 写入 writer 选项（覆盖同名键）。
func withOutputDir(raw json.RawMessage, dir string) (json.RawMessage, error) {
	m := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		if m == nil {
			m = map[string]any{}
		}
	}
	m["output_dir"] = dir
	return json.Marshal(m)
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
