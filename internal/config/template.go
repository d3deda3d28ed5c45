package config

import (
	"encoding/json"
	"strings"

	"anyparser/pkg/options"
)

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// 真实 HTTP 传输、本地文件系统、结果写入 ./out；选项键全部列出，值为中性默认。
func DefaultTemplateConfig() Config {
	d := Defaults()
	yes := true
	cfg := Config{
		Inputs: []string{},
		Parse: Parse{
			Format:       "json",
			Model:        "text",
			Encoding:     "utf-8",
			Image:        &yes,
			Table:        &yes,
			OCRLanguages: []string{},
		},
		Output:     Output{Dir: "out"},
		Logging:    d.Logging,
		Components: d.Components,
	}
	cfg.Options.Transport = json.RawMessage(`{
  "timeout_seconds": 120,
  "user_agent": "",
  "extra_headers": {},
  "max_reply_bytes": 0,
  "requests_per_minute": 0,
  "upload_bytes_per_minute": 0,
  "max_upload_bytes": 0
}`)
	cfg.Options.FileSystem = json.RawMessage(`{
  "max_file_bytes": 0
}`)
	cfg.Options.Writer = json.RawMessage(`{
  "atomic": true,
  "overwrite": true,
  "perm_file": 0,
  "perm_dir": 0
}`)
	return cfg
}

// DotEnvTemplate 返回 .env 模板内容（由 --init-config 生成）。
func DotEnvTemplate() string {
	var b strings.Builder
	b.WriteString("# anyparser .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > 配置文件\n")
	b.WriteString("# 空值表示未设置。\n\n")

	b.WriteString("# 服务与凭据\n")
	b.WriteString(options.EnvAPIURL + "=\n")
	b.WriteString(options.EnvAPIKey + "=\n\n")

	b.WriteString("# 配置来源\n")
	b.WriteString(EnvPrefix + "CONFIG_FILE=\n\n")

	b.WriteString("# 解析选项覆盖\n")
	for _, k := range []string{"INPUTS", "FORMAT", "MODEL", "ENCODING", "IMAGE", "TABLE", "OCR_LANGUAGE", "OCR_PRESET",
		"MAX_DEPTH", "MAX_EXECUTIONS", "STRATEGY", "TRAVERSAL_SCOPE", "OUTPUT_DIR", "LOG_LEVEL"} {
		b.WriteString(EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 组件选择与选项\n")
	for _, c := range []string{"TRANSPORT", "FILESYSTEM", "WRITER"} {
		b.WriteString(EnvPrefix + "COMPONENTS_" + c + "=\n")
		b.WriteString(EnvPrefix + "OPTIONS_" + c + "_JSON=\n")
	}
	return b.String()
}
