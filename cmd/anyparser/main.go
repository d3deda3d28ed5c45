package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"

	cfgpkg "anyparser/internal/config"
	"anyparser/internal/diag"
	"anyparser/internal/pipeline"
	"anyparser/pkg/options"
)

var (
	pipelineRun           = pipeline.Run
	stdout      io.Writer = os.Stdout
)

// 退出码：0 成功；1 运行期失败；3 配置/装配失败。
const (
	exitOK     = 0
	exitRun    = 1
	exitConfig = 3
)

// 位置参数为输入：本地文件路径，或 crawler 模式下的 URL。
// 结果：配置了输出目录时写入文件，否则原样输出到 stdout。
func main() {
	diag.UseShortFieldNames()
	os.Exit(run())
}

func run() int {
	start := time.Now()
	corrID := xid.New().String()
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")
	logger := diag.NewLogger(corrID, "info")
	defer func() { _ = logger.Close() }()

	var (
		flagConfig    string
		flagInitDir   string
		flagStatus    bool
		flagOutputDir string
		flagTransport string
		flagLogLevel  string
		cli           cfgpkg.Parse
		ocrLangs      string
	)
	flag.StringVar(&flagConfig, "config", "", "配置文件路径（.json/.json5/.yaml）；缺省读取 ./config.json（若存在）")
	flag.StringVar(&flagInitDir, "init-config", "", "在指定目录生成默认 config.json 和 .env 模板（不覆盖）；不带值时默认当前目录")
	flag.BoolVar(&flagStatus, "status", true, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	flag.StringVar(&flagOutputDir, "output-dir", "", "结果输出目录；为空则输出到 stdout")
	flag.StringVar(&flagTransport, "transport", "", "传输实现：http | mock")
	flag.StringVar(&flagLogLevel, "log-level", "", "日志级别：debug | info | warn | error")
	flag.StringVar(&cli.APIURL, "api-url", "", "服务地址（覆盖 "+options.EnvAPIURL+"）")
	flag.StringVar(&cli.Format, "format", "", "响应格式：json | markdown | html")
	flag.StringVar(&cli.Model, "model", "", "模式：text | ocr | vlm | lam | crawler")
	flag.StringVar(&cli.Encoding, "encoding", "", "编码：utf-8 | latin1")
	flag.Var(optBool{&cli.Image}, "image", "抽取图片（text/vlm/lam）")
	flag.Var(optBool{&cli.Table}, "table", "抽取表格（text/vlm/lam）")
	flag.StringVar(&ocrLangs, "ocr-language", "", "OCR 语言，逗号分隔（如 eng,jpn）")
	flag.StringVar(&cli.OCRPreset, "ocr-preset", "", "OCR 预设（如 scan、receipt）")
	flag.Var(optInt{&cli.MaxDepth}, "max-depth", "抓取最大深度（crawler）")
	flag.Var(optInt{&cli.MaxExecutions}, "max-executions", "抓取最大页面数（crawler）")
	flag.StringVar(&cli.Strategy, "strategy", "", "抓取策略：LIFO | FIFO")
	flag.StringVar(&cli.TraversalScope, "traversal-scope", "", "抓取范围：subtree | domain")
	normalizeInitArg()
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		return exitConfig
	}

	if dir := strings.TrimSpace(flagInitDir); dir != "" {
		if err := initConfig(dir); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("config", diag.CodeIO, err, &start)
			return exitConfig
		}
		return exitOK
	}

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		fprintf(os.Stderr, "配置解析失败: %v\n", err)
		logger.Error("config", diag.CodeConfig, err, &start)
		return exitConfig
	}
	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fprintf(os.Stderr, "环境变量解析失败: %v\n", err)
		logger.Error("config", diag.CodeConfig, err, &start)
		return exitConfig
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	// CLI 覆盖
	overCLI := cfgpkg.Config{Parse: cli, Inputs: flag.Args()}
	overCLI.Parse.OCRLanguages = splitComma(ocrLangs)
	overCLI.Output.Dir = flagOutputDir
	overCLI.Components.Transport = flagTransport
	overCLI.Logging.Level = flagLogLevel
	cfg = cfgpkg.Merge(cfg, overCLI)

	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(os.Stderr, "配置校验失败: %v\n", err)
		_ = dumpConfig(cfg)
		logger.Error("config", diag.CodeConfig, err, &start)
		return exitConfig
	}

	// 使用最终配置中的日志级别重建 logger
	_ = logger.Close()
	logger = diag.NewLogger(corrID, cfg.Logging.Level)

	if cfgpkg.WriterEnabled(cfg) {
		if err := preflightCheckOutputDir(cfg.Output.Dir); err != nil {
			fprintf(os.Stderr, "输出目录不可写或无法创建: %v\n", err)
			logger.Error("config", diag.CodeIO, err, &start)
			return exitConfig
		}
	}

	comp, opts, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(os.Stderr, "装配失败: %v\n", err)
		logger.Error("config", diag.CodeConfig, err, &start)
		return exitConfig
	}
	defaults := options.LoadDefaults(os.LookupEnv, logger.Component("options"))

	// 终端信息提示（非日志）：按 CLI 启用，默认开启
	term := diag.NewTerminal(os.Stderr, flagStatus)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)

	logger.DebugStart("config", "effective", map[string]string{
		"inputs_count": strconv.Itoa(len(cfg.Inputs)),
		"transport":    cfg.Components.Transport,
		"filesystem":   cfg.Components.FileSystem,
		"writer":       writerName(cfg),
		"model":        cfg.Parse.Model,
		"format":       cfg.Parse.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := logger.Start("pipeline", "run")
	resp, err := pipelineRun(ctx, comp, pipeline.Job{Inputs: cfg.Inputs, Options: opts, Defaults: defaults}, logger)
	if err != nil {
		code := t.Fail(err)
		diag.IncOp("pipeline", "error", "error")
		if code != diag.CodeUnknown {
			diag.IncError("pipeline", string(code))
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		return exitRun
	}
	if comp.Writer == nil {
		body, err := resp.Bytes()
		if err == nil {
			_, err = stdout.Write(append(body, '\n'))
		}
		if err != nil {
			t.Fail(err)
			fprintf(os.Stderr, "输出失败: %v\n", err)
			return exitRun
		}
	}
	t.Finish("run", int64(len(cfg.Inputs)))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	logger.DebugStart("pipeline", "metrics", map[string]string{"snapshot": diag.Dump()})
	return exitOK
}

// loadConfig: 默认值 → 配置来源，依次取 --config、ANYPARSER_CONFIG_FILE、ANYPARSER_CONFIG_JSON、
// ./config.{json,yaml,yml,json5}（若存在）；都没有时仅用默认值。
func loadConfig(path string) (cfgpkg.Config, error) {
	cfg := cfgpkg.Defaults()
	if path == "" {
		path = os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE")
	}
	var raw []byte
	if path == "" {
		if s := os.Getenv(cfgpkg.EnvPrefix + "CONFIG_JSON"); s != "" {
			raw = []byte(s)
		}
	}
	if path == "" && len(raw) == 0 {
		for _, cand := range []string{"config.json", "config.yaml", "config.yml", "config.json5"} {
			if _, err := os.Stat(cand); err == nil {
				path = cand
				break
			}
		}
		if path == "" {
			return cfg, nil
		}
	}
	base, err := cfgpkg.LoadFile(path, raw)
	if err != nil {
		return cfg, err
	}
	return cfgpkg.Merge(cfg, base), nil
}

func writerName(cfg cfgpkg.Config) string {
	if !cfgpkg.WriterEnabled(cfg) {
		return "stdout"
	}
	if cfg.Components.Writer == "" {
		return cfgpkg.Defaults().Components.Writer
	}
	return cfg.Components.Writer
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	_, _ = os.Stderr.Write(append([]byte("有效配置:\n"), b...))
	_, _ = os.Stderr.Write([]byte("\n"))
	return nil
}

// initConfig 在 dir 下生成 config.json 与 .env；config.json 已存在时报错，.env 已存在时跳过。
func initConfig(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeConfig(filepath.Join(dir, "config.json"), cfgpkg.DefaultTemplateConfig()); err != nil {
		return err
	}
	if err := writeDotEnv(filepath.Join(dir, ".env")); err != nil {
		fprintf(os.Stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
	}
	return nil
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = stdout.Write(append(b, '\n'))
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return err
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
func writeDotEnv(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(cfgpkg.DotEnvTemplate())
	return err
}

// loadDotEnv 读取简单的 .env 文件格式并注入进程环境。
// 跳过空行与注释；支持 "export " 前缀；成对引号去除，双引号内做最小转义；不覆盖已存在的变量。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := unquote(strings.TrimSpace(line[eq+1:]))
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}

func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	q := val[0]
	if (q != '\'' && q != '"') || val[len(val)-1] != q {
		return val
	}
	val = val[1 : len(val)-1]
	if q == '"' {
		r := strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\"`, `"`, `\\`, `\`)
		val = r.Replace(val)
	}
	return val
}

// normalizeInitArg: 允许 --init-config 不带值（等价于 --init-config .）。
func normalizeInitArg() {
	args := os.Args
	if len(args) <= 1 {
		return
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0])
	for i := 1; i < len(args); i++ {
		a := args[i]
		out = append(out, a)
		if a == "--init-config" || a == "-init-config" {
			if i == len(args)-1 || strings.HasPrefix(args[i+1], "-") {
				out = append(out, ".")
			}
		}
	}
	os.Args = out
}

// preflightCheckOutputDir: 启动前检查输出目录可写（不存在时检查父目录）。
func preflightCheckOutputDir(dir string) error {
	dir = strings.TrimSpace(dir)
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		f, err := os.CreateTemp(dir, ".wcheck-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		return os.Remove(name)
	case err == nil:
		return fmt.Errorf("路径存在但不是目录: %s", dir)
	case !os.IsNotExist(err):
		return err
	}
	parent := filepath.Dir(dir)
	if parent == dir {
		return fmt.Errorf("无法确定父目录: %s", dir)
	}
	pst, err := os.Stat(parent)
	if err != nil {
		return err
	}
	if !pst.IsDir() {
		return fmt.Errorf("父路径不是目录: %s", parent)
	}
	tmpd, err := os.MkdirTemp(parent, ".wcheck-*")
	if err != nil {
		return err
	}
	return os.RemoveAll(tmpd)
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// optBool: 三态布尔旗标；未出现时保持 nil。
type optBool struct{ p **bool }

func (o optBool) String() string {
	if o.p == nil || *o.p == nil {
		return ""
	}
	return strconv.FormatBool(**o.p)
}

func (o optBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*o.p = &v
	return nil
}

func (o optBool) IsBoolFlag() bool { return true }

// optInt: 可选整数旗标；未出现时保持 nil。
type optInt struct{ p **int }

func (o optInt) String() string {
	if o.p == nil || *o.p == nil {
		return ""
	}
	return strconv.Itoa(**o.p)
}

func (o optInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*o.p = &v
	return nil
}
