// Package e2e 以 mock 传输驱动完整流程：配置加载 → 装配 → 解析 → 落盘。
package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	cfgpkg "anyparser/internal/config"
	"anyparser/internal/diag"
	"anyparser/internal/pipeline"
	"anyparser/pkg/contract"
	"anyparser/pkg/dispatch"
	"anyparser/pkg/options"
)

func defaults() options.Defaults {
	d := options.Builtin()
	key := "sk-e2e"
	d.APIKey = &key
	return d
}

// loadBasic 读取 testdata 中的配置，并把输入与输出重定向到临时目录。
func loadBasic(t *testing.T, dir string, inputs ...string) cfgpkg.Config {
	t.Helper()
	base, err := cfgpkg.LoadFile(filepath.Join("..", "testdata", "config", "basic.json"), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := cfgpkg.Merge(cfgpkg.Defaults(), base)
	cfg.Inputs = inputs
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Logging.Level = "error"
	return cfg
}

func run(t *testing.T, cfg cfgpkg.Config) *dispatch.Response {
	t.Helper()
	comp, opts, err := cfgpkg.Assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	logger := diag.NewLoggerTo(os.Stderr, "e2e", cfg.Logging.Level)
	resp, err := pipeline.Run(context.Background(), comp, pipeline.Job{Inputs: cfg.Inputs, Options: opts, Defaults: defaults()}, logger)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return resp
}

// TestOCRDocument OCR 模式：分页文档、camelCase 键、结果写入 <base>.json。
func TestOCRDocument(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.png")
	if err := os.WriteFile(in, []byte("PNGDATA"), 0o644); err != nil {
		t.Fatal(err)
	}
	resp := run(t, loadBasic(t, dir, in))

	results, err := resp.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results=%d", len(results))
	}
	doc, ok := results[0].(*contract.DocumentResult)
	if !ok {
		t.Fatalf("result=%T", results[0])
	}
	if doc.OriginalFilename != "scan.png" || doc.TotalItems == nil || *doc.TotalItems != 2 {
		t.Fatalf("doc=%+v", doc)
	}
	pages := make([]string, 0, len(doc.Items))
	for _, p := range doc.Items {
		pages = append(pages, p.Markdown)
	}
	if diff := cmp.Diff([]string{"BASIC page 1", "BASIC page 2"}, pages); diff != "" {
		t.Fatalf("pages (-want +got):\n%s", diff)
	}

	b, err := os.ReadFile(filepath.Join(dir, "out", "scan.json"))
	if err != nil {
		t.Fatalf("artifact: %v", err)
	}
	if strings.Contains(string(b), "page_number") {
		t.Fatalf("落盘结果仍含 snake_case 键: %s", b)
	}
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("artifact json: %v", err)
	}
	if _, ok := raw[0]["totalItems"]; !ok {
		t.Fatalf("keys=%v", raw[0])
	}
}

// TestMarkdownMultipleFiles 多文件 markdown：原文按输入顺序拼接。
func TestMarkdownMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	_ = os.WriteFile(a, []byte("aa"), 0o644)
	_ = os.WriteFile(b, []byte("bbb"), 0o644)

	cfg := loadBasic(t, dir, a, b)
	cfg.Parse.Model = "text"
	cfg.Parse.Format = "markdown"
	resp := run(t, cfg)

	want := "# a.txt\n\nBASIC: 2 bytes\n\n# b.txt\n\nBASIC: 3 bytes"
	if resp.Text != want {
		t.Fatalf("text=%q", resp.Text)
	}
	got, err := os.ReadFile(filepath.Join(dir, "out", "a.md"))
	if err != nil || string(got) != want {
		t.Fatalf("artifact=%q err=%v", got, err)
	}
}

// TestCrawler crawler 模式：输入为 URL，结果为 CrawlResult。
func TestCrawler(t *testing.T) {
	dir := t.TempDir()
	cfg := loadBasic(t, dir, "https://example.com")
	cfg.Parse.Model = "crawler"
	depth := 1
	cfg.Parse.MaxDepth = &depth
	cfg.Parse.Strategy = "FIFO"
	resp := run(t, cfg)

	results, err := resp.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	cr, ok := results[0].(*contract.CrawlResult)
	if !ok {
		t.Fatalf("result=%T", results[0])
	}
	if cr.StartURL != "https://example.com/" || cr.TotalItems != 1 || len(cr.Items) != 1 {
		t.Fatalf("crawl=%+v", cr)
	}
	if cr.Items[0].Directive.Type != "Combined" || len(cr.Items[0].Directive.Underlying) != 2 {
		t.Fatalf("directive=%+v", cr.Items[0].Directive)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "example.com.json")); err != nil {
		t.Fatalf("artifact: %v", err)
	}
}

// TestFileNotFound 缺失输入：错误带阶段前缀且可按哨兵匹配，不写出结果。
func TestFileNotFound(t *testing.T) {
	dir := t.TempDir()
	cfg := loadBasic(t, dir, filepath.Join(dir, "missing.pdf"))
	comp, opts, err := cfgpkg.Assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	_, err = pipeline.Run(context.Background(), comp, pipeline.Job{Inputs: cfg.Inputs, Options: opts, Defaults: defaults()}, nil)
	if err == nil || !strings.HasPrefix(err.Error(), "parse: ") {
		t.Fatalf("err=%v", err)
	}
	var ie *contract.InputError
	if !errors.As(err, &ie) || ie.Kind != contract.ErrFileNotFound {
		t.Fatalf("err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Fatalf("失败时不应创建输出: %v", err)
	}
}
