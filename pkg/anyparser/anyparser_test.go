package anyparser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"anyparser/pkg/contract"
	"anyparser/pkg/options"
	"anyparser/plugins/transport/mock"
)

func strp(s string) *string { return &s }

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// TestNewReadsEnvOnce 默认值只在 New 时读取一次。
func TestNewReadsEnvOnce(t *testing.T) {
	calls := 0
	lookup := func(k string) (string, bool) {
		calls++
		switch k {
		case options.EnvAPIKey:
			return "env-key", true
		case options.EnvAPIURL:
			return "https://env.test", true
		}
		return "", false
	}
	tr := mock.New(&mock.Options{APIKey: "env-key"})
	p := New(nil, WithLookup(lookup), WithTransport(tr))
	if calls != 2 {
		t.Fatalf("lookup calls=%d", calls)
	}
	if got := p.Defaults().APIURL.String(); got != "https://env.test" {
		t.Fatalf("api url=%s", got)
	}
	f := writeFile(t, t.TempDir(), "a.txt", "hello")
	for i := 0; i < 2; i++ {
		if _, err := p.Parse(context.Background(), f); err != nil {
			t.Fatalf("parse: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("Parse 不应再次读取环境: calls=%d", calls)
	}
}

// TestWithDefaultsSkipsLookup 显式默认值时不读取环境。
func TestWithDefaultsSkipsLookup(t *testing.T) {
	p := New(nil, WithDefaults(options.Builtin()), WithLookup(func(string) (string, bool) {
		t.Fatalf("不应读取环境")
		return "", false
	}))
	if p.Defaults().APIKey != nil {
		t.Fatalf("builtin 不含 key")
	}
}

// TestParseMissingKey 缺少 key 时报告配置错误且不发请求。
func TestParseMissingKey(t *testing.T) {
	tr := mock.New(nil)
	p := New(nil, WithDefaults(options.Builtin()), WithTransport(tr))
	_, err := p.Parse(context.Background(), "a.pdf")
	if !errors.Is(err, contract.ErrConfiguration) || err.Error() != "API key is required" {
		t.Fatalf("err=%v", err)
	}
	if tr.Calls() != 0 {
		t.Fatalf("calls=%d", tr.Calls())
	}
}

// TestOptionsSnapshot New 之后修改调用方选项不影响 Parser。
func TestOptionsSnapshot(t *testing.T) {
	opts := &options.Options{APIKey: strp("k"), Format: contract.FormatMarkdown}
	p := New(opts, WithDefaults(options.Builtin()), WithTransport(mock.New(nil)))
	opts.Format = contract.Format("xml")
	f := writeFile(t, t.TempDir(), "doc.md", "x")
	resp, err := p.Parse(context.Background(), f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Format != contract.FormatMarkdown || resp.Text == "" {
		t.Fatalf("resp=%+v", resp)
	}
}

// TestParseFileErrors 缺失文件与空输入。
func TestParseFileErrors(t *testing.T) {
	p := New(&options.Options{APIKey: strp("k")}, WithDefaults(options.Builtin()), WithTransport(mock.New(nil)))
	missing := filepath.Join(t.TempDir(), "gone.pdf")
	_, err := p.Parse(context.Background(), missing)
	if !errors.Is(err, contract.ErrFileNotFound) || err.Error() != "File "+missing+" was not found or was removed" {
		t.Fatalf("err=%v", err)
	}
	if _, err := p.Parse(context.Background()); !errors.Is(err, contract.ErrNoInput) {
		t.Fatalf("err=%v", err)
	}
}

// TestParseCrawler crawler 模式返回抓取结果。
func TestParseCrawler(t *testing.T) {
	p := New(&options.Options{APIKey: strp("k"), Model: contract.ModelCrawler}, WithDefaults(options.Builtin()), WithTransport(mock.New(nil)))
	resp, err := p.Parse(context.Background(), "HTTPS://Example.com")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	results, err := resp.Results()
	if err != nil || len(results) != 1 {
		t.Fatalf("results=%v err=%v", results, err)
	}
	cr, ok := results[0].(*contract.CrawlResult)
	if !ok || cr.StartURL != "https://example.com/" {
		t.Fatalf("result=%+v", results[0])
	}
}

// TestConcurrentParse 并发调用互不干扰。
func TestConcurrentParse(t *testing.T) {
	tr := mock.New(nil)
	p := New(&options.Options{APIKey: strp("k")}, WithDefaults(options.Builtin()), WithTransport(tr))
	dir := t.TempDir()
	files := []string{writeFile(t, dir, "a.txt", "a"), writeFile(t, dir, "b.txt", "bb")}
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := p.Parse(context.Background(), files[i%2])
			if err != nil {
				errs <- err
				return
			}
			rs, err := resp.Results()
			if err != nil || len(rs) != 1 || rs[0].Base().OriginalFilename != filepath.Base(files[i%2]) {
				errs <- errors.New("unexpected result")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	if tr.Calls() != 16 {
		t.Fatalf("calls=%d", tr.Calls())
	}
}

// TestImportKeepsZerologDefaults 作为库导入时不修改调用方的 zerolog 全局设置。
func TestImportKeepsZerologDefaults(t *testing.T) {
	_ = New(nil, WithDefaults(options.Builtin()), WithLogger(zerolog.Nop()))
	if zerolog.MessageFieldName != "message" || zerolog.TimestampFieldName != "time" {
		t.Fatalf("MessageFieldName=%q TimestampFieldName=%q", zerolog.MessageFieldName, zerolog.TimestampFieldName)
	}
}
