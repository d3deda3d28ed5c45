package contract

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"
	"testing"
	"unicode/utf8"
)

// TestNormalizeArtifactID 验证路径规范化逻辑。
func TestNormalizeArtifactID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Windows路径", "C:\\Users\\test\\file.txt", "C:/Users/test/file.txt"},
		{"清理多余斜杠", "path//to///file.txt", "path/to/file.txt"},
		{"处理父目录", "path/to/../from/file.txt", "path/from/file.txt"},
		{"空串", "", "."},
		{"混合分隔符", "src\\..\\test/./data\\\\file.txt", "test/data/file.txt"},
		{"中文路径", "项目\\文档/测试.txt", "项目/文档/测试.txt"},
		{"复杂父目录", "a\\b\\c\\..\\..\\..\\..\\d", "../d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeArtifactID(tt.input); string(got) != tt.expected {
				t.Errorf("NormalizeArtifactID(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestBaseName 验证基名提取。
func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"/tmp/a/report.pdf":  "report.pdf",
		"plain.txt":          "plain.txt",
		"dir/with space.png": "with space.png",
	}
	if runtime.GOOS == "windows" {
		cases[`docs\sample.docx`] = "sample.docx"
	} else {
		cases[`dir/a\b.pdf`] = `a\b.pdf`
	}
	for in, want := range cases {
		if got := BaseName(in); got != want {
			t.Fatalf("BaseName(%q)=%q want %q", in, got, want)
		}
	}
}

// TestArtifactFor 验证结果工件命名。
func TestArtifactFor(t *testing.T) {
	cases := []struct {
		src  string
		f    Format
		want ArtifactID
	}{
		{"docs/sample.pdf", FormatJSON, "sample.json"},
		{"docs/sample.pdf", FormatMarkdown, "sample.md"},
		{"notes", FormatHTML, "notes.html"},
		{"https://example.com:8443/a", FormatMarkdown, "example.com_8443.md"},
		{"", FormatJSON, "result.json"},
		{".env", FormatJSON, ".env.json"},
		{"dir/report.v2.pdf", FormatJSON, "report.v2.json"},
	}
	for _, c := range cases {
		if got := ArtifactFor(c.src, c.f); got != c.want {
			t.Fatalf("ArtifactFor(%q,%s)=%q want %q", c.src, c.f, got, c.want)
		}
	}
}

// TestArtifactForBackslashName 非 Windows 平台上含 \ 的文件名不会映射为子目录。
func TestArtifactForBackslashName(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows 上 \\ 是分隔符")
	}
	if got := ArtifactFor(`dir/a\b.pdf`, FormatMarkdown); got != `a_b.md` {
		t.Fatalf("got %q", got)
	}
}

// TestEnumsValid 覆盖枚举合法性判定。
func TestEnumsValid(t *testing.T) {
	if !FormatHTML.Valid() || Format("xml").Valid() {
		t.Fatalf("format valid 异常")
	}
	if !ModelCrawler.Valid() || Model("gpt").Valid() {
		t.Fatalf("model valid 异常")
	}
	if !EncodingLatin1.Valid() || Encoding("utf8").Valid() {
		t.Fatalf("encoding valid 异常")
	}
	if !StrategyFIFO.Valid() || CrawlStrategy("lifo").Valid() {
		t.Fatalf("strategy valid 异常")
	}
	if !ScopeDomain.Valid() || TraversalScope("site").Valid() {
		t.Fatalf("scope valid 异常")
	}
	if !LangJapanese.Valid() || !LangChineseSimplified.Valid() || OCRLanguage("xx").Valid() {
		t.Fatalf("ocr language valid 异常")
	}
	if !PresetBusinessCard.Valid() || OCRPreset("poster").Valid() {
		t.Fatalf("ocr preset valid 异常")
	}
}

// TestEnumListsAreCopies 修改返回切片不影响内部表。
func TestEnumListsAreCopies(t *testing.T) {
	langs := OCRLanguages()
	langs[0] = "zzz"
	if OCRLanguages()[0] == "zzz" {
		t.Fatalf("OCRLanguages 未返回副本")
	}
	ps := OCRPresets()
	if len(ps) != 14 {
		t.Fatalf("preset 数量=%d", len(ps))
	}
	ps[0] = "zzz"
	if OCRPresets()[0] == "zzz" {
		t.Fatalf("OCRPresets 未返回副本")
	}
}

// TestConfigurationModel 未设置 Settings 视为 text。
func TestConfigurationModel(t *testing.T) {
	var c Configuration
	if c.Model() != ModelText {
		t.Fatalf("model=%s", c.Model())
	}
	c.Settings = OCRSettings{}
	if c.Model() != ModelOCR {
		t.Fatalf("model=%s", c.Model())
	}
	d := c.WithInput(CrawlTarget{URL: "https://a/"})
	if c.Input != nil || d.Input == nil {
		t.Fatalf("WithInput 不应修改原值")
	}
}

// TestRedacted 仅保留末尾 4 位。
func TestRedacted(t *testing.T) {
	c := Configuration{APIKey: "sk-123456"}
	if got := c.Redacted(); got != "*****3456" {
		t.Fatalf("redacted=%q", got)
	}
	c.APIKey = "abc"
	if got := c.Redacted(); got != "***" {
		t.Fatalf("redacted=%q", got)
	}
}

// TestErrorTaxonomy 覆盖 errors.Is/As 与消息文本。
func TestErrorTaxonomy(t *testing.T) {
	cfg := Configurationf("Unsupported format: %s", "xml")
	if !errors.Is(cfg, ErrConfiguration) || cfg.Error() != "Unsupported format: xml" {
		t.Fatalf("configuration error 异常: %v", cfg)
	}
	wrapped := fmt.Errorf("resolve: %w", cfg)
	var ce *ConfigurationError
	if !errors.As(wrapped, &ce) || ce.Reason != "Unsupported format: xml" {
		t.Fatalf("errors.As 失败")
	}

	nf := &InputError{Kind: ErrFileNotFound, Path: "a.pdf", Err: fs.ErrNotExist}
	if nf.Error() != "File a.pdf was not found or was removed" {
		t.Fatalf("msg=%q", nf.Error())
	}
	if !errors.Is(nf, ErrFileNotFound) || !errors.Is(nf, fs.ErrNotExist) || errors.Is(nf, ErrFileLocked) {
		t.Fatalf("not found 匹配异常")
	}
	lk := &InputError{Kind: ErrFileLocked, Path: "b.pdf", Err: ErrBusy}
	if lk.Error() != "File b.pdf is locked by another process" || !errors.Is(lk, ErrBusy) {
		t.Fatalf("locked 异常: %v", lk)
	}
	if (&InputError{Kind: ErrNoInput}).Error() != "No files provided" {
		t.Fatalf("no input 消息异常")
	}

	fe := &FormatError{Format: "pdf"}
	if !errors.Is(fe, ErrUnsupportedFormat) || fe.Error() != "Unsupported format: pdf" {
		t.Fatalf("format error 异常")
	}
}

// TestTransportFailure 实现 UpstreamError。
func TestTransportFailure(t *testing.T) {
	var err error = &TransportFailure{Message: "HTTP 503 Service Unavailable: https://x/parse/v1", StatusCode: 503, Cause: errors.New("down")}
	var ue UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("应实现 UpstreamError")
	}
	if ue.UpstreamStatus() != 503 || ue.UpstreamMessage() != "down" {
		t.Fatalf("status=%d msg=%q", ue.UpstreamStatus(), ue.UpstreamMessage())
	}
	if (&TransportFailure{Message: "m"}).UpstreamMessage() != "m" {
		t.Fatalf("无 cause 时应回退 Message")
	}
}

// TestUpstreamMessageRuneBoundary 截断不切开多字节字符。
func TestUpstreamMessageRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", 255) + "错误详情"
	msg := (&TransportFailure{Message: "m", Cause: errors.New(body)}).UpstreamMessage()
	if msg != strings.Repeat("a", 255) || !utf8.ValidString(msg) {
		t.Fatalf("len=%d valid=%v", len(msg), utf8.ValidString(msg))
	}
	exact := strings.Repeat("b", 253) + "错"
	if got := (&TransportFailure{Cause: errors.New(exact)}).UpstreamMessage(); got != exact {
		t.Fatalf("恰好 256 字节应完整保留: len=%d", len(got))
	}
	long := strings.Repeat("c", 300)
	if got := (&TransportFailure{Cause: errors.New(long)}).UpstreamMessage(); len(got) != 256 {
		t.Fatalf("ASCII 截断长度=%d", len(got))
	}
}

// TestWireRequestGet 返回首个同名字段。
func TestWireRequestGet(t *testing.T) {
	w := WireRequest{Fields: []Field{{"format", "json"}, {"model", "text"}, {"format", "html"}}}
	if v, ok := w.Get("format"); !ok || v != "json" {
		t.Fatalf("get=%q,%v", v, ok)
	}
	if _, ok := w.Get("url"); ok {
		t.Fatalf("不存在字段应返回 false")
	}
	if !(Reply{StatusCode: 204}).OK() || (Reply{StatusCode: 302}).OK() {
		t.Fatalf("Reply.OK 异常")
	}
}
