package dispatch

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"anyparser/pkg/casing"
	"anyparser/pkg/contract"
)

type fakeTransport struct {
	reply contract.Reply
	err   error
	got   contract.Exchange
	calls int
}

func (f *fakeTransport) Send(_ context.Context, ex contract.Exchange) (contract.Reply, error) {
	f.calls++
	f.got = ex
	return f.reply, f.err
}

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return u
}

func cfgFor(t *testing.T, f contract.Format, key string) contract.Configuration {
	return contract.Configuration{APIURL: mustURL(t, "https://api.test"), APIKey: key, Format: f, Settings: contract.TextSettings{}}
}

// TestEndpoint 以绝对路径解析，覆盖 base 上已有的路径。
func TestEndpoint(t *testing.T) {
	cases := map[string]string{
		"https://anyparserapi.com":      "https://anyparserapi.com/parse/v1",
		"https://x.test/api/":           "https://x.test/parse/v1",
		"http://127.0.0.1:8080/a/b?q=1": "http://127.0.0.1:8080/parse/v1",
	}
	for base, want := range cases {
		if got := Endpoint(mustURL(t, base)); got != want {
			t.Fatalf("Endpoint(%q)=%q want %q", base, got, want)
		}
	}
}

// TestBearerOnlyWithKey 仅在 key 非空时设置 Authorization。
func TestBearerOnlyWithKey(t *testing.T) {
	tr := &fakeTransport{reply: contract.Reply{StatusCode: 200, Body: []byte("# hi")}}
	d := Dispatcher{Transport: tr, Log: zerolog.Nop()}
	if _, err := d.Dispatch(context.Background(), cfgFor(t, contract.FormatMarkdown, "sk-1"), contract.WireRequest{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if tr.got.Header.Get("Authorization") != "Bearer sk-1" || tr.got.Method != "POST" || tr.got.URL != "https://api.test/parse/v1" {
		t.Fatalf("exchange=%+v", tr.got)
	}
	if _, err := d.Dispatch(context.Background(), cfgFor(t, contract.FormatMarkdown, ""), contract.WireRequest{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, ok := tr.got.Header["Authorization"]; ok {
		t.Fatalf("空 key 不应发送 Authorization")
	}
}

// TestNon2xx 生成 TransportFailure，消息含状态与 URL。
func TestNon2xx(t *testing.T) {
	tr := &fakeTransport{reply: contract.Reply{StatusCode: 401, StatusText: "Unauthorized", Body: []byte("bad key")}}
	_, err := Dispatcher{Transport: tr}.Dispatch(context.Background(), cfgFor(t, contract.FormatJSON, "k"), contract.WireRequest{})
	var tf *contract.TransportFailure
	if !errors.As(err, &tf) {
		t.Fatalf("err=%v", err)
	}
	if tf.StatusCode != 401 || tf.Error() != "HTTP 401 Unauthorized: https://api.test/parse/v1" || tf.UpstreamMessage() != "bad key" {
		t.Fatalf("failure=%+v", tf)
	}
}

// TestTransportErrorPassthrough 传输层错误原样返回。
func TestTransportErrorPassthrough(t *testing.T) {
	tr := &fakeTransport{err: context.Canceled}
	_, err := Dispatcher{Transport: tr}.Dispatch(context.Background(), cfgFor(t, contract.FormatJSON, "k"), contract.WireRequest{})
	if err != context.Canceled {
		t.Fatalf("err=%v", err)
	}
}

// TestJSONCamelCased 应答树键被转换为 camelCase。
func TestJSONCamelCased(t *testing.T) {
	body := `[{"rid":"r1","original_filename":"a.pdf","total_characters":3,"items":[{"page_number":1,"images":[]}]}]`
	tr := &fakeTransport{reply: contract.Reply{StatusCode: 200, Body: []byte(body)}}
	resp, err := Dispatcher{Transport: tr}.Dispatch(context.Background(), cfgFor(t, contract.FormatJSON, "k"), contract.WireRequest{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	b, err := resp.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	want := `[{"rid":"r1","originalFilename":"a.pdf","totalCharacters":3,"items":[{"pageNumber":1,"images":[]}]}]`
	if string(b) != want {
		t.Fatalf("json=%s", b)
	}
	results, err := resp.Results()
	if err != nil || len(results) != 1 {
		t.Fatalf("results=%v err=%v", results, err)
	}
	doc, ok := results[0].(*contract.DocumentResult)
	if !ok || doc.OriginalFilename != "a.pdf" || *doc.TotalCharacters != 3 || doc.Items[0].PageNumber != 1 {
		t.Fatalf("doc=%+v", results[0])
	}
}

// TestTextFormats markdown/html 原文返回。
func TestTextFormats(t *testing.T) {
	for _, f := range []contract.Format{contract.FormatMarkdown, contract.FormatHTML} {
		tr := &fakeTransport{reply: contract.Reply{StatusCode: 200, Body: []byte("some_key: <b>x</b>")}}
		resp, err := Dispatcher{Transport: tr}.Dispatch(context.Background(), cfgFor(t, f, "k"), contract.WireRequest{})
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if resp.Text != "some_key: <b>x</b>" || resp.Tree != nil {
			t.Fatalf("%s resp=%+v", f, resp)
		}
		if b, _ := resp.Bytes(); string(b) != resp.Text {
			t.Fatalf("bytes=%q", b)
		}
		if _, err := resp.Results(); !errors.Is(err, contract.ErrUnsupportedFormat) {
			t.Fatalf("Results on text: %v", err)
		}
	}
}

// TestUnsupportedFormat 未知格式在应答路由时失败。
func TestUnsupportedFormat(t *testing.T) {
	tr := &fakeTransport{reply: contract.Reply{StatusCode: 200, Body: []byte("x")}}
	_, err := Dispatcher{Transport: tr}.Dispatch(context.Background(), cfgFor(t, contract.Format("xml"), "k"), contract.WireRequest{})
	if !errors.Is(err, contract.ErrUnsupportedFormat) || err.Error() != "Unsupported format: xml" {
		t.Fatalf("err=%v", err)
	}
}

// TestInvalidJSON 2xx 但响应体非法。
func TestInvalidJSON(t *testing.T) {
	tr := &fakeTransport{reply: contract.Reply{StatusCode: 200, Body: []byte("{oops")}}
	_, err := Dispatcher{Transport: tr}.Dispatch(context.Background(), cfgFor(t, contract.FormatJSON, "k"), contract.WireRequest{})
	if !errors.Is(err, contract.ErrResponseInvalid) {
		t.Fatalf("err=%v", err)
	}
}

// TestMissingCollaborators 缺少 transport 或 URL。
func TestMissingCollaborators(t *testing.T) {
	if _, err := (Dispatcher{}).Dispatch(context.Background(), cfgFor(t, contract.FormatJSON, "k"), contract.WireRequest{}); err == nil {
		t.Fatalf("缺少 transport 应失败")
	}
	tr := &fakeTransport{}
	_, err := Dispatcher{Transport: tr}.Dispatch(context.Background(), contract.Configuration{Format: contract.FormatJSON}, contract.WireRequest{})
	if !errors.Is(err, contract.ErrConfiguration) || tr.calls != 0 {
		t.Fatalf("err=%v calls=%d", err, tr.calls)
	}
}

// TestResultsDiscrimination 按区分字段选择结果变体。
func TestResultsDiscrimination(t *testing.T) {
	body := `[
	 {"rid":"c","start_url":"https://a.test/","total_items":1,
	  "items":[{"url":"https://a.test/","status_code":200,"status_message":"OK","politeness_delay":0.5,
	            "directive":{"type":"Combined","priority":0,"noindex":false,"nofollow":true,
	                         "underlying":[{"type":"HTTP Header","priority":1}]}}],
	  "robots_directive":{"user_agent":"*","disallow":["/private"],"allow":[],"crawl_delay":2}},
	 {"rid":"d","total_items":2,"items":[]},
	 {"rid":"t","markdown":"hello"}
	]`
	tr := &fakeTransport{reply: contract.Reply{StatusCode: 200, Body: []byte(body)}}
	resp, err := Dispatcher{Transport: tr}.Dispatch(context.Background(), cfgFor(t, contract.FormatJSON, "k"), contract.WireRequest{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	results, err := resp.Results()
	if err != nil || len(results) != 3 {
		t.Fatalf("results=%v err=%v", results, err)
	}
	cr, ok := results[0].(*contract.CrawlResult)
	if !ok {
		t.Fatalf("results[0]=%T", results[0])
	}
	if cr.StartURL != "https://a.test/" || cr.RobotsDirective.UserAgent != "*" || *cr.RobotsDirective.CrawlDelay != 2 {
		t.Fatalf("crawl=%+v", cr)
	}
	it := cr.Items[0]
	if it.StatusMessage != "OK" || it.PolitenessDelay != 0.5 || it.Directive.Type != "Combined" ||
		*it.Directive.NoFollow != true || *it.Directive.NoIndex != false || len(it.Directive.Underlying) != 1 {
		t.Fatalf("item=%+v", it)
	}
	if _, ok := results[1].(*contract.DocumentResult); !ok {
		t.Fatalf("results[1]=%T", results[1])
	}
	tx, ok := results[2].(*contract.TextResult)
	if !ok || tx.Base().RID != "t" || tx.Markdown != "hello" {
		t.Fatalf("results[2]=%+v", results[2])
	}
}

// TestResultsSingleAndNull 顶层单对象与 null。
func TestResultsSingleAndNull(t *testing.T) {
	rec := casing.NewRecord()
	rec.Put("rid", casing.Primitive{V: "x"})
	r := &Response{Format: contract.FormatJSON, Tree: rec}
	res, err := r.Results()
	if err != nil || len(res) != 1 || res[0].Base().RID != "x" {
		t.Fatalf("res=%v err=%v", res, err)
	}
	r = &Response{Format: contract.FormatJSON, Tree: casing.Null{}}
	if res, err := r.Results(); err != nil || res != nil {
		t.Fatalf("null: res=%v err=%v", res, err)
	}
	r = &Response{Format: contract.FormatJSON, Tree: casing.Primitive{V: "s"}}
	if _, err := r.Results(); !errors.Is(err, contract.ErrResponseInvalid) {
		t.Fatalf("primitive: %v", err)
	}
}
