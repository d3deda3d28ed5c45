package flaky

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"anyparser/pkg/anyparser"
	"anyparser/pkg/contract"
	"anyparser/pkg/options"
)

func parser(t *testing.T, tr contract.Transport) *anyparser.Parser {
	t.Helper()
	d := options.Builtin()
	key := "sk-flaky"
	d.APIKey = &key
	return anyparser.New(nil, anyparser.WithTransport(tr), anyparser.WithDefaults(d))
}

// TestDefaultScript 503 → 无效 JSON → 成功；每次失败原样上浮，不重试。
func TestDefaultScript(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	in := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(in, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	tr, err := New(&Options{LogPath: logPath})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := parser(t, tr)
	ctx := context.Background()

	_, err = p.Parse(ctx, in)
	var tf *contract.TransportFailure
	if !errors.As(err, &tf) || tf.StatusCode != 503 || !strings.HasPrefix(tf.Message, "HTTP 503 Service Unavailable: ") {
		t.Fatalf("first err=%v", err)
	}
	if tr.Calls() != 1 {
		t.Fatalf("不应重试: calls=%d", tr.Calls())
	}

	if _, err = p.Parse(ctx, in); !errors.Is(err, contract.ErrResponseInvalid) {
		t.Fatalf("second err=%v", err)
	}

	resp, err := p.Parse(ctx, in)
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if rs, err := resp.Results(); err != nil || rs[0].Base().OriginalFilename != "a.txt" {
		t.Fatalf("results=%v err=%v", rs, err)
	}

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if got := string(b); got != "503\ninvalid_json\nok\n" {
		t.Fatalf("log=%q", got)
	}
}

// TestNetworkStep 传输层错误原样返回。
func TestNetworkStep(t *testing.T) {
	tr, err := New(&Options{Script: []string{StepNetwork}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = tr.Send(context.Background(), contract.Exchange{})
	if !errors.Is(err, ErrInjected) {
		t.Fatalf("err=%v", err)
	}
}

// TestInvalidScript 非法步骤在构造时拒绝。
func TestInvalidScript(t *testing.T) {
	for _, s := range []string{"teapot", "42", "700"} {
		if _, err := New(&Options{Script: []string{s}}); err == nil {
			t.Fatalf("step %q 应被拒绝", s)
		}
	}
}

// TestCancelled ctx 已取消时不消耗脚本。
func TestCancelled(t *testing.T) {
	tr, _ := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.Send(ctx, contract.Exchange{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
	if tr.Calls() != 0 {
		t.Fatalf("calls=%d", tr.Calls())
	}
}
