package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anyparser/internal/diag"
	"anyparser/pkg/contract"
	"anyparser/pkg/dispatch"
	"anyparser/pkg/form"
	"anyparser/pkg/input"
	"anyparser/pkg/options"
)

// - 单次流程：Resolve → Validate → Build → Dispatch，严格顺序，无内部并发。
// - 首错即返回：任一阶段失败立即返回该阶段的原始错误（类型与消息不变），不重试。
// - 每个阶段记录 start/finish/error 事件与指标。

// Components 聚合运行所需的协作方。
type Components struct {
	FS        contract.FileSystem
	Transport contract.Transport
	// Writer 可选：仅 Run 使用，用于持久化结果。
	Writer contract.Writer
}

// Job: 一次解析请求。
type Job struct {
	Inputs   []string
	Options  *options.Options
	Defaults options.Defaults
	// Artifact 为空时按首个输入推导。
	Artifact contract.ArtifactID
}

// Parse 执行单次解析。返回的错误保持核心组件的原始类型与消息。
func Parse(ctx context.Context, comp Components, job Job, logger *diag.Logger) (*dispatch.Response, error) {
	if err := sanity(comp); err != nil {
		return nil, err
	}

	cfg, err := stage(logger, "options", nil, func() (contract.Configuration, error) {
		return options.Resolve(job.Defaults, job.Options)
	})
	if err != nil {
		return nil, err
	}
	logger.DebugStart("options", "resolved", map[string]string{
		"model":   string(cfg.Model()),
		"format":  string(cfg.Format),
		"api_url": cfg.APIURL.String(),
		"api_key": cfg.Redacted(),
	})

	v := input.Validator{FS: comp.FS, Log: logger.Component("input")}
	cfg, err = stage(logger, "input", map[string]string{"inputs": strconv.Itoa(len(job.Inputs))}, func() (contract.Configuration, error) {
		return v.Resolve(ctx, cfg, job.Inputs)
	})
	if err != nil {
		return nil, err
	}

	wire, err := stage(logger, "form", nil, func() (contract.WireRequest, error) {
		return buildForm(cfg)
	})
	if err != nil {
		return nil, err
	}
	if t := diag.GetTerminal(); t != nil {
		t.Stage("dispatch", firstNonEmpty(job.Inputs))
	}

	d := dispatch.Dispatcher{Transport: comp.Transport, Log: logger.Component("dispatch")}
	return stage(logger, "dispatch", map[string]string{"fields": strconv.Itoa(len(wire.Fields)), "files": strconv.Itoa(len(wire.Files))}, func() (*dispatch.Response, error) {
		return d.Dispatch(ctx, cfg, wire)
	})
}

// Run 在 Parse 之上增加终端提示与结果落盘（Writer 非空时）；错误带阶段前缀。
func Run(ctx context.Context, comp Components, job Job, logger *diag.Logger) (*dispatch.Response, error) {
	model := contract.ModelText
	if job.Options != nil && job.Options.Model != "" {
		model = job.Options.Model
	} else if job.Defaults.Model != "" {
		model = job.Defaults.Model
	}
	name := firstNonEmpty(job.Inputs)
	term := diag.GetTerminal()
	if term != nil {
		term.RunStart(string(model), len(job.Inputs))
	}
	t0 := time.Now()
	ok := false
	defer func() {
		if term != nil {
			term.ItemFinish(name, ok, time.Since(t0))
			term.RunFinish(ok, time.Since(t0))
		}
	}()

	resp, err := Parse(ctx, comp, job, logger)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if comp.Writer != nil {
		id := job.Artifact
		if id == "" {
			id = contract.ArtifactFor(name, resp.Format)
		}
		body, err := resp.Bytes()
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		_, err = stage(logger, "writer", map[string]string{"artifact": string(id)}, func() (struct{}, error) {
			return struct{}{}, comp.Writer.Write(ctx, id, bytes.NewReader(body))
		})
		if err != nil {
			return nil, fmt.Errorf("writer write: %w", err)
		}
	}
	ok = true
	return resp, nil
}

// buildForm 为表单阶段的接缝，测试可替换。
var buildForm = func(cfg contract.Configuration) (contract.WireRequest, error) {
	return form.Build(cfg), nil
}

// stage 记录 start → finish|error 并累加指标。
func stage[T any](logger *diag.Logger, comp string, kv map[string]string, fn func() (T, error)) (T, error) {
	timer := logger.StartWithKV(comp, "begin", kv)
	t0 := time.Now()
	v, err := fn()
	diag.ObserveDuration(comp, "total", time.Since(t0).Milliseconds())
	if err != nil {
		code := timer.Fail(err)
		diag.IncOp(comp, "error", "error")
		if code != diag.CodeUnknown {
			diag.IncError(comp, string(code))
		}
		return v, err
	}
	timer.Finish("done", 0)
	diag.IncOp(comp, "finish", "success")
	return v, nil
}

func sanity(c Components) error {
	if c.Transport == nil || c.FS == nil {
		return errors.New("pipeline: missing components")
	}
	return nil
}

func firstNonEmpty(xs []string) string {
	for _, x := range xs {
		if x != "" {
			return x
		}
	}
	return ""
}
