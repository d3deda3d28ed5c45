// Package input 将原始输入（文件路径或起始 URL）解析为 contract.ResolvedInput。
package input

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"anyparser/pkg/contract"
)

// Validator: 输入校验器。FS 为必需协作方（crawler 模式下不使用）。
type Validator struct {
	FS  contract.FileSystem
	Log zerolog.Logger
}

// Resolve 按 cfg 的模式校验 inputs，返回挂载了输入集合的配置副本。
// crawler：取首个非空白候选作为起始 URL；其余模式：逐个顺序读取文件，首个失败即中止。
func (v Validator) Resolve(ctx context.Context, cfg contract.Configuration, inputs []string) (contract.Configuration, error) {
	if cfg.Model() == contract.ModelCrawler {
		target, err := CrawlTarget(inputs)
		if err != nil {
			return contract.Configuration{}, err
		}
		v.Log.Debug().Str("url", target.URL).Msg("crawl target")
		return cfg.WithInput(target), nil
	}
	files, err := v.readFiles(ctx, inputs)
	if err != nil {
		return contract.Configuration{}, err
	}
	return cfg.WithInput(files), nil
}

// CrawlTarget 选取首个非空白候选并规范化为绝对 URL。
func CrawlTarget(inputs []string) (contract.CrawlTarget, error) {
	for _, c := range inputs {
		if strings.TrimSpace(c) == "" {
			continue
		}
		u, err := Canonicalize(c)
		if err != nil {
			return contract.CrawlTarget{}, &contract.InputError{Kind: contract.ErrInvalidURL, Path: c, Err: err}
		}
		return contract.CrawlTarget{URL: u}, nil
	}
	return contract.CrawlTarget{}, &contract.InputError{Kind: contract.ErrInvalidURL}
}

var errNotAbsolute = errors.New("scheme and host required")

// Canonicalize 规范化绝对 URL：scheme/host 小写、去掉默认端口、空路径补 "/"。
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errNotAbsolute
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host, port := u.Hostname(), u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	host = strings.ToLower(host)
	if port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// readFiles: Exists → OpenForRead+Close → ReadAll，按输入顺序。
func (v Validator) readFiles(ctx context.Context, paths []string) (contract.FileSet, error) {
	if len(paths) == 0 || (len(paths) == 1 && paths[0] == "") {
		return nil, &contract.InputError{Kind: contract.ErrNoInput}
	}
	if v.FS == nil {
		return nil, errors.New("input: filesystem not configured")
	}
	out := make(contract.FileSet, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := v.FS.Exists(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &contract.InputError{Kind: contract.ErrFileNotFound, Path: p, Err: err}
			}
			return nil, err
		}
		h, err := v.FS.OpenForRead(p)
		if err != nil {
			if errors.Is(err, contract.ErrBusy) {
				return nil, &contract.InputError{Kind: contract.ErrFileLocked, Path: p, Err: err}
			}
			return nil, err
		}
		if err := h.Close(); err != nil {
			return nil, err
		}
		b, err := v.FS.ReadAll(p)
		if err != nil {
			return nil, err
		}
		v.Log.Debug().Str("path", p).Int("bytes", len(b)).Msg("file read")
		out = append(out, contract.File{Name: contract.BaseName(p), Content: b})
	}
	return out, nil
}
