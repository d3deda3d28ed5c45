// Package filesystem 将解析结果落盘（CLI 使用）。
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"anyparser/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// OutputDir: 输出根目录（必需）。
	OutputDir string `json:"output_dir"`
	// Atomic: 同目录临时文件 + rename。默认 true，显式 false 关闭。
	Atomic *bool `json:"atomic,omitempty"`
	// Overwrite: 目标已存在时是否覆盖。默认 true；false 时追加 -1、-2… 后缀。
	Overwrite *bool `json:"overwrite,omitempty"`
	// PermFile/PermDir: 为 0 时使用 0644/0755。
	PermFile os.FileMode `json:"perm_file,omitempty"`
	PermDir  os.FileMode `json:"perm_dir,omitempty"`
}

// maxSuffix: Overwrite=false 时尝试的最大序号。
const maxSuffix = 999

type FS struct {
	root      string
	atomic    bool
	overwrite bool
	permF     os.FileMode
	permD     os.FileMode
}

var _ contract.Writer = (*FS)(nil)

// New 创建结果 Writer；OutputDir 为空返回 os.ErrInvalid。
func New(opts *Options) (*FS, error) {
	if opts == nil || strings.TrimSpace(opts.OutputDir) == "" {
		return nil, os.ErrInvalid
	}
	w := &FS{root: opts.OutputDir, atomic: true, overwrite: true, permF: 0o644, permD: 0o755}
	if opts.Atomic != nil {
		w.atomic = *opts.Atomic
	}
	if opts.Overwrite != nil {
		w.overwrite = *opts.Overwrite
	}
	if opts.PermFile != 0 {
		w.permF = opts.PermFile
	}
	if opts.PermDir != 0 {
		w.permD = opts.PermDir
	}
	return w, nil
}

// Write 将 r 的全部字节写入 id 映射的路径（允许子目录，禁止越界）。
func (w *FS) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest, err := w.mapPath(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), w.permD); err != nil {
		return err
	}
	if !w.overwrite {
		if dest, err = freeName(dest); err != nil {
			return err
		}
	}
	if w.atomic {
		return w.writeAtomic(ctx, dest, r)
	}
	return w.writeDirect(ctx, dest, r)
}

// mapPath: 规范化后拒绝空、绝对路径、卷名与 '..' 逃逸。
func (w *FS) mapPath(id contract.ArtifactID) (string, error) {
	rel := string(contract.NormalizeArtifactID(string(id)))
	if rel == "." || rel == "" || path.IsAbs(rel) || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", contract.ErrPathInvalid
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", contract.ErrPathInvalid
	}
	return filepath.Join(w.root, filepath.FromSlash(rel)), nil
}

// freeName 返回首个不存在的候选：a.md, a-1.md, a-2.md …
func freeName(dest string) (string, error) {
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	cand := dest
	for i := 1; ; i++ {
		_, err := os.Lstat(cand)
		if errors.Is(err, fs.ErrNotExist) {
			return cand, nil
		}
		if err != nil {
			return "", err
		}
		if i > maxSuffix {
			return "", fmt.Errorf("%s: no free name after %d attempts", dest, maxSuffix)
		}
		cand = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
}

func (w *FS) writeDirect(ctx context.Context, dest string, r io.Reader) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, w.permF)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, readerWithCtx(ctx, r)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (w *FS) writeAtomic(ctx context.Context, dest string, r io.Reader) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}
	_ = os.Chmod(tmpPath, w.permF)

	if _, err := io.Copy(tmp, readerWithCtx(ctx, r)); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := osReplace(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = syncDir(dir)
	return nil
}

// readerWithCtx: 每次 Read 前检查 ctx。
func readerWithCtx(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
