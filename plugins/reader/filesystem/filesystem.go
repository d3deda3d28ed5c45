package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"

	"anyparser/pkg/contract"
)

// Options 为 FileSystem 的可选配置（最小必要）。
type Options struct {
	// MaxFileBytes: 单文件读取上限（字节）；<=0 表示不限制。
	MaxFileBytes int64 `json:"max_file_bytes"`
}

// FileSystem 基于本地文件系统实现 contract.FileSystem。
// 未找到以 fs.ErrNotExist 报告；被占用/锁定以 contract.ErrBusy 报告。
type FileSystem struct {
	maxBytes int64
}

var _ contract.FileSystem = (*FileSystem)(nil)

// New 创建 FileSystem。
func New(opts *Options) *FileSystem {
	fs := &FileSystem{}
	if opts != nil && opts.MaxFileBytes > 0 {
		fs.maxBytes = opts.MaxFileBytes
	}
	return fs
}

// Exists 检查路径可访问。
func (r *FileSystem) Exists(path string) error {
	_, err := os.Stat(path)
	return err
}

// OpenForRead 以只读方式打开，用于探测锁定；调用方负责 Close。
func (r *FileSystem) OpenForRead(path string) (io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		if isBusy(err) {
			return nil, fmt.Errorf("%w: %w", contract.ErrBusy, err)
		}
		return nil, err
	}
	return f, nil
}

// ReadAll 读取完整内容。
func (r *FileSystem) ReadAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if isBusy(err) {
			return nil, fmt.Errorf("%w: %w", contract.ErrBusy, err)
		}
		return nil, err
	}
	defer f.Close()
	if r.maxBytes <= 0 {
		return io.ReadAll(f)
	}
	b, err := io.ReadAll(io.LimitReader(f, r.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > r.maxBytes {
		return nil, fmt.Errorf("%s: %w", path, errTooLarge)
	}
	return b, nil
}

var errTooLarge = errors.New("file exceeds max_file_bytes")
