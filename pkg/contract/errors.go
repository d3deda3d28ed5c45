package contract

import (
	"errors"
	"fmt"
)

// 错误分类（均可用 errors.Is 匹配）。
var (
	// ErrConfiguration: 选项缺失或非法。具体原因见 *ConfigurationError。
	ErrConfiguration = errors.New("configuration error")

	// 输入校验类。
	ErrNoInput      = errors.New("no input")
	ErrInvalidURL   = errors.New("invalid url")
	ErrFileNotFound = errors.New("file not found")
	ErrFileLocked   = errors.New("file locked")

	// ErrUnsupportedFormat: 响应路由时遇到未知格式。
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrResponseInvalid: 上游返回 2xx 但响应体无法解析。
	ErrResponseInvalid = errors.New("response invalid")

	// ErrBusy: 文件系统协作方用于报告“被其他进程占用/锁定”。
	ErrBusy = errors.New("resource busy")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（绝对路径或 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
)

// ConfigurationError: 携带面向用户的原因文本；Error() 原样返回。
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return e.Reason }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Configurationf 构造 *ConfigurationError。
func Configurationf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// InputError: 输入校验失败。
// Kind 为 ErrNoInput/ErrInvalidURL/ErrFileNotFound/ErrFileLocked 之一；Err 为底层原因（可空）。
type InputError struct {
	Kind error
	Path string
	Err  error
}

func (e *InputError) Error() string {
	switch e.Kind {
	case ErrNoInput:
		return "No files provided"
	case ErrFileNotFound:
		return fmt.Sprintf("File %s was not found or was removed", e.Path)
	case ErrFileLocked:
		return fmt.Sprintf("File %s is locked by another process", e.Path)
	case ErrInvalidURL:
		if e.Path == "" {
			return "Invalid URL"
		}
		return fmt.Sprintf("Invalid URL: %s", e.Path)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "invalid input"
}

func (e *InputError) Is(target error) bool { return target == e.Kind }

func (e *InputError) Unwrap() error { return e.Err }

// FormatError: 响应格式无法路由。
type FormatError struct {
	Format Format
}

func (e *FormatError) Error() string { return fmt.Sprintf("Unsupported format: %s", e.Format) }

func (e *FormatError) Is(target error) bool { return target == ErrUnsupportedFormat }
