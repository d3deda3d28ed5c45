package diag

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"time"

	"anyparser/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown  Code = "unknown"
	CodeConfig   Code = "config"
	CodeInput    Code = "input"
	CodeUpstream Code = "upstream"
	CodeNetwork  Code = "network"
	CodeProtocol Code = "protocol"
	CodeCancel   Code = "cancel"
	CodeIO       Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrConfiguration) {
		return CodeConfig
	}
	if errors.Is(err, contract.ErrNoInput) ||
		errors.Is(err, contract.ErrInvalidURL) ||
		errors.Is(err, contract.ErrFileNotFound) ||
		errors.Is(err, contract.ErrFileLocked) {
		return CodeInput
	}
	var ue contract.UpstreamError
	if errors.As(err, &ue) {
		return CodeUpstream
	}
	// 协议/解码
	if errors.Is(err, contract.ErrResponseInvalid) || errors.Is(err, contract.ErrUnsupportedFormat) {
		return CodeProtocol
	}
	// I/O
	var perr *fs.PathError
	if errors.As(err, &perr) || errors.Is(err, contract.ErrPathInvalid) {
		return CodeIO
	}
	// 网络（连接/超时等）
	var nerr net.Error
	if errors.As(err, &nerr) {
		return CodeNetwork
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
