package contract

import "io"

// FileSystem: 输入校验所需的最小文件原语。
// 约束：
//  1. 不存在时返回可被 errors.Is(err, fs.ErrNotExist) 匹配的错误；
//  2. 被其他进程占用/锁定时返回可被 errors.Is(err, ErrBusy) 匹配的错误；
//  3. OpenForRead 返回的句柄仅用于探测，调用方负责立即 Close。
type FileSystem interface {
	Exists(path string) error
	OpenForRead(path string) (io.Closer, error)
	ReadAll(path string) ([]byte, error)
}

// LookupFunc: 环境变量查询（通常为 os.LookupEnv）。
type LookupFunc func(name string) (string, bool)
