package diag

import (
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName: 当前日志文件名；轮转后的历史文件由 lumberjack 追加时间戳。
const LogFileName = "anyparser-current.log"

// NewRotatingFile 返回按大小轮转的日志 sink（maxMB<=0 时为 10 MiB）。
func NewRotatingFile(dir string, maxMB int) *lumberjack.Logger {
	if maxMB <= 0 {
		maxMB = 10
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    maxMB,
		MaxBackups: 5,
		LocalTime:  false,
	}
}
