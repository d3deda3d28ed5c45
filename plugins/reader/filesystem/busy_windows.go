//go:build windows

package filesystem

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isBusy: 共享冲突与锁冲突视为被占用。
func isBusy(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) || errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
