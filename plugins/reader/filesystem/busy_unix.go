//go:build !windows

package filesystem

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isBusy: EBUSY/ETXTBSY 视为被占用。
func isBusy(err error) bool {
	return errors.Is(err, unix.EBUSY) || errors.Is(err, unix.ETXTBSY)
}
