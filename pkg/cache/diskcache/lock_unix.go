//go:build unix

// pkg/cache/diskcache/lock_unix.go
package diskcache

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned when the store is already held by another process.
var ErrLocked = errors.New("diskcache: store already locked by another process")

func lockFile(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return ErrLocked
		}
		return err
	}
	return nil
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
