//go:build !unix

// pkg/cache/diskcache/lock_other.go
package diskcache

import "os"

// Non-unix platforms fall back to process-local exclusion only; the
// sync.RWMutex in Cache still serializes in-process callers.
func lockFile(f *os.File) error {
	return nil
}

func unlockFile(f *os.File) error {
	return nil
}
