package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
)

const (
	defaultLockTimeout = 10 * time.Second
	lockRetryInterval  = 25 * time.Millisecond
)

// acquireLock takes an exclusive sidecar lock file, retrying until timeout.
// The lock scope is one read-modify-write cycle of a single document; the
// returned release function removes the lock file.
//
// O_EXCL creation is atomic on every filesystem we target, which keeps the
// lock portable without platform syscalls.
func acquireLock(path string, timeout time.Duration) (func(), error) {
	deadline := time.Now().Add(timeout)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%s\n", strconv.Itoa(os.Getpid()))
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("acquire lock %s: %w", path, err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("acquire lock %s: timed out after %s", path, timeout)
		}
		time.Sleep(lockRetryInterval)
	}
}
