// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventloop

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// LockFile holds an exclusive advisory lock acquired via flock(2),
// preventing a second instance of this client from opening the same data
// directory concurrently.
type LockFile struct {
	f *os.File
}

// AcquireLock opens (creating if necessary) the file at path and takes a
// non-blocking exclusive flock on it. It returns an error immediately if
// another process already holds the lock rather than waiting for it.
func AcquireLock(path string) (*LockFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("eventloop: open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("eventloop: acquire lock on %s: %w", path, err)
	}

	return &LockFile{f: f}, nil
}

// Release drops the lock and closes the underlying file descriptor.
func (l *LockFile) Release() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
