// internal/datalog/medium.go
package datalog

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnavailable reports a storage medium that is not mounted or reachable.
var ErrUnavailable = errors.New("datalog: storage medium unavailable")

// Medium is the removable storage mount the log sinks write under.
type Medium struct {
	dir string
}

// Mount verifies the storage directory is reachable and returns a handle.
func Mount(dir string) (*Medium, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: mount dir not configured", ErrUnavailable)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnavailable, dir)
	}

	return &Medium{dir: dir}, nil
}

// Unmount releases the handle, syncing directory metadata so appended lines
// survive the power cut that follows. Calling it on a nil Medium reports
// ErrUnavailable; callers log a warning, the cycle continues.
func (m *Medium) Unmount() error {
	if m == nil {
		return ErrUnavailable
	}

	d, err := os.Open(m.dir)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Sync()
}
