//go:build darwin || linux

package xmlio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileLock holds an advisory exclusive lock on the AgentInteractions file
// for the duration of one Step call, preventing two concurrently-running
// granular-step invocations against the same agent population from
// reading and writing the history file out of turn (spec.md §7: "the
// AgentInteractions file is a single critical section; concurrent callers
// must not interleave").
type fileLock struct {
	f *os.File
}

// lockInteractions opens (creating if absent) and exclusively locks path.
// The caller must call unlock when done.
func lockInteractions(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("xmlio: open %s for locking: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("xmlio: flock %s: %w", path, err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) unlock() error {
	defer l.f.Close()
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
