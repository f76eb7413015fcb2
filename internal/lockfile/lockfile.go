// Package lockfile guards the state directory against a second Clara process.
//
// Kiosk deployments run Clara under a supervisor that restarts it on crash, so
// the lock must never survive its owner: it is a kernel flock held for the
// process lifetime, with the holder's pid written into the file purely for
// diagnostics. A leftover file from a dead process carries no lock and does
// not block the next start.
package lockfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// LockFileName is the lock file created inside the state directory.
const LockFileName = "clara.lock"

// Lock is a held state directory lock. Release it on shutdown; the kernel
// drops it anyway when the process dies.
type Lock struct {
	file *os.File
	path string
}

// HeldError reports that another Clara process holds the state directory.
type HeldError struct {
	LockPath string
	OwnerPID int
	Cause    error
}

func (e *HeldError) Error() string {
	if e.OwnerPID > 0 {
		return fmt.Sprintf("state directory already in use by clara pid %d (lock %s)", e.OwnerPID, e.LockPath)
	}
	return fmt.Sprintf("state directory already in use (lock %s)", e.LockPath)
}

func (e *HeldError) Unwrap() error { return e.Cause }

// AcquireLock takes an exclusive flock on the state directory, creating the
// directory if needed. A conflict returns a HeldError naming the owning pid.
func AcquireLock(stateDir string) (*Lock, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
	}
	path := filepath.Join(stateDir, LockFileName)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		owner := ownerPID(path)
		file.Close()
		slog.Warn("Lockfile.AcquireLock: state directory held elsewhere", "path", path, "ownerPID", owner)
		return nil, &HeldError{LockPath: path, OwnerPID: owner, Cause: err}
	}

	// Record our pid for the HeldError of whoever loses the race next.
	if err := file.Truncate(0); err == nil {
		file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
		file.Sync()
	}

	slog.Debug("Lockfile.AcquireLock: locked state directory", "path", path, "pid", os.Getpid())
	return &Lock{file: file, path: path}, nil
}

// Release drops the flock and removes the lock file. Safe to call twice.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	if err := l.file.Close(); err != nil {
		slog.Warn("Lockfile.Release: close failed", "path", l.path, "error", err)
	}
	l.file = nil
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Lockfile.Release: could not remove lock file", "path", l.path, "error", err)
	}
	slog.Debug("Lockfile.Release: unlocked state directory", "path", l.path)
	return nil
}

// ownerPID reads the pid recorded in an existing lock file, 0 when absent or
// unparseable.
func ownerPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}
