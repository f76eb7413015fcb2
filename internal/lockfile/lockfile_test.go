package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestAcquireRecordsOwnPID(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	data, err := os.ReadFile(filepath.Join(dir, LockFileName))
	if err != nil {
		t.Fatalf("lock file not readable: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != strconv.Itoa(os.Getpid()) {
		t.Errorf("lock file pid = %q, want %d", got, os.Getpid())
	}
}

func TestAcquireConflictNamesOwner(t *testing.T) {
	dir := t.TempDir()

	first, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("first AcquireLock failed: %v", err)
	}
	defer first.Release()

	second, err := AcquireLock(dir)
	if err == nil {
		second.Release()
		t.Fatal("second AcquireLock should have failed")
	}

	var held *HeldError
	if !errors.As(err, &held) {
		t.Fatalf("error = %T, want *HeldError", err)
	}
	if held.OwnerPID != os.Getpid() {
		t.Errorf("OwnerPID = %d, want %d", held.OwnerPID, os.Getpid())
	}
	if !strings.Contains(err.Error(), strconv.Itoa(os.Getpid())) {
		t.Errorf("error should name the owning pid: %v", err)
	}
}

func TestReleaseAllowsReacquisition(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockFileName)); !os.IsNotExist(err) {
		t.Error("lock file should be gone after release")
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release should be a no-op: %v", err)
	}

	again, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("reacquire after release failed: %v", err)
	}
	again.Release()
}

func TestStaleFileWithoutFlockDoesNotBlock(t *testing.T) {
	dir := t.TempDir()

	// A file left by a dead process carries no flock.
	path := filepath.Join(dir, LockFileName)
	if err := os.WriteFile(path, []byte("999999\n"), 0644); err != nil {
		t.Fatalf("failed to seed stale file: %v", err)
	}

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock over stale file failed: %v", err)
	}
	defer lock.Release()
}

func TestAcquireCreatesStateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("state directory not created: %v", err)
	}
}

func TestOwnerPIDParsing(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		content string
		want    int
	}{
		{"12345\n", 12345},
		{"  67890  ", 67890},
		{"", 0},
		{"garbage", 0},
		{"-4", 0},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, "lock")
		if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if got := ownerPID(path); got != tc.want {
			t.Errorf("ownerPID(%q) = %d, want %d", tc.content, got, tc.want)
		}
	}
	if got := ownerPID(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("ownerPID on missing file = %d, want 0", got)
	}
}
