package instance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrAlreadyRunning is returned when another process holds the lock
var ErrAlreadyRunning = errors.New("another instance of pomotimer is already running")

const lockFileName = "pomotimer.lock"

// Lock represents a single instance lock
type Lock struct {
	lockFile *os.File
	lockPath string
}

// NewLock creates a single instance lock stored in lockDir
func NewLock(lockDir string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	return &Lock{
		lockPath: filepath.Join(lockDir, lockFileName),
	}, nil
}

// TryLock attempts to acquire the lock without blocking
func (l *Lock) TryLock() error {
	if l.lockFile != nil {
		return nil
	}

	lockFile, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		lockFile.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}

	// The kernel drops flocks of dead processes, so a leftover PID is stale
	if oldPID := readPID(lockFile); oldPID != 0 && oldPID != os.Getpid() {
		slog.Warn("Found stale lock file, taking over", "pid", oldPID, "path", l.lockPath)
	}

	if err := writePID(lockFile, os.Getpid()); err != nil {
		syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
		lockFile.Close()
		return err
	}

	l.lockFile = lockFile
	return nil
}

func readPID(f *os.File) int {
	data, err := io.ReadAll(f)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

func writePID(f *os.File, pid int) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate lock file: %w", err)
	}
	if _, err := f.WriteAt([]byte(fmt.Sprintf("%d\n", pid)), 0); err != nil {
		return fmt.Errorf("failed to write PID to lock file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync lock file: %w", err)
	}
	return nil
}

// Release releases the single instance lock
func (l *Lock) Release() error {
	if l.lockFile == nil {
		return nil
	}

	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove lock file", "path", l.lockPath, "error", err)
	}

	// Continue with cleanup even if unlock fails
	if err := syscall.Flock(int(l.lockFile.Fd()), syscall.LOCK_UN); err != nil {
		slog.Warn("Failed to release file lock", "error", err)
	}

	if err := l.lockFile.Close(); err != nil {
		slog.Warn("Failed to close lock file", "error", err)
	}

	l.lockFile = nil
	return nil
}

// IsLocked returns true if this instance holds the lock
func (l *Lock) IsLocked() bool {
	return l.lockFile != nil
}

// GetLockPath returns the path to the lock file
func (l *Lock) GetLockPath() string {
	return l.lockPath
}

// WaitForLockRelease polls until the lock is acquired, ctx is done, or timeout passes
func (l *Lock) WaitForLockRelease(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		return ErrAlreadyRunning
	}

	slog.Info("Another instance is running, waiting for it to exit", "timeout", timeout)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for other instance to exit: %w", ErrAlreadyRunning)
		case <-ticker.C:
			err := l.TryLock()
			if err == nil {
				slog.Info("Lock acquired", "path", l.lockPath)
				return nil
			}
			if !errors.Is(err, ErrAlreadyRunning) {
				return err
			}
		}
	}
}
