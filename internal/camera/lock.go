package camera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// DeviceLockPath returns the lock file guarding device inside dir.
func DeviceLockPath(dir, device string) string {
	name := strings.TrimPrefix(filepath.Clean(device), "/dev/")
	name = strings.ReplaceAll(name, "/", "_")
	return filepath.Join(dir, name+".lock")
}

// DeviceLock is an exclusive advisory lock on one capture device.
type DeviceLock struct {
	lock *flock.Flock
}

// AcquireDeviceLock waits until the lock for device is free or ctx ends.
// A lock still held when ctx ends is reported as ErrDeviceBusy.
func AcquireDeviceLock(ctx context.Context, dir, device string) (*DeviceLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(DeviceLockPath(dir, device))
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("lock %s: %w", device, ErrDeviceBusy)
		}
		return nil, fmt.Errorf("lock %s: %w", device, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w", device, ErrDeviceBusy)
	}
	return &DeviceLock{lock: fl}, nil
}

// Release unlocks the device.
func (l *DeviceLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
