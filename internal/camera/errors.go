package camera

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// ErrPermissionDenied means the process may not open the device.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrNoDevice means no capture device exists at the configured path.
	ErrNoDevice = errors.New("camera not found")
	// ErrDeviceBusy means another process holds the device.
	ErrDeviceBusy = errors.New("camera busy")
)

// classify attaches the matching sentinel to a device error while keeping
// the errno reachable through errors.Is.
func classify(op, device string, err error) error {
	if err == nil {
		return nil
	}
	var sentinel error
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		sentinel = ErrPermissionDenied
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		sentinel = ErrNoDevice
	case errors.Is(err, unix.EBUSY):
		sentinel = ErrDeviceBusy
	default:
		return fmt.Errorf("%s %s: %w", op, device, err)
	}
	return fmt.Errorf("%s %s: %w", op, device, errors.Join(sentinel, err))
}

// IsAcquisitionError reports whether err is one of the device sentinels.
func IsAcquisitionError(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrNoDevice) || errors.Is(err, ErrDeviceBusy)
}
