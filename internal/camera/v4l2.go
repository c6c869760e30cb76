package camera

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// V4L2 ioctl numbers for struct v4l2_format (208 bytes on 64-bit).
const (
	vidiocGFmt = 0xc0d05604
	vidiocSFmt = 0xc0d05605

	bufTypeVideoCapture = 1
)

type v4l2PixFormat struct {
	Width        uint32
	Height       uint32
	PixelFormat  uint32
	Field        uint32
	BytesPerLine uint32
	SizeImage    uint32
	Colorspace   uint32
	Priv         uint32
	Flags        uint32
	YcbcrEnc     uint32
	Quantization uint32
	XferFunc     uint32
}

type v4l2Format struct {
	Type uint32
	_    uint32
	Pix  v4l2PixFormat
	_    [152]byte
}

// V4L2Prober probes a video4linux capture device with VIDIOC_S_FMT.
type V4L2Prober struct {
	Device  string
	LockDir string
}

// NewV4L2Prober returns a prober for device that keeps its lock files in lockDir.
func NewV4L2Prober(device, lockDir string) *V4L2Prober {
	return &V4L2Prober{Device: strings.TrimSpace(device), LockDir: lockDir}
}

// Open locks the device, requests ideal and reports what the driver granted.
func (p *V4L2Prober) Open(ctx context.Context, ideal Profile) (Stream, error) {
	if p.Device == "" {
		return nil, fmt.Errorf("open camera: %w", ErrNoDevice)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lock *DeviceLock
	if p.LockDir != "" {
		l, err := AcquireDeviceLock(ctx, p.LockDir, p.Device)
		if err != nil {
			return nil, err
		}
		lock = l
	}

	fd, err := unix.Open(p.Device, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		_ = lock.Release()
		return nil, classify("open", p.Device, err)
	}

	stream := &v4l2Stream{fd: fd, lock: lock}
	settings, err := negotiateFormat(fd, ideal)
	if err != nil {
		_ = stream.Close()
		return nil, classify("set format", p.Device, err)
	}
	stream.settings = settings
	return stream, nil
}

func negotiateFormat(fd int, ideal Profile) (TrackSettings, error) {
	format := v4l2Format{Type: bufTypeVideoCapture}
	if err := ioctl(fd, vidiocGFmt, unsafe.Pointer(&format)); err != nil {
		return TrackSettings{}, err
	}

	format.Pix.Width = uint32(ideal.Width)
	format.Pix.Height = uint32(ideal.Height)
	if err := ioctl(fd, vidiocSFmt, unsafe.Pointer(&format)); err != nil {
		if !errors.Is(err, unix.EBUSY) {
			return TrackSettings{}, err
		}
		// Streaming elsewhere; report the active format unchanged.
		format = v4l2Format{Type: bufTypeVideoCapture}
		if err := ioctl(fd, vidiocGFmt, unsafe.Pointer(&format)); err != nil {
			return TrackSettings{}, err
		}
	}

	return TrackSettings{
		Width:       int(format.Pix.Width),
		Height:      int(format.Pix.Height),
		PixelFormat: fourCC(format.Pix.PixelFormat),
	}, nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func fourCC(v uint32) string {
	if v == 0 {
		return ""
	}
	b := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	return strings.TrimRight(string(b), " \x00")
}

type v4l2Stream struct {
	fd       int
	lock     *DeviceLock
	settings TrackSettings
	closed   bool
}

func (s *v4l2Stream) Settings() TrackSettings { return s.settings }

func (s *v4l2Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := unix.Close(s.fd)
	if lockErr := s.lock.Release(); lockErr != nil && err == nil {
		err = lockErr
	}
	return err
}
