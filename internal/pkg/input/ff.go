package input

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/holoplot/go-evdev"
)

var ErrRumbleUnsupported = errors.New("device does not support rumble effects")

// effectDevice is the force-feedback surface of one device node.
// The Controller effect lifecycle runs on top of it; tests substitute a fake.
type effectDevice interface {
	SupportsRumble() (bool, error)
	UploadRumble(left, right uint16) (int16, error)
	PlayEffect(id int16) error
	StopEffect(id int16) error
	Close() error
}

// ffDevice drives force feedback through a dedicated read-write fd.
// Effect upload is valid on any writable fd of the node, even while the
// event-reading fd holds the exclusive grab.
type ffDevice struct {
	f *os.File
}

func openFFDevice(path string) (*ffDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &ffDevice{f: f}, nil
}

func (d *ffDevice) Close() error {
	return d.f.Close()
}

// SupportsRumble queries the EV_FF capability bitmask for FF_RUMBLE.
func (d *ffDevice) SupportsRumble() (bool, error) {
	var features [FF_CNT / 8]byte
	err := ioctl(d.f.Fd(), eviocgbitFF(uint(len(features))), unsafe.Pointer(&features[0]))
	if err != nil {
		return false, fmt.Errorf("querying force-feedback capabilities failed: %w", err)
	}
	return features[FF_RUMBLE/8]&(1<<(FF_RUMBLE%8)) != 0, nil
}

// UploadRumble uploads a two-motor rumble effect with infinite length and
// returns the kernel-assigned effect id.
func (d *ffDevice) UploadRumble(left, right uint16) (int16, error) {
	effect := ffEffect{
		Type: FF_RUMBLE,
		ID:   -1, // kernel assigns
		Rumble: ffRumble{
			StrongMagnitude: left,
			WeakMagnitude:   right,
		},
	}
	err := ioctl(d.f.Fd(), eviocsff(), unsafe.Pointer(&effect))
	if err != nil {
		return -1, fmt.Errorf("uploading rumble effect failed: %w", err)
	}
	return effect.ID, nil
}

func (d *ffDevice) PlayEffect(id int16) error {
	return d.writeEffectEvent(id, 1)
}

func (d *ffDevice) StopEffect(id int16) error {
	return d.writeEffectEvent(id, 0)
}

// writeEffectEvent writes an EV_FF input event on the device fd, which is
// how the kernel starts and stops uploaded effects.
func (d *ffDevice) writeEffectEvent(id int16, value int32) error {
	now := time.Now()
	ev := struct {
		Sec   int64
		Usec  int64
		Type  uint16
		Code  uint16
		Value int32
	}{
		Sec:   now.Unix(),
		Usec:  int64(now.Nanosecond() / 1000),
		Type:  uint16(evdev.EV_FF),
		Code:  uint16(id),
		Value: value,
	}

	err := binary.Write(d.f, binary.LittleEndian, &ev)
	if err != nil {
		return fmt.Errorf("writing effect event failed: %w", err)
	}
	return nil
}

func ioctl(fd uintptr, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
