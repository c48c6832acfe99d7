// Package proto implements the binary UDP packet formats for controller
// input events and vibration commands. All fields are little-endian and
// packed at natural byte offsets with no padding, matching the layout
// used by every peer regardless of platform.
package proto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// InputEventMagic is "XBC1" in little-endian.
	InputEventMagic uint32 = 0x31434258
	// VibrationMagic is "XRBV" in little-endian.
	VibrationMagic uint32 = 0x56425258

	InputEventPacketSize = 29
	VibrationPacketSize  = 13

	// DefaultEventPort is the default publisher destination port.
	// The vibration endpoint conventionally binds DefaultEventPort+1.
	DefaultEventPort = 35555
)

var (
	ErrBadMagic  = errors.New("bad packet magic")
	ErrShortRead = errors.New("unexpected packet size")
)

// VibrationPort returns the conventional vibration port for a given event port.
func VibrationPort(eventPort int) int {
	return eventPort + 1
}

// InputEventPacket mirrors a single evdev input event, extended with the
// device id assigned by the publisher and the normalized axis value.
type InputEventPacket struct {
	DeviceID   uint8
	Type       uint16 // EV_KEY, EV_ABS, EV_SYN, ...
	Code       uint16 // button or axis code
	Value      int32  // raw event value
	Normalized float64
	Sec        uint32 // timestamp seconds
	Usec       uint32 // timestamp microseconds
}

func (p *InputEventPacket) Marshal() []byte {
	buf := make([]byte, InputEventPacketSize)
	binary.LittleEndian.PutUint32(buf[0:], InputEventMagic)
	buf[4] = p.DeviceID
	binary.LittleEndian.PutUint16(buf[5:], p.Type)
	binary.LittleEndian.PutUint16(buf[7:], p.Code)
	binary.LittleEndian.PutUint32(buf[9:], uint32(p.Value))
	binary.LittleEndian.PutUint64(buf[13:], math.Float64bits(p.Normalized))
	binary.LittleEndian.PutUint32(buf[21:], p.Sec)
	binary.LittleEndian.PutUint32(buf[25:], p.Usec)
	return buf
}

func UnmarshalInputEvent(data []byte) (InputEventPacket, error) {
	var p InputEventPacket
	if len(data) != InputEventPacketSize {
		return p, fmt.Errorf("%w: input event packet: %d bytes", ErrShortRead, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:]); magic != InputEventMagic {
		return p, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}
	p.DeviceID = data[4]
	p.Type = binary.LittleEndian.Uint16(data[5:])
	p.Code = binary.LittleEndian.Uint16(data[7:])
	p.Value = int32(binary.LittleEndian.Uint32(data[9:]))
	p.Normalized = math.Float64frombits(binary.LittleEndian.Uint64(data[13:]))
	p.Sec = binary.LittleEndian.Uint32(data[21:])
	p.Usec = binary.LittleEndian.Uint32(data[25:])
	return p, nil
}

// VibrationPacket is a rumble command for a single controller.
// Motor magnitudes are 0-65535, left is the strong motor.
type VibrationPacket struct {
	DeviceID   uint8
	LeftMotor  uint16
	RightMotor uint16
	DurationMs uint32 // 0 = infinite; reserved, the kernel owns duration
}

func (p *VibrationPacket) Marshal() []byte {
	buf := make([]byte, VibrationPacketSize)
	binary.LittleEndian.PutUint32(buf[0:], VibrationMagic)
	buf[4] = p.DeviceID
	binary.LittleEndian.PutUint16(buf[5:], p.LeftMotor)
	binary.LittleEndian.PutUint16(buf[7:], p.RightMotor)
	binary.LittleEndian.PutUint32(buf[9:], p.DurationMs)
	return buf
}

func UnmarshalVibration(data []byte) (VibrationPacket, error) {
	var p VibrationPacket
	if len(data) != VibrationPacketSize {
		return p, fmt.Errorf("%w: vibration packet: %d bytes", ErrShortRead, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:]); magic != VibrationMagic {
		return p, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}
	p.DeviceID = data[4]
	p.LeftMotor = binary.LittleEndian.Uint16(data[5:])
	p.RightMotor = binary.LittleEndian.Uint16(data[7:])
	p.DurationMs = binary.LittleEndian.Uint32(data[9:])
	return p, nil
}
