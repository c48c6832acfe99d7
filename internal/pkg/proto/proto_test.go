package proto

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputEventRoundTrip(t *testing.T) {
	for _, p := range []InputEventPacket{
		{},
		{DeviceID: 0, Type: 1, Code: 304, Value: 1, Normalized: 1.0, Sec: 1680000000, Usec: 123456},
		{DeviceID: 255, Type: 3, Code: 2, Value: -32768, Normalized: -1.0, Sec: 0, Usec: 999999},
		{DeviceID: 7, Type: 3, Code: 16, Value: 1, Normalized: math.Inf(1), Sec: 42, Usec: 0},
		{DeviceID: 1, Type: 3, Code: 5, Value: 1023, Normalized: 0.5004887585532746, Sec: 1, Usec: 2},
	} {
		data := p.Marshal()
		assert.Equal(t, InputEventPacketSize, len(data))

		got, err := UnmarshalInputEvent(data)
		assert.Equal(t, nil, err)
		assert.Equal(t, p.DeviceID, got.DeviceID)
		assert.Equal(t, p.Type, got.Type)
		assert.Equal(t, p.Code, got.Code)
		assert.Equal(t, p.Value, got.Value)
		assert.Equal(t, math.Float64bits(p.Normalized), math.Float64bits(got.Normalized))
		assert.Equal(t, p.Sec, got.Sec)
		assert.Equal(t, p.Usec, got.Usec)
	}
}

func TestInputEventLayout(t *testing.T) {
	p := InputEventPacket{DeviceID: 3, Type: 3, Code: 0, Value: -1, Normalized: 1.0, Sec: 5, Usec: 6}
	data := p.Marshal()

	assert.Equal(t, []byte{0x58, 0x42, 0x43, 0x31}, data[0:4]) // "XBC1"
	assert.Equal(t, uint8(3), data[4])
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(data[5:]))
	assert.Equal(t, uint32(0xffffffff), binary.LittleEndian.Uint32(data[9:]))
	assert.Equal(t, math.Float64bits(1.0), binary.LittleEndian.Uint64(data[13:]))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(data[21:]))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[25:]))
}

func TestVibrationRoundTrip(t *testing.T) {
	p := VibrationPacket{DeviceID: 2, LeftMotor: 65535, RightMotor: 32767, DurationMs: 500}
	data := p.Marshal()
	assert.Equal(t, VibrationPacketSize, len(data))
	assert.Equal(t, []byte{0x58, 0x52, 0x42, 0x56}, data[0:4]) // "XRBV"

	got, err := UnmarshalVibration(data)
	assert.Equal(t, nil, err)
	assert.Equal(t, p, got)
}

func TestBadMagicRejected(t *testing.T) {
	data := make([]byte, InputEventPacketSize)
	_, err := UnmarshalInputEvent(data)
	assert.ErrorIs(t, err, ErrBadMagic)

	vib := make([]byte, VibrationPacketSize)
	_, err = UnmarshalVibration(vib)
	assert.ErrorIs(t, err, ErrBadMagic)

	// input event magic on a vibration-sized packet is still foreign
	binary.LittleEndian.PutUint32(vib, InputEventMagic)
	_, err = UnmarshalVibration(vib)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestWrongSizeRejected(t *testing.T) {
	p := InputEventPacket{DeviceID: 1}
	data := p.Marshal()

	_, err := UnmarshalInputEvent(data[:InputEventPacketSize-1])
	assert.ErrorIs(t, err, ErrShortRead)

	_, err = UnmarshalInputEvent(append(data, 0))
	assert.ErrorIs(t, err, ErrShortRead)

	v := VibrationPacket{}
	_, err = UnmarshalVibration(v.Marshal()[:5])
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestVibrationPort(t *testing.T) {
	assert.Equal(t, 35556, VibrationPort(DefaultEventPort))
}
