package bridge

import (
	"context"
	"encoding/binary"
	"math"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"

	"github.com/aviralksingh/xbox-control/internal/pkg/controller"
	"github.com/aviralksingh/xbox-control/internal/pkg/input"
	"github.com/aviralksingh/xbox-control/internal/pkg/proto"
)

var testConfigYAML = []byte(`
controller:
  name: Test Pad
  vendor_patterns: [test pad]

buttons:
  - {code: 304, name: A}

axes:
  - {code: 0, name: LeftX, min: -32768, max: 32767, deadzone: 8000, normalize: true}
  - {code: 2, name: LT, min: 0, max: 1023, normalize: true, output_min: 0.0, output_max: 1.0}

normalization:
  output_min: -1.0
  output_max: 1.0
  apply_deadzone: true
`)

func testCtrl(t *testing.T) *input.Controller {
	t.Helper()
	cfg, err := controller.ParseData(testConfigYAML)
	assert.Equal(t, nil, err)
	return &input.Controller{ID: 3, Name: "Test Pad", Config: &cfg}
}

func TestBuildPacketNormalizesAbsAxes(t *testing.T) {
	c := testCtrl(t)

	ev := evdev.InputEvent{
		Time:  syscall.Timeval{Sec: 1700000000, Usec: 250000},
		Type:  evdev.EV_ABS,
		Code:  0,
		Value: 8000,
	}
	pkt := buildPacket(c, &ev)

	assert.Equal(t, uint8(3), pkt.DeviceID)
	assert.Equal(t, uint16(evdev.EV_ABS), pkt.Type)
	assert.Equal(t, uint16(0), pkt.Code)
	assert.Equal(t, int32(8000), pkt.Value)
	assert.Equal(t, 0.0, pkt.Normalized) // inside the deadzone
	assert.Equal(t, uint32(1700000000), pkt.Sec)
	assert.Equal(t, uint32(250000), pkt.Usec)

	ev.Value = 32767
	pkt = buildPacket(c, &ev)
	assert.InDelta(t, 1.0, pkt.Normalized, 1e-3)
}

func TestBuildPacketKeyCarriesRawValue(t *testing.T) {
	c := testCtrl(t)

	ev := evdev.InputEvent{Type: evdev.EV_KEY, Code: 304, Value: 1}
	pkt := buildPacket(c, &ev)
	assert.Equal(t, 1.0, pkt.Normalized)

	ev.Value = 0
	pkt = buildPacket(c, &ev)
	assert.Equal(t, 0.0, pkt.Normalized)
}

func TestBuildPacketWithoutConfigPassesThrough(t *testing.T) {
	c := &input.Controller{ID: 0, Name: "Generic"}

	ev := evdev.InputEvent{Type: evdev.EV_ABS, Code: 5, Value: -1234}
	pkt := buildPacket(c, &ev)
	assert.Equal(t, float64(-1234), pkt.Normalized)
}

func TestDescribeEventNames(t *testing.T) {
	c := testCtrl(t)

	press := evdev.InputEvent{Type: evdev.EV_KEY, Code: 304, Value: 1}
	assert.Equal(t, "A pressed", describeEvent(c, &press))

	release := evdev.InputEvent{Type: evdev.EV_KEY, Code: 304, Value: 0}
	assert.Equal(t, "A released", describeEvent(c, &release))

	unknown := evdev.InputEvent{Type: evdev.EV_KEY, Code: 999, Value: 1}
	assert.Equal(t, "Btn-999 pressed", describeEvent(c, &unknown))

	axis := evdev.InputEvent{Type: evdev.EV_ABS, Code: 0, Value: 120}
	assert.Equal(t, "LeftX = 120", describeEvent(c, &axis))
}

func TestPublisherRoundTrip(t *testing.T) {
	sink, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.Equal(t, nil, err)
	defer sink.Close()

	port := sink.LocalAddr().(*net.UDPAddr).Port
	p, err := NewPublisher("127.0.0.1", port)
	assert.Equal(t, nil, err)
	defer p.Close()

	sent := proto.InputEventPacket{
		DeviceID:   1,
		Type:       3,
		Code:       2,
		Value:      512,
		Normalized: 0.5005,
		Sec:        42,
		Usec:       7,
	}
	assert.Equal(t, nil, p.Send(&sent))

	buf := make([]byte, proto.InputEventPacketSize+1)
	_ = sink.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := sink.ReadFromUDP(buf)
	assert.Equal(t, nil, err)

	got, err := proto.UnmarshalInputEvent(buf[:n])
	assert.Equal(t, nil, err)
	assert.Equal(t, sent.DeviceID, got.DeviceID)
	assert.Equal(t, sent.Value, got.Value)
	assert.Equal(t, math.Float64bits(sent.Normalized), math.Float64bits(got.Normalized))
}

func TestVibrationEndpointFiltersDatagrams(t *testing.T) {
	e, err := NewVibrationEndpoint(0)
	assert.Equal(t, nil, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan proto.VibrationPacket, 4)
	go e.Receive(ctx, out)

	dst := e.conn.LocalAddr().(*net.UDPAddr)
	src, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: dst.Port})
	assert.Equal(t, nil, err)
	defer src.Close()

	// short datagram and foreign magic must both be dropped
	_, err = src.Write([]byte{0x01, 0x02})
	assert.Equal(t, nil, err)

	// right size, wrong magic
	bad := (&proto.VibrationPacket{DeviceID: 1}).Marshal()
	binary.LittleEndian.PutUint32(bad[0:], proto.InputEventMagic)
	_, err = src.Write(bad)
	assert.Equal(t, nil, err)

	good := proto.VibrationPacket{
		DeviceID:   2,
		LeftMotor:  30000,
		RightMotor: 10000,
		DurationMs: 500,
	}
	_, err = src.Write(good.Marshal())
	assert.Equal(t, nil, err)

	select {
	case pkt := <-out:
		assert.Equal(t, uint8(2), pkt.DeviceID)
		assert.Equal(t, uint16(30000), pkt.LeftMotor)
		assert.Equal(t, uint16(10000), pkt.RightMotor)
		assert.Equal(t, uint32(500), pkt.DurationMs)
	case <-time.After(2 * time.Second):
		t.Fatal("valid packet never delivered")
	}

	// nothing else should arrive
	select {
	case pkt := <-out:
		t.Fatalf("unexpected packet: %+v", pkt)
	case <-time.After(100 * time.Millisecond):
	}
}
