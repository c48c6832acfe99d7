package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"

	"github.com/aviralksingh/xbox-control/internal/pkg/input"
	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
	"github.com/aviralksingh/xbox-control/internal/pkg/proto"
)

const DefaultRescanInterval = 5 * time.Second

// deviceEvent is one raw event tagged with its source handle.
type deviceEvent struct {
	ctrl  *input.Controller
	event evdev.InputEvent
}

// Loop is the single dispatch site for everything inbound: device events,
// vibration commands and the rescan tick. Device readers and the vibration
// endpoint feed it through channels, so per-device ordering is preserved
// and effect state never needs a lock.
type Loop struct {
	registry       *input.Registry
	publisher      *Publisher
	endpoint       *VibrationEndpoint
	rescanInterval time.Duration

	events     chan deviceEvent
	vibrations chan proto.VibrationPacket
}

func NewLoop(registry *input.Registry, publisher *Publisher, endpoint *VibrationEndpoint, rescanInterval time.Duration) *Loop {
	if rescanInterval <= 0 {
		rescanInterval = DefaultRescanInterval
	}
	return &Loop{
		registry:       registry,
		publisher:      publisher,
		endpoint:       endpoint,
		rescanInterval: rescanInterval,
		events:         make(chan deviceEvent, 64),
		vibrations:     make(chan proto.VibrationPacket, 8),
	}
}

// Run blocks until ctx is cancelled. On exit all effects are stopped and
// all device fds closed.
func (l *Loop) Run(ctx context.Context) {
	go l.endpoint.Receive(ctx, l.vibrations)

	l.rescan(ctx)

	ticker := time.NewTicker(l.rescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.registry.Close()
			log.Info("event loop stopped", logger.Debug)
			return
		case <-ticker.C:
			l.rescan(ctx)
		case m := <-l.events:
			l.handleEvent(m)
		case pkt := <-l.vibrations:
			l.handleVibration(pkt)
		}
	}
}

func (l *Loop) rescan(ctx context.Context) {
	for _, c := range l.registry.Rescan() {
		go l.pump(ctx, c)
	}
}

// pump forwards one device's events into the loop, draining the remainder
// on shutdown so the reader goroutine can finish.
func (l *Loop) pump(ctx context.Context, c *input.Controller) {
	for ev := range c.ReadEvents(ctx) {
		select {
		case l.events <- deviceEvent{ctrl: c, event: ev}:
		case <-ctx.Done():
		}
	}
}

func (l *Loop) handleEvent(m deviceEvent) {
	// SYN frames only delimit kernel reports, every packet is self-contained
	if m.event.Type == evdev.EV_SYN {
		return
	}

	pkt := buildPacket(m.ctrl, &m.event)
	log.Info(describeEvent(m.ctrl, &m.event), zap.Uint8("device_id", m.ctrl.ID), logger.Events)

	err := l.publisher.Send(&pkt)
	if err != nil {
		log.Info(fmt.Sprintf("send failed: %v", err), logger.Warning)
	}
}

// buildPacket converts a raw event into its wire form. EV_ABS values run
// through the device's normalization tables, everything else carries the
// raw value as a plain float.
func buildPacket(c *input.Controller, ev *evdev.InputEvent) proto.InputEventPacket {
	pkt := proto.InputEventPacket{
		DeviceID: c.ID,
		Type:     uint16(ev.Type),
		Code:     uint16(ev.Code),
		Value:    ev.Value,
		Sec:      uint32(ev.Time.Sec),
		Usec:     uint32(ev.Time.Usec),
	}

	if ev.Type == evdev.EV_ABS && c.Config != nil {
		pkt.Normalized = c.Config.Normalize(uint16(ev.Code), ev.Value)
	} else {
		pkt.Normalized = float64(ev.Value)
	}
	return pkt
}

// describeEvent names an event for the log stream, falling back to numeric
// names for codes absent from the config.
func describeEvent(c *input.Controller, ev *evdev.InputEvent) string {
	code := uint16(ev.Code)

	switch ev.Type {
	case evdev.EV_KEY:
		name := fmt.Sprintf("Btn-%d", code)
		if c.Config != nil {
			if n, ok := c.Config.ButtonName(code); ok {
				name = n
			}
		}
		if ev.Value != 0 {
			return name + " pressed"
		}
		return name + " released"
	case evdev.EV_ABS:
		name := fmt.Sprintf("Axis-%d", code)
		if c.Config != nil {
			if n, ok := c.Config.DpadButtonName(code, ev.Value); ok {
				return n
			}
			if a, ok := c.Config.Axis(code); ok {
				name = a.Name
			}
		}
		return fmt.Sprintf("%s = %d", name, ev.Value)
	default:
		return fmt.Sprintf("type=%d code=%d value=%d", ev.Type, code, ev.Value)
	}
}

func (l *Loop) handleVibration(pkt proto.VibrationPacket) {
	c, ok := l.registry.ByID(pkt.DeviceID)
	if !ok {
		log.Info(fmt.Sprintf("vibration for unknown device %d dropped", pkt.DeviceID), logger.Debug)
		return
	}

	if pkt.LeftMotor == 0 && pkt.RightMotor == 0 {
		err := c.StopRumble()
		if err != nil {
			log.Info(fmt.Sprintf("stopping effect failed: %v", err),
				zap.String("device_name", c.Name), logger.Warning)
			return
		}
		log.Info("rumble stopped", zap.String("device_name", c.Name), logger.Action)
		return
	}

	if pkt.DurationMs != 0 {
		// duration is kernel-owned, the field is carried but not honored
		log.Info(fmt.Sprintf("ignoring duration_ms=%d", pkt.DurationMs), logger.Debug)
	}

	err := c.Rumble(pkt.LeftMotor, pkt.RightMotor)
	if err != nil {
		log.Info(fmt.Sprintf("rumble failed: %v", err),
			zap.String("device_name", c.Name), logger.Warning)
		return
	}
	log.Info(fmt.Sprintf("rumble started: strong=%d weak=%d", pkt.LeftMotor, pkt.RightMotor),
		zap.String("device_name", c.Name), logger.Action)
}
