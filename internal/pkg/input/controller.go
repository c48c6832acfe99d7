// Package input maintains the set of admitted gamepad devices: discovery
// under /dev/input, exclusive grabbing, event reading and the
// force-feedback effect lifecycle.
package input

import (
	"context"
	"fmt"

	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"

	"github.com/aviralksingh/xbox-control/internal/pkg/controller"
	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
)

var log = logger.GetLogger()

type State int

const (
	Open State = iota
	Grabbed
	Rumbling
	Closing
)

func (s State) String() string {
	switch s {
	case Open:
		return "Open"
	case Grabbed:
		return "Grabbed"
	case Rumbling:
		return "Rumbling"
	case Closing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// evdevDevice is the event-reading surface of one device node,
// satisfied by *evdev.InputDevice.
type evdevDevice interface {
	Name() (string, error)
	CapableTypes() []evdev.EvType
	Grab() error
	Ungrab() error
	NonBlock() error
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// Controller is one admitted device. Effect state and State transitions are
// owned by the single dispatch loop, so no locking happens here; a threaded
// caller would need to add it.
type Controller struct {
	ID     uint8
	Path   string
	Name   string
	Config *controller.Config // nil when admitted as a generic gamepad

	dev      evdevDevice
	ff       effectDevice
	grabbed  bool
	state    State
	effectID int16 // -1 when no effect is loaded
}

// restState is the state of the handle when no effect is playing.
func (c *Controller) restState() State {
	if c.grabbed {
		return Grabbed
	}
	return Open
}

func (c *Controller) State() State { return c.state }

// EffectID exposes the current force-feedback effect id, -1 when idle.
func (c *Controller) EffectID() int16 { return c.effectID }

// ReadEvents reads raw events until the device errors out or ctx is
// cancelled, in which case the device is closed to unblock the read.
// The channel is closed when reading stops; the handle itself stays in the
// registry either way, so the path is never re-admitted.
func (c *Controller) ReadEvents(ctx context.Context) <-chan evdev.InputEvent {
	var events = make(chan evdev.InputEvent)

	go func() {
		<-ctx.Done()
		c.Close()
	}()

	go func() {
		defer close(events)

		err := c.dev.NonBlock()
		if err != nil {
			log.Info(fmt.Sprintf("enabling non-blocking reads failed: %v", err),
				zap.String("device_path", c.Path), logger.Warning)
		}

		for {
			ev, err := c.dev.ReadOne()
			if err != nil {
				if c.state != Closing {
					log.Info(fmt.Sprintf("reading events stopped: %v", err),
						zap.String("device_path", c.Path), zap.String("device_name", c.Name), logger.Warning)
				}
				return
			}
			events <- *ev
		}
	}()

	return events
}

// Rumble starts a two-motor effect, stopping the previous one first.
// Zero magnitudes on both motors are a stop command. On any failure the
// handle keeps its prior effect state; no partial effect is recorded.
func (c *Controller) Rumble(left, right uint16) error {
	if left == 0 && right == 0 {
		return c.StopRumble()
	}

	if c.effectID >= 0 {
		err := c.ff.StopEffect(c.effectID)
		if err != nil {
			return err
		}
		c.effectID = -1
		c.state = c.restState()
	}

	ok, err := c.ff.SupportsRumble()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRumbleUnsupported, c.Name)
	}

	id, err := c.ff.UploadRumble(left, right)
	if err != nil {
		return err
	}
	err = c.ff.PlayEffect(id)
	if err != nil {
		return err
	}

	c.effectID = id
	c.state = Rumbling
	return nil
}

// StopRumble stops the active effect. Stopping an idle controller is a no-op.
func (c *Controller) StopRumble() error {
	if c.effectID < 0 {
		return nil
	}
	err := c.ff.StopEffect(c.effectID)
	if err != nil {
		return err
	}
	c.effectID = -1
	c.state = c.restState()
	return nil
}

// Close stops any effect, releases the grab and closes both fds.
func (c *Controller) Close() {
	if c.state == Closing {
		return
	}
	c.state = Closing

	if c.effectID >= 0 {
		_ = c.ff.StopEffect(c.effectID)
		c.effectID = -1
	}
	if c.grabbed {
		_ = c.dev.Ungrab()
	}
	_ = c.dev.Close()
	_ = c.ff.Close()
}
