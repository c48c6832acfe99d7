package input

import (
	"errors"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
)

type fakeEffectDevice struct {
	rumbleSupported bool
	supportErr      error
	uploadErr       error
	playErr         error
	stopErr         error

	nextID  int16
	uploads int
	plays   []int16
	stops   []int16
	closed  bool
}

func (f *fakeEffectDevice) SupportsRumble() (bool, error) {
	return f.rumbleSupported, f.supportErr
}

func (f *fakeEffectDevice) UploadRumble(left, right uint16) (int16, error) {
	if f.uploadErr != nil {
		return -1, f.uploadErr
	}
	id := f.nextID
	f.nextID++
	f.uploads++
	return id, nil
}

func (f *fakeEffectDevice) PlayEffect(id int16) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.plays = append(f.plays, id)
	return nil
}

func (f *fakeEffectDevice) StopEffect(id int16) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stops = append(f.stops, id)
	return nil
}

func (f *fakeEffectDevice) Close() error {
	f.closed = true
	return nil
}

type fakeEvdev struct {
	name    string
	types   []evdev.EvType
	grabErr error
	grabbed bool
	closed  bool
}

func (f *fakeEvdev) Name() (string, error)           { return f.name, nil }
func (f *fakeEvdev) CapableTypes() []evdev.EvType    { return f.types }
func (f *fakeEvdev) NonBlock() error                 { return nil }
func (f *fakeEvdev) ReadOne() (*evdev.InputEvent, error) {
	return nil, errors.New("no events")
}
func (f *fakeEvdev) Grab() error {
	if f.grabErr != nil {
		return f.grabErr
	}
	f.grabbed = true
	return nil
}
func (f *fakeEvdev) Ungrab() error { f.grabbed = false; return nil }
func (f *fakeEvdev) Close() error  { f.closed = true; return nil }

func testController(ff *fakeEffectDevice) *Controller {
	return &Controller{
		ID:       0,
		Path:     "/dev/input/event9",
		Name:     "Test Pad",
		dev:      &fakeEvdev{name: "Test Pad"},
		ff:       ff,
		grabbed:  true,
		state:    Grabbed,
		effectID: -1,
	}
}

func TestRumbleStartThenStop(t *testing.T) {
	ff := &fakeEffectDevice{rumbleSupported: true}
	c := testController(ff)

	err := c.Rumble(32767, 32767)
	assert.Equal(t, nil, err)
	assert.Equal(t, Rumbling, c.State())
	assert.Equal(t, int16(0), c.EffectID())

	err = c.Rumble(0, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, Grabbed, c.State())
	assert.Equal(t, int16(-1), c.EffectID())

	// exactly one upload, one play, one stop
	assert.Equal(t, 1, ff.uploads)
	assert.Equal(t, []int16{0}, ff.plays)
	assert.Equal(t, []int16{0}, ff.stops)
}

func TestStopIsIdempotent(t *testing.T) {
	ff := &fakeEffectDevice{rumbleSupported: true}
	c := testController(ff)

	assert.Equal(t, nil, c.StopRumble())
	assert.Equal(t, nil, c.StopRumble())
	assert.Equal(t, Grabbed, c.State())
	assert.Equal(t, int16(-1), c.EffectID())
	assert.Equal(t, 0, len(ff.stops))
}

func TestDoubleStartReplacesEffect(t *testing.T) {
	ff := &fakeEffectDevice{rumbleSupported: true}
	c := testController(ff)

	assert.Equal(t, nil, c.Rumble(10000, 10000))
	assert.Equal(t, nil, c.Rumble(20000, 20000))

	// old effect stopped before the new one went up, one effect active
	assert.Equal(t, []int16{0}, ff.stops)
	assert.Equal(t, 2, ff.uploads)
	assert.Equal(t, int16(1), c.EffectID())
	assert.Equal(t, Rumbling, c.State())
}

func TestRumbleUnsupported(t *testing.T) {
	ff := &fakeEffectDevice{rumbleSupported: false}
	c := testController(ff)

	err := c.Rumble(100, 100)
	assert.ErrorIs(t, err, ErrRumbleUnsupported)
	assert.Equal(t, Grabbed, c.State())
	assert.Equal(t, int16(-1), c.EffectID())
}

func TestUploadFailureLeavesPriorState(t *testing.T) {
	ff := &fakeEffectDevice{rumbleSupported: true}
	c := testController(ff)
	assert.Equal(t, nil, c.Rumble(100, 100))

	ff.uploadErr = errors.New("EINVAL")
	err := c.Rumble(200, 200)
	assert.NotEqual(t, nil, err)
	// old effect was stopped, nothing new recorded
	assert.Equal(t, int16(-1), c.EffectID())
	assert.Equal(t, Grabbed, c.State())
}

func TestPlayFailureRecordsNoEffect(t *testing.T) {
	ff := &fakeEffectDevice{rumbleSupported: true, playErr: errors.New("ENODEV")}
	c := testController(ff)

	err := c.Rumble(100, 100)
	assert.NotEqual(t, nil, err)
	assert.Equal(t, int16(-1), c.EffectID())
	assert.Equal(t, Grabbed, c.State())
}

func TestCloseStopsActiveEffect(t *testing.T) {
	ff := &fakeEffectDevice{rumbleSupported: true}
	c := testController(ff)
	assert.Equal(t, nil, c.Rumble(100, 100))

	c.Close()
	assert.Equal(t, Closing, c.State())
	assert.Equal(t, []int16{0}, ff.stops)
	assert.True(t, ff.closed)
	assert.True(t, c.dev.(*fakeEvdev).closed)

	// closing twice is safe
	c.Close()
}
