package input

// Force-feedback definitions from <linux/input.h>, needed because the evdev
// library exposes no effect upload API.

const (
	// Values describing the status of a force-feedback effect

	FF_STATUS_STOPPED = 0x00
	FF_STATUS_PLAYING = 0x01

	// Force feedback effect types

	FF_RUMBLE   = 0x50
	FF_PERIODIC = 0x51
	FF_CONSTANT = 0x52
	FF_SPRING   = 0x53
	FF_FRICTION = 0x54
	FF_DAMPER   = 0x55
	FF_INERTIA  = 0x56
	FF_RAMP     = 0x57

	FF_MAX = 0x7f
	FF_CNT = FF_MAX + 1
)

// ioctl request numbers: _IOC(dir, 'E', nr, size)
const (
	iocWrite = 1
	iocRead  = 2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	evIocMagic = 'E'
)

func ioc(dir, nr, size uint) uint {
	return dir<<iocDirShift | size<<iocSizeShift | evIocMagic<<iocTypeShift | nr<<iocNrShift
}

// EVIOCGBIT(EV_FF, len) - fetch the force-feedback capability bitmask
func eviocgbitFF(size uint) uint {
	return ioc(iocRead, 0x20+0x15, size)
}

// EVIOCSFF - upload a force-feedback effect
func eviocsff() uint {
	return ioc(iocWrite, 0x80, uint(ffEffectSize))
}

// EVIOCRMFF - erase an uploaded effect
func eviocrmff() uint {
	return ioc(iocWrite, 0x81, 4)
}

const ffEffectSize = 48 // sizeof(struct ff_effect) with a 64-bit effect union

type ffTrigger struct {
	Button   uint16
	Interval uint16
}

type ffReplay struct {
	Length uint16 // milliseconds, 0 = play until stopped
	Delay  uint16
}

type ffRumble struct {
	StrongMagnitude uint16
	WeakMagnitude   uint16
}

// ffEffect mirrors struct ff_effect. The effect union is 8-byte aligned and
// 32 bytes wide (ff_periodic_effect with its custom-data pointer); only the
// rumble member is populated here, the tail stays zeroed.
type ffEffect struct {
	Type      uint16
	ID        int16
	Direction uint16
	Trigger   ffTrigger
	Replay    ffReplay
	_         [2]byte
	Rumble    ffRumble
	_         [28]byte
}
