// Package controller holds per-controller mapping configuration: button and
// axis names, d-pad synthesis tables and axis normalization parameters,
// loaded from YAML files.
package controller

import (
	"strings"
)

// Button maps a key-event code to a display name.
type Button struct {
	Code uint16
	Name string
}

// DpadButton synthesizes a named button state from a tri-state axis value.
type DpadButton struct {
	AxisCode uint16
	Value    int32 // typically -1, 0 or 1
	Name     string
}

// Axis describes one absolute axis and its normalization parameters.
type Axis struct {
	Code      uint16
	Name      string
	Min       int32
	Max       int32
	Deadzone  int32
	Normalize bool
	OutputMin float64
	OutputMax float64
}

// Normalization carries config-wide normalization defaults.
type Normalization struct {
	OutputMin     float64
	OutputMax     float64
	ApplyDeadzone bool
}

// Config is immutable after parsing and shared by reference between the
// manager cache and every admitted device that matched it.
type Config struct {
	Name            string
	VendorPatterns  []string
	ExcludePatterns []string
	Buttons         []Button
	DpadButtons     []DpadButton
	Axes            []Axis
	Norm            Normalization

	buttonNames map[uint16]string
	axes        map[uint16]Axis
	dpadNames   map[uint16]map[int32]string
	dpadAxes    map[uint16]struct{}
}

// buildLookups derives the read-only query maps, called once by the parser.
func (c *Config) buildLookups() {
	c.buttonNames = make(map[uint16]string, len(c.Buttons))
	c.axes = make(map[uint16]Axis, len(c.Axes))
	c.dpadNames = make(map[uint16]map[int32]string)
	c.dpadAxes = make(map[uint16]struct{})

	for _, b := range c.Buttons {
		c.buttonNames[b.Code] = b.Name
	}
	for _, d := range c.DpadButtons {
		values, ok := c.dpadNames[d.AxisCode]
		if !ok {
			values = make(map[int32]string)
			c.dpadNames[d.AxisCode] = values
		}
		values[d.Value] = d.Name
		c.dpadAxes[d.AxisCode] = struct{}{}
	}
	for _, a := range c.Axes {
		c.axes[a.Code] = a
	}
}

// Matches reports whether a device name belongs to this controller.
// Exclude patterns veto the match before vendor patterns are considered,
// so "Xbox Wireless Controller Keyboard" stays out.
func (c *Config) Matches(deviceName string) bool {
	name := strings.ToLower(deviceName)
	if matchesAny(name, c.ExcludePatterns) {
		return false
	}
	return matchesAny(name, c.VendorPatterns)
}

func matchesAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// ButtonName returns the display name for a key-event code.
func (c *Config) ButtonName(code uint16) (string, bool) {
	name, ok := c.buttonNames[code]
	return name, ok
}

// Axis returns the axis record for an absolute-axis code.
func (c *Config) Axis(code uint16) (Axis, bool) {
	a, ok := c.axes[code]
	return a, ok
}

// DpadButtonName returns the synthesized button name for an axis value.
func (c *Config) DpadButtonName(axisCode uint16, value int32) (string, bool) {
	values, ok := c.dpadNames[axisCode]
	if !ok {
		return "", false
	}
	name, ok := values[value]
	return name, ok
}

// IsDpadAxis reports whether an axis code is translated to button states.
func (c *Config) IsDpadAxis(code uint16) bool {
	_, ok := c.dpadAxes[code]
	return ok
}

// DpadStates translates a d-pad axis event into button states: a non-zero
// value presses its named button and releases every sibling on the axis,
// zero releases them all. The opposite direction is always released
// explicitly, so a -1 to +1 jump does not depend on the kernel emitting
// the intermediate 0.
func (c *Config) DpadStates(axisCode uint16, value int32) map[string]bool {
	values, ok := c.dpadNames[axisCode]
	if !ok {
		return nil
	}

	states := make(map[string]bool, len(values))
	for v, name := range values {
		if v == 0 {
			continue
		}
		states[name] = v == value
	}
	return states
}
