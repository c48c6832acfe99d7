package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/logrusorgru/aurora"

	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
)

const (
	ViewDevices = "devices"
	ViewLogs    = "logs"
)

func GetCli() (*gocui.Gui, error) {
	g, err := gocui.NewGui(gocui.Output256, true)
	if err != nil {
		return nil, err
	}

	g.SetManagerFunc(Layout)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return nil, err
	}

	return g, nil
}

func Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView(ViewDevices, 0, 0, maxX-1, 13, 0); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Devices]"
		v.Autoscroll = false
		v.Wrap = false
		v.Frame = true
	}

	if v, err := g.SetView(ViewLogs, 0, 13, maxX-1, maxY-1, gocui.TOP); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Logs]"
		v.Autoscroll = true
		v.Wrap = false
		v.Frame = true
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

// logView drains logger.Messages into the log pane.
func logView(g *gocui.Gui, colors bool, logLevel int) {
	au := aurora.NewAurora(colors)

	v, err := g.View(ViewLogs)
	for err != nil {
		time.Sleep(time.Millisecond * 50)
		v, err = g.View(ViewLogs)
	}

	for data := range logger.Messages {
		msg, err := logger.Unpack(data)
		if err != nil {
			fmt.Fprintf(v, "%s\n", string(data))
			continue
		}
		s := logger.Format(msg, au, logLevel)
		if s != "" {
			fmt.Fprintf(v, "%s\n", s)
		}
	}
}

// devicesView periodically repaints the per-device state pane.
func devicesView(g *gocui.Gui, colors bool, state *monitorState, rate time.Duration) {
	au := aurora.NewAurora(colors)

	v, err := g.View(ViewDevices)
	for err != nil {
		time.Sleep(time.Millisecond * 50)
		v, err = g.View(ViewDevices)
	}

	for {
		v.Clear()
		fmt.Fprint(v, renderDevices(au, state))
		time.Sleep(rate)
	}
}

func renderDevices(au aurora.Aurora, state *monitorState) string {
	state.mu.Lock()
	defer state.mu.Unlock()

	if len(state.devices) == 0 {
		return "waiting for packets...\n"
	}

	ids := make([]int, 0, len(state.devices))
	for id := range state.devices {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		d := state.devices[uint8(id)]

		var pressed []string
		for code, down := range d.buttons {
			if down {
				pressed = append(pressed, state.buttonName(uint16(code)))
			}
		}
		for name, down := range d.dpad {
			if down {
				pressed = append(pressed, name)
			}
		}
		sort.Strings(pressed)

		axisCodes := make([]int, 0, len(d.axes))
		for code := range d.axes {
			axisCodes = append(axisCodes, int(code))
		}
		sort.Ints(axisCodes)

		fmt.Fprintf(&b, "%s  (last packet %s ago)\n",
			au.Bold(fmt.Sprintf("device %d", id)),
			time.Since(d.lastSeen).Round(time.Millisecond))

		if len(pressed) > 0 {
			fmt.Fprintf(&b, "  pressed: %s\n", au.Green(strings.Join(pressed, " ")))
		} else {
			fmt.Fprintf(&b, "  pressed: %s\n", au.Gray(10, "none"))
		}

		for _, code := range axisCodes {
			a := d.axes[uint16(code)]
			fmt.Fprintf(&b, "  %-10s %+.4f  (raw %d)\n",
				state.axisName(uint16(code)), a.normalized, a.raw)
		}
	}
	return b.String()
}
