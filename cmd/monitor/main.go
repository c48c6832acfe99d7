// Debug receiver for the publisher's wire format. Shows live per-device
// button and axis state in a gocui TUI and echoes vibration datagrams so the
// sender CLI can be exercised without a real consumer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/holoplot/go-evdev"

	"github.com/aviralksingh/xbox-control/internal/pkg/bridge"
	"github.com/aviralksingh/xbox-control/internal/pkg/controller"
	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
	"github.com/aviralksingh/xbox-control/internal/pkg/proto"
)

var log = logger.GetLogger()

var (
	nocolor    = flag.Bool("nocolor", false, "disable color")
	force256   = flag.Bool("256", false, "force 256 color mode")
	configPath = flag.String("config", "", "controller yaml for button/axis names, default: first file under the config search path")
	logLevel   = flag.Int("loglevel", logger.EventsLvl, "logging level (0-5)")
	viewRate   = flag.Duration("viewrate", 50*time.Millisecond, "device pane refresh interval")
)

type axisState struct {
	raw        int32
	normalized float64
}

type deviceState struct {
	buttons  map[uint16]bool
	dpad     map[string]bool
	axes     map[uint16]axisState
	lastSeen time.Time
}

type monitorState struct {
	mu      sync.Mutex
	devices map[uint8]*deviceState
	cfg     *controller.Config
}

func newMonitorState(cfg *controller.Config) *monitorState {
	return &monitorState{devices: make(map[uint8]*deviceState), cfg: cfg}
}

func (s *monitorState) buttonName(code uint16) string {
	if s.cfg != nil {
		if n, ok := s.cfg.ButtonName(code); ok {
			return n
		}
	}
	return fmt.Sprintf("Btn-%d", code)
}

func (s *monitorState) axisName(code uint16) string {
	if s.cfg != nil {
		if a, ok := s.cfg.Axis(code); ok {
			return a.Name
		}
	}
	return fmt.Sprintf("Axis-%d", code)
}

func (s *monitorState) apply(pkt proto.InputEventPacket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[pkt.DeviceID]
	if !ok {
		d = &deviceState{
			buttons: make(map[uint16]bool),
			dpad:    make(map[string]bool),
			axes:    make(map[uint16]axisState),
		}
		s.devices[pkt.DeviceID] = d
	}
	d.lastSeen = time.Now()

	switch evdev.EvType(pkt.Type) {
	case evdev.EV_KEY:
		d.buttons[pkt.Code] = pkt.Value != 0
	case evdev.EV_ABS:
		if s.cfg != nil && s.cfg.IsDpadAxis(pkt.Code) {
			for name, down := range s.cfg.DpadStates(pkt.Code, pkt.Value) {
				d.dpad[name] = down
			}
			return
		}
		d.axes[pkt.Code] = axisState{raw: pkt.Value, normalized: pkt.Normalized}
	}
}

// receiveEvents decodes event datagrams into the state table.
func receiveEvents(ctx context.Context, conn *net.UDPConn, state *monitorState) {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	buf := make([]byte, proto.InputEventPacketSize+1)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				log.Info(fmt.Sprintf("event socket read failed: %v", err), logger.Warning)
			}
			return
		}

		pkt, err := proto.UnmarshalInputEvent(buf[:n])
		if err != nil {
			log.Info(fmt.Sprintf("dropping datagram: %v", err), logger.Debug)
			continue
		}
		if evdev.EvType(pkt.Type) == evdev.EV_SYN {
			continue
		}
		state.apply(pkt)
	}
}

// echoVibration logs inbound rumble commands, there is no device to drive.
func echoVibration(ctx context.Context, endpoint *bridge.VibrationEndpoint) {
	out := make(chan proto.VibrationPacket, 8)
	go endpoint.Receive(ctx, out)

	for {
		select {
		case <-ctx.Done():
			return
		case pkt := <-out:
			log.Info(fmt.Sprintf("vibration: device=%d strong=%d weak=%d duration=%dms",
				pkt.DeviceID, pkt.LeftMotor, pkt.RightMotor, pkt.DurationMs), logger.Action)
		}
	}
}

func loadNames(path string) *controller.Config {
	manager := controller.NewManager()

	if path != "" {
		cfg, err := manager.LoadFile(path)
		if err != nil {
			log.Info(fmt.Sprintf("config not loaded, using numeric names: %v", err), logger.Warning)
			return nil
		}
		return cfg
	}

	// any config provides usable names, matching does not apply here
	for _, dir := range controller.DefaultDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".yaml") {
				continue
			}
			cfg, err := manager.LoadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			return cfg
		}
	}
	return nil
}

func fatal(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func main() {
	flag.Parse()
	if *force256 {
		os.Setenv("TERM", "xterm-256color")
	}

	port := proto.DefaultEventPort
	if args := flag.Args(); len(args) >= 1 {
		var err error
		port, err = strconv.Atoi(args[0])
		if err != nil || port < 1 || port > 65534 {
			fatal("invalid port %q", args[0])
		}
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		fatal("binding event socket :%d failed: %v", port, err)
	}
	endpoint, err := bridge.NewVibrationEndpoint(proto.VibrationPort(port))
	if err != nil {
		fatal("%v", err)
	}

	state := newMonitorState(loadNames(*configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go receiveEvents(ctx, conn, state)
	go echoVibration(ctx, endpoint)

	g, err := GetCli()
	if err != nil {
		fatal("%v", err)
	}
	defer g.Close()

	go func() {
		for {
			g.Update(Layout)
			time.Sleep(*viewRate)
		}
	}()
	go logView(g, !*nocolor, *logLevel)
	go devicesView(g, !*nocolor, state, *viewRate)

	log.Info(fmt.Sprintf("listening for events on :%d, vibration echo on :%d",
		port, proto.VibrationPort(port)), logger.Info)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		fatal("%v", err)
	}
}
