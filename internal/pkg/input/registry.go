package input

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"

	"github.com/aviralksingh/xbox-control/internal/pkg/controller"
	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
)

const InputDevDir = "/dev/input"

// Registry owns the active device set. Paths are admitted at most once per
// process run; device ids come from a monotonic counter and are never
// reused, so a cold start over a sorted candidate list is deterministic.
type Registry struct {
	dir        string
	configDirs []string
	manager    *controller.Manager
	grab       bool

	active map[string]*Controller
	list   []*Controller
	nextID int

	open func(path string) (evdevDevice, effectDevice, error)
}

func NewRegistry(manager *controller.Manager, grab bool) *Registry {
	return &Registry{
		dir:        InputDevDir,
		configDirs: controller.DefaultDirs(),
		manager:    manager,
		grab:       grab,
		active:     make(map[string]*Controller),
		open:       openDevice,
	}
}

func openDevice(path string) (evdevDevice, effectDevice, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, nil, err
	}
	ff, err := openFFDevice(path)
	if err != nil {
		_ = dev.Close()
		return nil, nil, err
	}
	return dev, ff, nil
}

// Rescan enumerates event nodes and admits every new candidate,
// returning the newly admitted controllers.
func (r *Registry) Rescan() []*Controller {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		log.Info(fmt.Sprintf("reading %s failed: %v", r.dir, err), logger.Warning)
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "event") {
			continue
		}
		paths = append(paths, filepath.Join(r.dir, entry.Name()))
	}
	sort.Strings(paths)

	var admitted []*Controller
	for _, path := range paths {
		if _, ok := r.active[path]; ok {
			continue
		}
		c := r.admit(path)
		if c != nil {
			admitted = append(admitted, c)
		}
	}
	return admitted
}

func (r *Registry) admit(path string) *Controller {
	if r.nextID > 255 {
		log.Info("device id space exhausted, ignoring new devices", logger.Warning)
		return nil
	}

	dev, ff, err := r.open(path)
	if err != nil {
		// routine for nodes we lack permissions for, try again next rescan
		return nil
	}

	name, err := dev.Name()
	if err != nil || name == "" {
		name = path
	}

	cfg := r.manager.Detect(r.configDirs, name)
	if cfg == nil && !isGenericGamepad(dev) {
		_ = dev.Close()
		_ = ff.Close()
		return nil
	}

	c := &Controller{
		ID:       uint8(r.nextID),
		Path:     path,
		Name:     name,
		Config:   cfg,
		dev:      dev,
		ff:       ff,
		state:    Open,
		effectID: -1,
	}

	if r.grab {
		err = dev.Grab()
		if err != nil {
			log.Info(fmt.Sprintf("could not grab %s, events may be duplicated to other consumers", path),
				zap.String("device_name", name), logger.Warning)
		} else {
			c.grabbed = true
			c.state = Grabbed
		}
	}

	r.nextID++
	r.active[path] = c
	r.list = append(r.list, c)

	configName := "generic gamepad"
	if cfg != nil {
		configName = cfg.Name
	}
	log.Info(fmt.Sprintf("controller %d: %s (%s)", c.ID, name, path),
		zap.String("config", configName), logger.Action)
	return c
}

// isGenericGamepad reports whether a device without a matching config is
// still admissible: anything with both key and absolute-axis capabilities.
func isGenericGamepad(dev evdevDevice) bool {
	var hasKeys, hasAbs bool
	for _, t := range dev.CapableTypes() {
		switch t {
		case evdev.EV_KEY:
			hasKeys = true
		case evdev.EV_ABS:
			hasAbs = true
		}
	}
	return hasKeys && hasAbs
}

// Controllers returns the active set in admission order.
func (r *Registry) Controllers() []*Controller {
	return r.list
}

// ByID resolves a wire-format device id to its handle.
func (r *Registry) ByID(id uint8) (*Controller, bool) {
	for _, c := range r.list {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Close tears down every handle; effects are stopped before fds close.
func (r *Registry) Close() {
	for _, c := range r.list {
		c.Close()
	}
}
