package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
)

var log = logger.GetLogger()

const systemConfigDir = "/usr/share/xbox_control/config"

// DefaultDirs returns the config search path: the working directory's
// ./config when it exists, otherwise the system-wide location.
func DefaultDirs() []string {
	if info, err := os.Stat("config"); err == nil && info.IsDir() {
		return []string{"config"}
	}
	return []string{systemConfigDir}
}

// Manager caches parsed configs for the lifetime of the process.
// The cache key is the config file stem, entries are never evicted.
// All access happens from the single dispatch loop, so there is no lock;
// a threaded caller would need to add one.
type Manager struct {
	configs map[string]*Config
}

func NewManager() *Manager {
	return &Manager{configs: make(map[string]*Config)}
}

// LoadFile parses a single YAML file and registers it under its stem.
func (m *Manager) LoadFile(path string) (*Config, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if cfg, ok := m.configs[stem]; ok {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q failed: %w", path, err)
	}
	cfg, err := ParseData(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q failed: %w", path, err)
	}

	m.configs[stem] = &cfg
	return &cfg, nil
}

// Get returns a cached config by stem.
func (m *Manager) Get(name string) (*Config, bool) {
	cfg, ok := m.configs[name]
	return cfg, ok
}

// Detect loads every *.yaml file under dirs and returns the first config
// whose patterns match the device name, or nil when none does.
func (m *Manager) Detect(dirs []string, deviceName string) *Config {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Info(fmt.Sprintf("config directory not available: %v", err), logger.Debug)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".yaml") {
				continue
			}
			cfg, err := m.LoadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				log.Info(err.Error(), logger.Warning)
				continue
			}
			if cfg.Matches(deviceName) {
				return cfg
			}
		}
	}
	return nil
}
