// Package xboxctl holds application wide settings loaded from an ini file.
package xboxctl

import (
	"fmt"
	"os"
	"time"

	"github.com/go-ini/ini"

	"github.com/aviralksingh/xbox-control/internal/pkg/proto"
)

const DefaultConfigPath = "./xbox_control.ini"

type Config struct {
	Network struct {
		EventPort int
	}

	Devices struct {
		RescanInterval time.Duration
		Grab           bool
	}
}

func defaultConfig() Config {
	var c Config
	c.Network.EventPort = proto.DefaultEventPort
	c.Devices.RescanInterval = 5 * time.Second
	c.Devices.Grab = true
	return c
}

// LoadConfig reads settings from path, a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	c := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("reading %s failed: %w", path, err)
	}

	cfg, err := ini.Load(data)
	if err != nil {
		return c, fmt.Errorf("parsing %s failed: %w", path, err)
	}

	// [network]
	if network, err := cfg.GetSection("network"); err == nil {
		if key, err := network.GetKey("event_port"); err == nil {
			port, err := key.Int()
			if err != nil || port < 1 || port > 65534 {
				return c, fmt.Errorf("event_port: invalid value %q", key.Value())
			}
			c.Network.EventPort = port
		}
	}

	// [devices]
	if devices, err := cfg.GetSection("devices"); err == nil {
		if key, err := devices.GetKey("rescan_interval"); err == nil {
			secs, err := key.Int()
			if err != nil || secs < 1 {
				return c, fmt.Errorf("rescan_interval: invalid value %q", key.Value())
			}
			c.Devices.RescanInterval = time.Duration(secs) * time.Second
		}
		if key, err := devices.GetKey("grab"); err == nil {
			b, err := key.Bool()
			if err != nil {
				return c, fmt.Errorf("grab: invalid value %q", key.Value())
			}
			c.Devices.Grab = b
		}
	}

	return c, nil
}
