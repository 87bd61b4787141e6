// Package config loads the runtime configuration for the three-party
// conversion core: a global file shared by every party plus a small
// per-party overlay, both TOML.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/ring"
)

// Config carries everything the conversion core needs to come up. The
// network block only matters to deployments that bolt a real transport
// onto the Communicator interface; the in-process harness ignores it.
type Config struct {
	PartyID int `toml:"party_id"`

	BindingIP string            `toml:"binding_ipaddr"`
	Servers   map[string]Server `toml:"servers"`

	SharedKeysPath string `toml:"shared_keys_path"`

	FieldBits       int  `toml:"field_bits"`
	OfflineRandom   bool `toml:"offline_random"`
	LocalNumThreads int  `toml:"local_num_threads"`

	MemoryLimit uint64 `toml:"memory_limit"`

	Debug bool `toml:"debug"`
}

// Server is one party's network endpoint.
type Server struct {
	IpAddr string `toml:"ipaddr"`
	Port   string `toml:"port"`
}

// Load reads configGlobal.toml and, when pid >= 0, the matching
// configLocal.Party<pid>.toml overlay from dir.
func Load(dir string, pid int) (*Config, error) {
	cfg := &Config{
		FieldBits:       64,
		OfflineRandom:   true,
		LocalNumThreads: 1,
	}
	if _, err := toml.DecodeFile(filepath.Join(dir, "configGlobal.toml"), cfg); err != nil {
		return nil, errs.Precondition("config: global decode failed: %v", err)
	}
	if pid >= 0 {
		local := filepath.Join(dir, fmt.Sprintf("configLocal.Party%d.toml", pid))
		if _, err := toml.DecodeFile(local, cfg); err != nil {
			return nil, errs.Precondition("config: local decode failed: %v", err)
		}
		cfg.PartyID = pid
	}
	if _, err := cfg.Field(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Field maps the configured bit width onto a ring field.
func (c *Config) Field() (ring.Field, error) {
	switch c.FieldBits {
	case 8, 16, 32, 64, 128:
		return ring.FieldFor(c.FieldBits)
	default:
		return 0, errs.Precondition("config: field_bits must be one of 8/16/32/64/128, got %d", c.FieldBits)
	}
}
