// Package vfconfig holds spec.md §5's process-wide global configuration
// (Config, workspace path) behind a shared-read lock, and loads fund/FoF
// definition files from a workspace directory. Grounded on
// nezdemkovski-folio212's viper-backed config.Load/Save singleton
// (package-level cfg var, lazy Load, GetConfigDir under the user's home
// directory) for the Config half, generalized to TOML via
// pelletier/go-toml/v2 for the per-entity definition files spec.md §6
// describes as "plain-text configuration files... one file per entity".
package vfconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Config is spec.md §5's process-wide Config: settable once at init,
// read thereafter through Get's shared lock.
type Config struct {
	QMTApi       string `mapstructure:"qmt_api"`
	TushareApi   string `mapstructure:"tushare_api"`
	TushareToken string `mapstructure:"tushare_token"`
	Workspace    string `mapstructure:"workspace"`
}

var (
	mu  sync.RWMutex
	cfg *Config
)

// Default returns a Config whose workspace is ~/.vfunds and whose API
// fields are empty; Init loads the config file over it.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{Workspace: filepath.Join(home, ".vfunds")}
}

// Init loads Config from path (a TOML or YAML file viper can sniff by
// extension) and sets the process-wide singleton. Only the first Init
// in a process takes effect, matching spec.md §5's "settable once at
// init".
func Init(path string) (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if cfg != nil {
		return cfg, nil
	}

	viper.SetConfigFile(path)
	loaded := Default()
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("vfconfig: reading %s: %w", path, err)
	}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("vfconfig: unmarshaling %s: %w", path, err)
	}
	cfg = loaded
	return cfg, nil
}

// Get returns the process-wide Config, or Default() if Init hasn't run
// (e.g. in tests that construct their own definitions in-process).
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		return *Default()
	}
	return *cfg
}
