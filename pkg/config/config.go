// Package config handles loading and saving fundtrail configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/fundtrail/config.yaml
//   - State:   ~/.local/state/fundtrail/ (exports, debug logs)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "fundtrail"

// Case is a saved complaint: a name for an acknowledgement number and the
// source it is read from.
type Case struct {
	Name   string `yaml:"name"`
	Ack    string `yaml:"ack"`
	Source string `yaml:"source,omitempty"` // URL, .db or graph .json; empty uses server.url
}

// ServerConfig points at the fund-trail API.
type ServerConfig struct {
	URL     string        `yaml:"url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// IFSCConfig configures branch-name lookups.
type IFSCConfig struct {
	URL         string  `yaml:"url,omitempty"`
	RatePerSec  float64 `yaml:"rate_per_sec,omitempty"`
	Burst       int     `yaml:"burst,omitempty"`
	Concurrency int     `yaml:"concurrency,omitempty"`
	Disabled    bool    `yaml:"disabled,omitempty"` // skip lookups; branches show Unknown
}

// TreeConfig tunes the expand/collapse engine.
type TreeConfig struct {
	BurstThreshold int           `yaml:"burst_threshold,omitempty"`
	ClickDebounce  time.Duration `yaml:"click_debounce,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultView string `yaml:"default_view,omitempty"` // tree, holds
	Viewer      bool   `yaml:"viewer,omitempty"`       // read-only role: KYC cannot be edited
	Mouse       *bool  `yaml:"mouse,omitempty"`
}

// ExportConfig controls where exports are written.
type ExportConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format,omitempty"` // svg, png
}

// Config is the top-level configuration for fundtrail.
type Config struct {
	Cases  []Case       `yaml:"cases,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
	IFSC   IFSCConfig   `yaml:"ifsc,omitempty"`
	Tree   TreeConfig   `yaml:"tree,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
	Export ExportConfig `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:     "http://127.0.0.1:5000",
			Timeout: 30 * time.Second,
		},
		IFSC: IFSCConfig{
			URL:         "https://ifsc.razorpay.com",
			RatePerSec:  20,
			Burst:       5,
			Concurrency: 8,
		},
		Tree: TreeConfig{
			BurstThreshold: 20,
			ClickDebounce:  250 * time.Millisecond,
		},
		UI: UIConfig{
			DefaultView: "tree",
		},
		Export: ExportConfig{
			Format: "svg",
		},
	}
}

// xdgDir resolves an XDG base directory for fundtrail: $env when set,
// otherwise ~/<fallback...>. Empty when no home directory is known.
func xdgDir(env string, fallback ...string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// ConfigDir is where config.yaml lives.
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// StateDir holds exports and debug logs.
func StateDir() string { return xdgDir("XDG_STATE_HOME", ".local", "state") }

// ConfigPath returns the path of config.yaml, or "" when ConfigDir is unknown.
func ConfigPath() string {
	if dir := ConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return ""
}

// Load reads ConfigPath and applies environment overrides. A missing file
// (or an unknown config directory) yields the defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if path := ConfigPath(); path != "" {
		var err error
		if cfg, err = LoadFrom(path); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFrom reads and validates the config at path. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	for i := range cfg.Cases {
		cfg.Cases[i].Source = expandHome(cfg.Cases[i].Source)
	}
	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Tree.BurstThreshold < 1:
		return fmt.Errorf("tree.burst_threshold must be at least 1, got %d", c.Tree.BurstThreshold)
	case c.Tree.ClickDebounce < 0:
		return fmt.Errorf("tree.click_debounce must not be negative")
	case c.IFSC.Concurrency < 0 || c.IFSC.Burst < 0 || c.IFSC.RatePerSec < 0:
		return fmt.Errorf("ifsc limits must not be negative")
	}
	switch c.Export.Format {
	case "", "svg", "png":
	default:
		return fmt.Errorf("export.format %q: want svg or png", c.Export.Format)
	}
	switch c.UI.DefaultView {
	case "", "tree", "holds":
	default:
		return fmt.Errorf("ui.default_view %q: want tree or holds", c.UI.DefaultView)
	}
	for i, cs := range c.Cases {
		if strings.TrimSpace(cs.Ack) == "" {
			return fmt.Errorf("cases[%d]: ack is required", i)
		}
	}
	return nil
}

// ApplyEnv overrides the server and IFSC URLs from FUNDTRAIL_SERVER and
// FUNDTRAIL_IFSC_URL.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("FUNDTRAIL_SERVER"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("FUNDTRAIL_IFSC_URL"); v != "" {
		c.IFSC.URL = v
	}
}

// Save writes cfg to ConfigPath.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return errors.New("save config: no config directory (set XDG_CONFIG_HOME)")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg to path through a temporary file in the same directory,
// so a crash never leaves a truncated config behind.
func SaveTo(cfg Config, path string) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("save config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// FindCase returns the case with the given name or acknowledgement number,
// or nil.
func (c Config) FindCase(key string) *Case {
	for i := range c.Cases {
		if strings.EqualFold(c.Cases[i].Name, key) || c.Cases[i].Ack == strings.TrimSpace(key) {
			return &c.Cases[i]
		}
	}
	return nil
}

// RememberCase adds or updates a saved case by acknowledgement number.
func (c *Config) RememberCase(cs Case) {
	for i := range c.Cases {
		if c.Cases[i].Ack == cs.Ack {
			if cs.Name == "" {
				cs.Name = c.Cases[i].Name
			}
			c.Cases[i] = cs
			return
		}
	}
	if cs.Name == "" {
		cs.Name = cs.Ack
	}
	c.Cases = append(c.Cases, cs)
}

// ExportDir returns the configured export directory, falling back to the
// state directory and finally the working directory.
func (c Config) ExportDir() string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	if dir := StateDir(); dir != "" {
		return filepath.Join(dir, "exports")
	}
	return "."
}

// MouseEnabled reports whether mouse input is on (default true).
func (c Config) MouseEnabled() bool {
	return c.UI.Mouse == nil || *c.UI.Mouse
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, rest)
	}
	return path
}
