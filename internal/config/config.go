package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Overlay dismissal policies. Exactly one is active at a time.
const (
	DismissOnClick = "click"
	DismissOnFocus = "focus"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500

	// Bounds offered by the settings slider.
	SliderMinLimit  = 10
	SliderMaxLimit  = 50
	SliderLimitStep = 5
)

type Config struct {
	HistoryLimit  int  `mapstructure:"history_limit"`
	LaunchAtLogin bool `mapstructure:"launch_at_login"`

	AutoUpdate       bool   `mapstructure:"auto_update"`
	LastUpdateCheck  int64  `mapstructure:"last_update_check"` // unix seconds
	UpdateRepository string `mapstructure:"update_repository"`

	PollInterval   time.Duration `mapstructure:"poll_interval"`
	PasteDelay     time.Duration `mapstructure:"paste_delay"`
	Hotkey         string        `mapstructure:"hotkey"`
	OverlayDismiss string        `mapstructure:"overlay_dismiss"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func Default() *Config {
	return &Config{
		HistoryLimit:  DefaultHistoryLimit,
		LaunchAtLogin: false,

		AutoUpdate:       true,
		UpdateRepository: "thehaipe/Bufferfly",

		PollInterval:   time.Second,
		PasteDelay:     50 * time.Millisecond,
		Hotkey:         "ctrl+shift+v",
		OverlayDismiss: DismissOnClick,

		LogLevel:  "info",
		LogFormat: "auto",
	}
}

// toMap flattens the config into viper keys.
func (c *Config) toMap() map[string]interface{} {
	return map[string]interface{}{
		"history_limit":     c.HistoryLimit,
		"launch_at_login":   c.LaunchAtLogin,
		"auto_update":       c.AutoUpdate,
		"last_update_check": c.LastUpdateCheck,
		"update_repository": c.UpdateRepository,
		"poll_interval":     c.PollInterval.String(),
		"paste_delay":       c.PasteDelay.String(),
		"hotkey":            c.Hotkey,
		"overlay_dismiss":   c.OverlayDismiss,
		"log_level":         c.LogLevel,
		"log_format":        c.LogFormat,
	}
}

// NewViper returns a viper instance preloaded with defaults and BUFFERLY_*
// environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	for k, val := range Default().toMap() {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("BUFFERLY")
	v.AutomaticEnv()
	return v
}

// Load reads path into a viper instance seeded with defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	return LoadWith(NewViper(), path)
}

// ReadFile loads only what is written in path on top of the defaults, without
// env or flag overrides.
func ReadFile(path string) (*Config, error) {
	v := viper.New()
	for k, val := range Default().toMap() {
		v.SetDefault(k, val)
	}
	return LoadWith(v, path)
}

// LoadWith is Load with a caller-provided viper, e.g. one with CLI flags bound.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.validate()

	return config, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	for k, val := range c.toMap() {
		v.Set(k, val)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) validate() {
	d := Default()
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.HistoryLimit > MaxHistoryLimit {
		c.HistoryLimit = MaxHistoryLimit
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.PasteDelay < 0 {
		c.PasteDelay = d.PasteDelay
	}
	if c.Hotkey == "" {
		c.Hotkey = d.Hotkey
	}
	if c.OverlayDismiss != DismissOnClick && c.OverlayDismiss != DismissOnFocus {
		c.OverlayDismiss = d.OverlayDismiss
	}
	if c.UpdateRepository == "" {
		c.UpdateRepository = d.UpdateRepository
	}
}

// LastUpdateCheckTime converts the stored unix timestamp.
func (c *Config) LastUpdateCheckTime() time.Time {
	if c.LastUpdateCheck == 0 {
		return time.Time{}
	}
	return time.Unix(c.LastUpdateCheck, 0)
}

// DataDir returns the per-user directory holding config and history,
// creating it if needed.
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "Bufferly")
	return dir, os.MkdirAll(dir, 0o755)
}

// Store guards a Config shared between the UI, the saver and the updater,
// persisting it on every Update. cfg is the effective config, env and flag
// overrides included; stored mirrors config.json and is the only copy
// written back.
type Store struct {
	mu     sync.RWMutex
	cfg    Config
	stored Config
	path   string
}

func NewStore(cfg *Config, path string) *Store {
	s := &Store{cfg: *cfg, stored: *cfg, path: path}
	if path == "" {
		return s
	}
	if file, err := ReadFile(path); err == nil {
		s.stored = *file
	}
	return s
}

// Get returns a copy of the current config.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies fn to the effective and the stored config and saves the
// stored one. The in-memory copy is updated even if saving fails. Saves are
// serialised with the update that produced them.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, stored := s.cfg, s.stored
	fn(&next)
	fn(&stored)
	next.validate()
	stored.validate()
	s.cfg, s.stored = next, stored

	if s.path == "" {
		return nil
	}
	return stored.Save(s.path)
}

func (s *Store) HistoryLimit() int {
	return s.Get().HistoryLimit
}

func (s *Store) AutoUpdate() bool {
	return s.Get().AutoUpdate
}

func (s *Store) LastUpdateCheck() time.Time {
	cfg := s.Get()
	return cfg.LastUpdateCheckTime()
}

func (s *Store) SetLastUpdateCheck(t time.Time) error {
	return s.Update(func(c *Config) { c.LastUpdateCheck = t.Unix() })
}
