//go:build linux

package autostart

import (
	"os"
	"path/filepath"
)

// New returns an XDG autostart entry.
func New() (Autostart, error) {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		config = filepath.Join(home, ".config")
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &fileEntry{
		path:   filepath.Join(config, "autostart", "bufferly.desktop"),
		render: func() string { return DesktopEntry(exe) },
	}, nil
}
