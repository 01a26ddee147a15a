//go:build darwin

package autostart

import (
	"os"
	"path/filepath"
)

// New returns a LaunchAgent in ~/Library/LaunchAgents.
func New() (Autostart, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	target := appPath(exe)
	return &fileEntry{
		path:   filepath.Join(home, "Library", "LaunchAgents", label+".plist"),
		render: func() string { return LaunchAgentPlist(target) },
	}, nil
}
