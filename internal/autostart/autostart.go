// Package autostart registers the application to start at login.
package autostart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	label   = "com.bufferly.app"
	appName = "Bufferly"
)

var ErrUnsupported = errors.New("launch at login is not supported on this platform")

type Autostart interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// Sync makes the login item match enabled.
func Sync(a Autostart, enabled bool) error {
	switch {
	case enabled && !a.IsEnabled():
		return a.Enable()
	case !enabled && a.IsEnabled():
		return a.Disable()
	}
	return nil
}

// fileEntry is a login item backed by a single file, which is how both
// LaunchAgents and XDG autostart work.
type fileEntry struct {
	path   string
	render func() string
}

func (e *fileEntry) IsEnabled() bool {
	_, err := os.Stat(e.path)
	return err == nil
}

func (e *fileEntry) Enable() error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(e.path), err)
	}
	return os.WriteFile(e.path, []byte(e.render()), 0o644)
}

func (e *fileEntry) Disable() error {
	if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// appPath returns the .app bundle containing exe, or exe itself.
func appPath(exe string) string {
	if idx := strings.Index(exe, ".app/"); idx != -1 {
		return exe[:idx+4]
	}
	return exe
}

// LaunchAgentPlist renders a LaunchAgent that starts target at login. Bundles
// are started through open(1) so LaunchServices handles them.
func LaunchAgentPlist(target string) string {
	args := fmt.Sprintf("        <string>%s</string>\n", xmlEscape(target))
	if strings.HasSuffix(target, ".app") {
		args = "        <string>/usr/bin/open</string>\n" +
			"        <string>-a</string>\n" + args
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>` + label + `</string>
    <key>ProgramArguments</key>
    <array>
` + args + `    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`
}

func DesktopEntry(exe string) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Clipboard history
Exec=%s
Icon=edit-paste
Terminal=false
Categories=Utility;
X-GNOME-Autostart-enabled=true
`, appName, desktopQuote(exe))
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func desktopQuote(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
