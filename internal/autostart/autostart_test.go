package autostart

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLaunchAgentPlist(t *testing.T) {
	bundle := LaunchAgentPlist("/Applications/Bufferly.app")
	for _, want := range []string{
		"<string>com.bufferly.app</string>",
		"<string>/usr/bin/open</string>",
		"<string>/Applications/Bufferly.app</string>",
		"<key>RunAtLoad</key>\n    <true/>",
	} {
		if !strings.Contains(bundle, want) {
			t.Errorf("plist missing %q:\n%s", want, bundle)
		}
	}

	binary := LaunchAgentPlist("/usr/local/bin/bufferly")
	if strings.Contains(binary, "/usr/bin/open") {
		t.Error("plain binaries should be started directly")
	}
	if !strings.Contains(binary, "<string>/usr/local/bin/bufferly</string>") {
		t.Errorf("plist missing binary path:\n%s", binary)
	}
}

func TestDesktopEntry(t *testing.T) {
	entry := DesktopEntry("/opt/my apps/bufferly")
	if !strings.Contains(entry, `Exec="/opt/my apps/bufferly"`) {
		t.Errorf("exec line not quoted:\n%s", entry)
	}
	if !strings.HasPrefix(entry, "[Desktop Entry]\n") {
		t.Error("missing group header")
	}
}

func TestAppPath(t *testing.T) {
	if got := appPath("/Applications/Bufferly.app/Contents/MacOS/bufferly"); got != "/Applications/Bufferly.app" {
		t.Errorf("appPath = %q", got)
	}
	if got := appPath("/usr/bin/bufferly"); got != "/usr/bin/bufferly" {
		t.Errorf("appPath = %q", got)
	}
}

func TestSync(t *testing.T) {
	e := &fileEntry{
		path:   filepath.Join(t.TempDir(), "LaunchAgents", label+".plist"),
		render: func() string { return "entry" },
	}

	if err := Sync(e, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !e.IsEnabled() {
		t.Fatal("entry should exist after enabling")
	}
	if err := Sync(e, true); err != nil {
		t.Fatalf("enable twice: %v", err)
	}

	if err := Sync(e, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if e.IsEnabled() {
		t.Fatal("entry should be gone after disabling")
	}
	if err := e.Disable(); err != nil {
		t.Errorf("disabling a missing entry should succeed: %v", err)
	}
}
