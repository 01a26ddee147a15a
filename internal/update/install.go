package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var ErrNotBundled = errors.New("not running from an application bundle")

// Runner executes external tools.
type Runner interface {
	// Run waits for the command to exit.
	Run(ctx context.Context, name string, args ...string) error
	// Start launches a detached command.
	Start(name string, args ...string) error
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (ExecRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Process.Release()
}

// BundlePath returns the enclosing .app of an executable inside
// Foo.app/Contents/MacOS.
func BundlePath(exe string) (string, bool) {
	dir := filepath.Dir(exe)
	if filepath.Base(dir) != "MacOS" {
		return "", false
	}
	contents := filepath.Dir(dir)
	if filepath.Base(contents) != "Contents" {
		return "", false
	}
	bundle := filepath.Dir(contents)
	if filepath.Ext(bundle) != ".app" {
		return "", false
	}
	return bundle, true
}

// InstallUpdate extracts the downloaded archive, moves the installed bundle
// to the Trash, copies the new bundle into its place, strips the quarantine
// attribute and relaunches. A failure part-way leaves whatever was done so
// far; the old bundle stays in the Trash.
func (c *Checker) InstallUpdate(ctx context.Context) error {
	c.mu.Lock()
	archive := c.archivePath
	c.mu.Unlock()
	if archive == "" {
		return c.fail(ErrNoArchive)
	}
	if c.opts.BundlePath == "" {
		return c.fail(ErrNotBundled)
	}

	if err := c.begin(Status{State: StateInstalling}); err != nil {
		return err
	}

	extracted := filepath.Join(c.opts.TempDir, extractedName)
	_ = os.RemoveAll(extracted)
	if err := os.MkdirAll(extracted, 0o755); err != nil {
		return c.fail(fmt.Errorf("install failed: %w", err))
	}

	if err := c.opts.Runner.Run(ctx, "/usr/bin/ditto", "-xk", archive, extracted); err != nil {
		return c.fail(fmt.Errorf("failed to extract update: %w", err))
	}

	newApp, err := findApp(extracted)
	if err != nil {
		return c.fail(err)
	}

	dest := c.opts.BundlePath
	trashed, err := c.trash(dest)
	if err != nil {
		return c.fail(fmt.Errorf("install failed: %w", err))
	}
	slog.Info("moved installed bundle to trash", "path", trashed)

	if err := c.opts.Runner.Run(ctx, "/usr/bin/ditto", newApp, dest); err != nil {
		return c.fail(fmt.Errorf("install failed: %w", err))
	}
	if err := c.opts.Runner.Run(ctx, "/usr/bin/xattr", "-cr", dest); err != nil {
		slog.Warn("failed to clear quarantine attribute", "path", dest, "error", err)
	}

	_ = os.Remove(archive)
	_ = os.RemoveAll(extracted)
	c.mu.Lock()
	c.archivePath = ""
	c.mu.Unlock()

	if err := c.opts.Runner.Start("/bin/sh", "-c", fmt.Sprintf("sleep 1 && open %q", dest)); err != nil {
		return c.fail(fmt.Errorf("install failed: %w", err))
	}
	slog.Info("update installed, relaunching", "bundle", dest)

	if c.opts.Relaunch != nil {
		c.opts.Relaunch()
	}
	return nil
}

func findApp(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("install failed: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && filepath.Ext(e.Name()) == ".app" {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", errors.New("no .app found in archive")
}

// trash moves path into the Trash directory, renaming on collision the way
// Finder does.
func (c *Checker) trash(path string) (string, error) {
	if c.opts.TrashDir == "" {
		return "", errors.New("trash directory unknown")
	}
	if err := os.MkdirAll(c.opts.TrashDir, 0o700); err != nil {
		return "", err
	}

	base := filepath.Base(path)
	target := filepath.Join(c.opts.TrashDir, base)
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(base)
		stamp := c.now().Format("15-04-05")
		target = filepath.Join(c.opts.TrashDir, strings.TrimSuffix(base, ext)+" "+stamp+ext)
	}
	if err := os.Rename(path, target); err != nil {
		return "", err
	}
	return target, nil
}

// AutoCheckLoop runs BackgroundAutoCheck now and then every interval until
// ctx is done.
func (c *Checker) AutoCheckLoop(ctx context.Context, interval time.Duration) {
	c.BackgroundAutoCheck(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.BackgroundAutoCheck(ctx)
		}
	}
}
