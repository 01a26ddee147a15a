// Package update checks the release feed for a newer build, downloads it and
// replaces the installed application bundle.
package update

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/creativeprojects/go-selfupdate"
)

const (
	archiveName   = "Bufferly-update.zip"
	extractedName = "Bufferly-extracted"
	checksumsName = "checksums.txt"

	// AutoCheckInterval is the minimum time between background checks.
	AutoCheckInterval = 24 * time.Hour
)

var (
	ErrNoZipAsset     = errors.New("no zip asset found in release")
	ErrNoPendingAsset = errors.New("no download URL available")
	ErrNoArchive      = errors.New("no downloaded file found")
	ErrBusy           = errors.New("an update operation is already running")
)

// Preferences is the persisted update state.
type Preferences interface {
	AutoUpdate() bool
	LastUpdateCheck() time.Time
	SetLastUpdateCheck(t time.Time) error
}

type Options struct {
	CurrentVersion string
	Source         ReleaseSource
	Preferences    Preferences
	HTTPClient     *http.Client
	Runner         Runner
	// BundlePath is the installed .app; empty disables InstallUpdate.
	BundlePath string
	TempDir    string
	TrashDir   string
	// Relaunch is called after the replacement bundle has been scheduled to
	// start, normally to quit the running app.
	Relaunch func()
	// OnStatus observes every status change. It is called from whichever
	// goroutine performs the operation.
	OnStatus func(Status)
}

type Checker struct {
	opts Options
	now  func() time.Time

	mu          sync.Mutex
	status      Status
	pending     *Release
	asset       Asset
	archivePath string
}

func NewChecker(opts Options) *Checker {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.TrashDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.TrashDir = filepath.Join(home, ".Trash")
		}
	}
	return &Checker{opts: opts, now: time.Now}
}

func (c *Checker) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Checker) CurrentVersion() string {
	return c.opts.CurrentVersion
}

func (c *Checker) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()

	if c.opts.OnStatus != nil {
		c.opts.OnStatus(s)
	}
}

func (c *Checker) fail(err error) error {
	slog.Error("update failed", "error", err)
	c.setStatus(Status{State: StateFailed, Message: sentence(err.Error())})
	return err
}

// begin moves to state unless another operation is in flight.
func (c *Checker) begin(s Status) error {
	c.mu.Lock()
	if c.status.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.status = s
	c.mu.Unlock()

	if c.opts.OnStatus != nil {
		c.opts.OnStatus(s)
	}
	return nil
}

// CheckForUpdate compares the latest stable release with the running version
// and remembers its zip asset for DownloadUpdate.
func (c *Checker) CheckForUpdate(ctx context.Context) error {
	if err := c.begin(Status{State: StateChecking}); err != nil {
		return err
	}

	releases, err := c.opts.Source.ListReleases(ctx)
	if err != nil {
		return c.fail(fmt.Errorf("failed to check for updates: %w", err))
	}

	if c.opts.Preferences != nil {
		if err := c.opts.Preferences.SetLastUpdateCheck(c.now()); err != nil {
			slog.Warn("failed to store update check time", "error", err)
		}
	}

	latest := latestStable(releases)
	if latest == nil || CompareVersions(latest.Tag, c.opts.CurrentVersion) <= 0 {
		slog.Info("no update available", "current", c.opts.CurrentVersion)
		c.setStatus(Status{State: StateNoUpdate})
		return nil
	}

	asset, ok := latest.Asset(".zip")
	if !ok {
		return c.fail(ErrNoZipAsset)
	}

	version := NormalizeVersion(latest.Tag)
	c.mu.Lock()
	c.pending = latest
	c.asset = asset
	c.mu.Unlock()

	slog.Info("update available", "current", c.opts.CurrentVersion, "latest", version, "asset", asset.Name)
	c.setStatus(Status{State: StateUpdateAvailable, Version: version})
	return nil
}

// DownloadUpdate streams the pending asset to the temp dir, reporting progress
// whenever the whole percentage changes.
func (c *Checker) DownloadUpdate(ctx context.Context) error {
	c.mu.Lock()
	release, asset := c.pending, c.asset
	c.mu.Unlock()
	if release == nil {
		return c.fail(ErrNoPendingAsset)
	}

	if err := c.begin(Status{State: StateDownloading}); err != nil {
		return err
	}

	path := filepath.Join(c.opts.TempDir, archiveName)
	_ = os.Remove(path)

	if err := c.download(ctx, asset, path); err != nil {
		_ = os.Remove(path)
		return c.fail(fmt.Errorf("download failed: %w", err))
	}

	if sums, ok := release.Asset(checksumsName); ok {
		if err := c.verify(ctx, sums, asset.Name, path); err != nil {
			_ = os.Remove(path)
			return c.fail(fmt.Errorf("download failed: %w", err))
		}
	}

	c.mu.Lock()
	c.archivePath = path
	c.mu.Unlock()

	slog.Info("update downloaded", "path", path)
	c.setStatus(Status{State: StateReadyToInstall})
	return nil
}

func (c *Checker) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp, nil
}

func (c *Checker) download(ctx context.Context, asset Asset, path string) error {
	resp, err := c.get(ctx, asset.URL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	total := int64(asset.Size)
	if total <= 0 {
		total = resp.ContentLength
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pw := &progressWriter{total: total, report: func(p float64) {
		c.setStatus(Status{State: StateDownloading, Progress: p})
	}}
	if _, err := io.Copy(f, io.TeeReader(resp.Body, pw)); err != nil {
		return err
	}
	return f.Close()
}

func (c *Checker) verify(ctx context.Context, sums Asset, name, path string) error {
	resp, err := c.get(ctx, sums.URL)
	if err != nil {
		return fmt.Errorf("fetch checksums: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return fmt.Errorf("fetch checksums: %w", err)
	}
	archive, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	validator := &selfupdate.ChecksumValidator{UniqueFilename: checksumsName}
	if err := validator.Validate(name, archive, buf.Bytes()); err != nil {
		return fmt.Errorf("checksum mismatch: %w", err)
	}
	return nil
}

// BackgroundAutoCheck checks at most once per AutoCheckInterval when
// auto-update is enabled, and downloads an available update right away.
func (c *Checker) BackgroundAutoCheck(ctx context.Context) {
	prefs := c.opts.Preferences
	if prefs == nil || !prefs.AutoUpdate() {
		return
	}
	if since := c.now().Sub(prefs.LastUpdateCheck()); since < AutoCheckInterval {
		slog.Debug("skipping update check", "since_last", since.Round(time.Minute))
		return
	}

	if err := c.CheckForUpdate(ctx); err != nil {
		return
	}
	if c.Status().State == StateUpdateAvailable {
		_ = c.DownloadUpdate(ctx)
	}
}

type progressWriter struct {
	total   int64
	written int64
	percent int
	report  func(float64)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if w.total <= 0 {
		return len(p), nil
	}
	progress := float64(w.written) / float64(w.total)
	if progress > 1 {
		progress = 1
	}
	if pct := int(progress * 100); pct != w.percent {
		w.percent = pct
		w.report(progress)
	}
	return len(p), nil
}

// sentence upper-cases the first letter of an error message for display.
func sentence(msg string) string {
	r, n := utf8.DecodeRuneInString(msg)
	if n == 0 {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[n:]
}
