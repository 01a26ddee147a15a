// Package app wires the pasteboard watcher, the overlay, the hotkey and the
// updater into a tray application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"bufferly/internal/autostart"
	"bufferly/internal/clipboard"
	"bufferly/internal/config"
	"bufferly/internal/hotkey"
	"bufferly/internal/overlay"
	"bufferly/internal/paste"
	"bufferly/internal/platform"
	"bufferly/internal/ui/components"
	"bufferly/internal/update"
)

// Build-time variables (set by GoReleaser)
var (
	Version   = "0.0.0-dev" // Will be replaced by -ldflags
	BuildDate = "unknown"   // Will be replaced by -ldflags
	GitCommit = "unknown"   // Will be replaced by -ldflags
)

const (
	AppName = "Bufferly"
	AppID   = "com.bufferly.app"

	pruneInterval       = time.Hour
	updateCheckInterval = time.Hour
)

type BufferlyApp struct {
	fyneApp fyne.App
	store   *config.Store
	storage *Storage

	pasteboard *platform.Pasteboard
	monitor    *clipboard.Monitor
	registrar  *hotkey.Registrar
	presenter  *overlay.Presenter
	dispatcher *paste.Dispatcher
	updater    *update.Checker
	autostart  autostart.Autostart

	overlay        *overlayWindow
	itemList       *components.ItemList
	itemController *components.ItemListController
	settingsWindow fyne.Window
	settingsView   *components.SettingsView
	settings       *components.SettingsController

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// New builds the application around an already loaded config. Settings
// changes are written back to cfgPath; dataDir holds the history stores.
func New(cfg *config.Config, cfgPath, dataDir string) (*BufferlyApp, error) {
	fyneApp := app.NewWithID(AppID)

	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: Version,
		Build:   1,
	})

	ctx, cancel := context.WithCancel(context.Background())

	a := &BufferlyApp{
		fyneApp:    fyneApp,
		store:      config.NewStore(cfg, cfgPath),
		ctx:        ctx,
		cancelFunc: cancel,
	}

	if err := a.initialize(dataDir); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return a, nil
}

func (a *BufferlyApp) initialize(dataDir string) error {
	storage, err := OpenStorage(dataDir)
	if err != nil {
		return err
	}
	a.storage = storage

	if err := a.initServices(); err != nil {
		_ = storage.Close()
		return err
	}
	a.initUIComponents()
	a.initHotkey()
	a.initTray()
	return nil
}

func (a *BufferlyApp) initServices() error {
	cfg := a.store.Get()

	pb, err := platform.NewPasteboard()
	if err != nil {
		return err
	}
	a.pasteboard = pb

	saver := clipboard.NewSaver(a.storage.Repository, a.store.HistoryLimit)
	a.monitor = clipboard.NewMonitor(pb, saver, cfg.PollInterval)

	a.registrar = hotkey.NewRegistrar(platform.NewEventTap())

	a.overlay = newOverlayWindow(a.fyneApp, platform.Screen{}.ScreenBounds)
	policy, err := overlay.ParsePolicy(cfg.OverlayDismiss)
	if err != nil {
		policy = overlay.DismissOnClick
	}
	a.presenter = overlay.NewPresenter(a.overlay, platform.Screen{}, a.registrar, policy, fyne.Do)

	a.dispatcher = paste.NewDispatcher(pb, a.storage.Repository, platform.NewKeyboard(), a.presenter.Hide, cfg.PasteDelay)

	a.initUpdater(cfg)

	if as, err := autostart.New(); err != nil {
		slog.Warn("launch at login unavailable", "error", err)
	} else {
		a.autostart = as
	}
	return nil
}

func (a *BufferlyApp) initUpdater(cfg config.Config) {
	source, err := update.NewGitHubSource(cfg.UpdateRepository)
	if err != nil {
		slog.Warn("updates disabled", "error", err)
		return
	}

	var bundle string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		bundle, _ = update.BundlePath(exe)
	}

	a.updater = update.NewChecker(update.Options{
		CurrentVersion: Version,
		Source:         source,
		Preferences:    a.store,
		BundlePath:     bundle,
		Relaunch: func() {
			fyne.Do(a.fyneApp.Quit)
		},
		OnStatus: func(s update.Status) {
			fyne.Do(func() {
				if a.settingsView != nil {
					a.settingsView.SetUpdateStatus(s)
				}
			})
		},
	})
}

func (a *BufferlyApp) initUIComponents() {
	a.itemController = components.NewItemListController(a.storage.Repository, a.dispatcher, fyne.Do)
	a.itemController.OnError = func(err error) {
		dialog.ShowError(err, a.overlay.w)
	}
	a.itemList = components.NewItemList(a.itemController)

	w := a.overlay.w
	w.SetContent(a.itemList.Create())
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			a.presenter.Hide()
		}
	})
	a.overlay.onFocus = a.itemList.FocusSearch
	a.presenter.OnShow = a.itemList.Reset

	a.fyneApp.Lifecycle().SetOnExitedForeground(a.presenter.HandleFocusLost)

	var updater components.Updater
	if a.updater != nil {
		updater = a.updater
	}
	a.settings = components.NewSettingsController(a.store, updater)
	a.settings.OnApply = a.applySettings
}

func (a *BufferlyApp) initHotkey() {
	cfg := a.store.Get()
	combo, err := hotkey.ParseCombo(cfg.Hotkey)
	if err != nil {
		slog.Warn("invalid hotkey, using default", "hotkey", cfg.Hotkey, "error", err)
		combo, _ = hotkey.ParseCombo(config.Default().Hotkey)
	}
	a.registrar.Register(combo, a.toggleOverlay)
}

// toggleOverlay runs on the event tap goroutine.
func (a *BufferlyApp) toggleOverlay() {
	fyne.Do(a.presenter.Toggle)
}

func (a *BufferlyApp) initTray() {
	desk, ok := a.fyneApp.(desktop.App)
	if !ok {
		slog.Warn("system tray not supported by this driver")
		return
	}

	quit := fyne.NewMenuItem("Quit", a.fyneApp.Quit)
	quit.IsQuit = true

	m := fyne.NewMenu(AppName,
		fyne.NewMenuItem("Show History", a.presenter.Show),
		fyne.NewMenuItem("Settings...", a.showSettings),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear History...", a.clearAll),
		fyne.NewMenuItemSeparator(),
		quit,
	)
	desk.SetSystemTrayMenu(m)
	desk.SetSystemTrayIcon(theme.ContentPasteIcon())
}

// Run starts the background services and blocks until the app quits.
func (a *BufferlyApp) Run() {
	if err := a.monitor.Start(a.ctx); err != nil {
		slog.Error("failed to start clipboard monitor", "error", err)
	}

	go a.forwardMonitorEvents()
	go a.startCleanupRoutine()
	if a.updater != nil {
		go a.updater.AutoCheckLoop(a.ctx, updateCheckInterval)
	}

	a.syncAutostart(a.store.Get().LaunchAtLogin)

	slog.Info("started", "app", AppName, "version", Version, "commit", GitCommit, "built", BuildDate)

	a.fyneApp.Run()

	a.cleanup()
}

func (a *BufferlyApp) cleanup() {
	slog.Info("shutting down")

	a.cancelFunc()
	a.monitor.Stop()
	a.registrar.Close()
	if err := a.storage.Close(); err != nil {
		slog.Warn("failed to close storage", "error", err)
	}
	slog.Info("shutdown complete")
}

// forwardMonitorEvents refreshes the overlay when a copy lands while it is
// open.
func (a *BufferlyApp) forwardMonitorEvents() {
	events := a.monitor.EventChannel()
	for {
		select {
		case <-a.ctx.Done():
			return
		case ev := <-events:
			switch ev.Type {
			case clipboard.EventNewItem:
				if a.presenter.IsVisible() {
					a.itemController.Refresh()
				}
			case clipboard.EventError:
				slog.Debug("monitor reported an error", "error", ev.Error)
			}
		}
	}
}

// startCleanupRoutine enforces the history limit periodically; saves already
// prune, this catches a limit lowered while nothing was copied.
func (a *BufferlyApp) startCleanupRoutine() {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			if err := a.storage.Repository.Prune(a.ctx, a.store.HistoryLimit()); err != nil {
				slog.Error("cleanup failed", "error", err)
			}
		}
	}
}

// applySettings reconfigures running components after a settings change. It
// runs on the UI thread.
func (a *BufferlyApp) applySettings(prev, next config.Config) {
	if next.HistoryLimit < prev.HistoryLimit {
		go func() {
			if err := a.storage.Repository.Prune(a.ctx, next.HistoryLimit); err != nil {
				slog.Error("failed to prune history", "error", err)
			}
		}()
	}

	if next.LaunchAtLogin != prev.LaunchAtLogin {
		a.syncAutostart(next.LaunchAtLogin)
	}

	if next.Hotkey != prev.Hotkey {
		if combo, err := hotkey.ParseCombo(next.Hotkey); err == nil {
			a.registrar.Register(combo, a.toggleOverlay)
		}
	}

	if next.OverlayDismiss != prev.OverlayDismiss {
		if policy, err := overlay.ParsePolicy(next.OverlayDismiss); err == nil {
			a.presenter.SetPolicy(policy)
		}
	}

	if next.PasteDelay != prev.PasteDelay {
		a.dispatcher.SetDelay(next.PasteDelay)
	}

	if next.AutoUpdate && !prev.AutoUpdate && a.updater != nil {
		go a.updater.BackgroundAutoCheck(a.ctx)
	}
}

func (a *BufferlyApp) syncAutostart(enabled bool) {
	if a.autostart == nil {
		return
	}
	if err := autostart.Sync(a.autostart, enabled); err != nil {
		slog.Error("failed to update launch at login", "enabled", enabled, "error", err)
		if a.settingsWindow != nil {
			dialog.ShowError(fmt.Errorf("failed to update launch at login: %w", err), a.settingsWindow)
		}
	}
}

func (a *BufferlyApp) ensureSettingsWindow() fyne.Window {
	if a.settingsWindow != nil {
		return a.settingsWindow
	}

	w := a.fyneApp.NewWindow(AppName + " Settings")
	a.settingsView = components.NewSettingsView(a.settings, w)
	w.SetContent(a.settingsView.Create())
	w.Resize(fyne.NewSize(460, 420))
	w.SetCloseIntercept(w.Hide)
	if a.updater != nil {
		a.settingsView.SetUpdateStatus(a.updater.Status())
	}

	a.settingsWindow = w
	return w
}

func (a *BufferlyApp) showSettings() {
	w := a.ensureSettingsWindow()
	w.CenterOnScreen()
	w.Show()
	w.RequestFocus()
}

func (a *BufferlyApp) clearAll() {
	w := a.ensureSettingsWindow()
	w.Show()

	dialog.ShowConfirm("Clear History", "Are you sure you want to clear all clipboard history? Pinned items are removed too. This action cannot be undone.",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			go func() {
				if err := a.storage.Repository.ClearAll(a.ctx); err != nil {
					fyne.Do(func() {
						dialog.ShowError(fmt.Errorf("failed to clear history: %w", err), w)
					})
					return
				}
				slog.Info("history cleared")
				a.itemController.Refresh()
			}()
		}, w)
}
