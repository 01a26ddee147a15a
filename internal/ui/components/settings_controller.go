package components

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"bufferly/internal/config"
	"bufferly/internal/hotkey"
	"bufferly/internal/overlay"
	"bufferly/internal/update"
)

// LimitWarningThreshold is the history limit from which the settings window
// warns about performance.
const LimitWarningThreshold = 45

type Updater interface {
	Status() update.Status
	CurrentVersion() string
	CheckForUpdate(ctx context.Context) error
	DownloadUpdate(ctx context.Context) error
	InstallUpdate(ctx context.Context) error
}

// SettingsController persists preference changes and reports them to
// OnApply so the app can reconfigure itself.
type SettingsController struct {
	store   *config.Store
	updater Updater

	// OnApply is called after every successful change with the config before
	// and after it.
	OnApply func(prev, next config.Config)

	background func(func())
}

func NewSettingsController(store *config.Store, updater Updater) *SettingsController {
	return &SettingsController{
		store:      store,
		updater:    updater,
		background: func(f func()) { go f() },
	}
}

func (sc *SettingsController) Config() config.Config {
	return sc.store.Get()
}

func (sc *SettingsController) Version() string {
	if sc.updater == nil {
		return ""
	}
	return sc.updater.CurrentVersion()
}

// SnapHistoryLimit rounds a slider value to its step and range.
func SnapHistoryLimit(v float64) int {
	step := float64(config.SliderLimitStep)
	n := int(math.Round(v/step) * step)
	if n < config.SliderMinLimit {
		n = config.SliderMinLimit
	}
	if n > config.SliderMaxLimit {
		n = config.SliderMaxLimit
	}
	return n
}

func LimitWarning(limit int) bool {
	return limit >= LimitWarningThreshold
}

func (sc *SettingsController) SetHistoryLimit(v float64) (int, error) {
	limit := SnapHistoryLimit(v)
	return limit, sc.update(func(c *config.Config) { c.HistoryLimit = limit })
}

func (sc *SettingsController) SetLaunchAtLogin(enabled bool) error {
	return sc.update(func(c *config.Config) { c.LaunchAtLogin = enabled })
}

func (sc *SettingsController) SetAutoUpdate(enabled bool) error {
	return sc.update(func(c *config.Config) { c.AutoUpdate = enabled })
}

// SetHotkey validates and stores a combination such as "ctrl+shift+v".
func (sc *SettingsController) SetHotkey(s string) (hotkey.Combo, error) {
	combo, err := hotkey.ParseCombo(s)
	if err != nil {
		return hotkey.Combo{}, err
	}
	return combo, sc.update(func(c *config.Config) { c.Hotkey = combo.String() })
}

func (sc *SettingsController) SetOverlayDismiss(s string) error {
	policy, err := overlay.ParsePolicy(s)
	if err != nil {
		return err
	}
	return sc.update(func(c *config.Config) { c.OverlayDismiss = string(policy) })
}

// ResetSettings restores defaults but keeps the update bookkeeping.
func (sc *SettingsController) ResetSettings() error {
	return sc.update(func(c *config.Config) {
		last := c.LastUpdateCheck
		*c = *config.Default()
		c.LastUpdateCheck = last
	})
}

func (sc *SettingsController) update(fn func(*config.Config)) error {
	prev := sc.store.Get()
	if err := sc.store.Update(fn); err != nil {
		slog.Error("failed to save settings", "error", err)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	next := sc.store.Get()
	slog.Debug("settings updated", "history_limit", next.HistoryLimit, "hotkey", next.Hotkey, "overlay_dismiss", next.OverlayDismiss)
	if sc.OnApply != nil {
		sc.OnApply(prev, next)
	}
	return nil
}

// UpdateAction is the button offered next to an update status.
type UpdateAction struct {
	Label string
	Run   func()
}

// UpdateAction maps a status to the next step the user can take. Busy
// states offer none.
func (sc *SettingsController) UpdateAction(s update.Status) (UpdateAction, bool) {
	if sc.updater == nil {
		return UpdateAction{}, false
	}
	switch s.State {
	case update.StateIdle:
		return sc.action("Check for Updates", sc.updater.CheckForUpdate), true
	case update.StateNoUpdate:
		return sc.action("Check Again", sc.updater.CheckForUpdate), true
	case update.StateUpdateAvailable:
		return sc.action("Download", sc.updater.DownloadUpdate), true
	case update.StateReadyToInstall:
		return sc.action("Install & Relaunch", sc.updater.InstallUpdate), true
	case update.StateFailed:
		return sc.action("Retry", sc.updater.CheckForUpdate), true
	}
	return UpdateAction{}, false
}

func (sc *SettingsController) action(label string, fn func(context.Context) error) UpdateAction {
	return UpdateAction{
		Label: label,
		Run: func() {
			sc.background(func() {
				// Failures are reported through the update status.
				_ = fn(context.Background())
			})
		},
	}
}
