package components

import (
	"fmt"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"bufferly/internal/config"
	"bufferly/internal/hotkey"
	"bufferly/internal/update"
)

const (
	repositoryURL = "https://github.com/thehaipe/Bufferly"
	issuesURL     = "https://github.com/thehaipe/Bufferly/issues"
)

var dismissOptions = []struct{ label, policy string }{
	{"Click outside the popup", config.DismissOnClick},
	{"Switch to another app", config.DismissOnFocus},
}

// SettingsView builds the General, Keybinding and About tabs.
type SettingsView struct {
	controller *SettingsController
	parent     fyne.Window

	updateLabel    *widget.Label
	updateProgress *widget.ProgressBar
	updateButton   *widget.Button
	keycaps        *fyne.Container

	launchCheck     *widget.Check
	autoUpdateCheck *widget.Check
	limitLabel      *widget.Label
	limitWarning    *widget.Label
	limitSlider     *widget.Slider
	dismissRadio    *widget.RadioGroup
	hotkeyEntry     *widget.Entry
}

func NewSettingsView(controller *SettingsController, parent fyne.Window) *SettingsView {
	return &SettingsView{
		controller:     controller,
		parent:         parent,
		updateLabel:    widget.NewLabel(""),
		updateProgress: widget.NewProgressBar(),
		updateButton:   widget.NewButton("", nil),
		keycaps:        container.NewHBox(),
	}
}

func (sv *SettingsView) Create() fyne.CanvasObject {
	cfg := sv.controller.Config()

	tabs := container.NewAppTabs(
		sv.createGeneralTab(),
		sv.createKeybindingTab(),
		sv.createAboutTab(),
	)
	sv.showConfig(cfg)
	sv.SetUpdateStatus(update.Status{})
	return tabs
}

// showConfig puts cfg into the widgets without firing their change handlers.
func (sv *SettingsView) showConfig(cfg config.Config) {
	sv.launchCheck.Checked = cfg.LaunchAtLogin
	sv.launchCheck.Refresh()
	sv.autoUpdateCheck.Checked = cfg.AutoUpdate
	sv.autoUpdateCheck.Refresh()

	limit := SnapHistoryLimit(float64(cfg.HistoryLimit))
	sv.limitSlider.Value = float64(limit)
	sv.limitSlider.Refresh()
	sv.showLimit(limit)

	sv.dismissRadio.Selected = ""
	for _, o := range dismissOptions {
		if o.policy == cfg.OverlayDismiss {
			sv.dismissRadio.Selected = o.label
		}
	}
	sv.dismissRadio.Refresh()

	sv.hotkeyEntry.SetText(cfg.Hotkey)
	if combo, err := hotkey.ParseCombo(cfg.Hotkey); err == nil {
		sv.setKeycaps(combo)
	}
}

func (sv *SettingsView) showLimit(limit int) {
	sv.limitLabel.SetText(fmt.Sprintf("%d items", limit))
	if LimitWarning(limit) {
		sv.limitWarning.Show()
	} else {
		sv.limitWarning.Hide()
	}
}

func (sv *SettingsView) createGeneralTab() *container.TabItem {
	sv.launchCheck = widget.NewCheck("Launch at login", func(on bool) {
		sv.showError(sv.controller.SetLaunchAtLogin(on))
	})
	sv.autoUpdateCheck = widget.NewCheck("Check for updates automatically", func(on bool) {
		sv.showError(sv.controller.SetAutoUpdate(on))
	})

	sv.updateLabel.Wrapping = fyne.TextWrapWord
	sv.updateButton.Importance = widget.HighImportance
	updateRow := container.NewBorder(nil, sv.updateProgress, nil, sv.updateButton, sv.updateLabel)

	sv.limitLabel = widget.NewLabel("")
	sv.limitWarning = widget.NewLabel("⚠️ Higher limits may impact performance.")
	sv.limitWarning.TextStyle = fyne.TextStyle{Italic: true}

	sv.limitSlider = widget.NewSlider(config.SliderMinLimit, config.SliderMaxLimit)
	sv.limitSlider.Step = config.SliderLimitStep
	sv.limitSlider.OnChanged = func(v float64) {
		sv.showLimit(SnapHistoryLimit(v))
	}
	sv.limitSlider.OnChangeEnded = func(v float64) {
		_, err := sv.controller.SetHistoryLimit(v)
		sv.showError(err)
	}

	labels := make([]string, 0, len(dismissOptions))
	for _, o := range dismissOptions {
		labels = append(labels, o.label)
	}
	sv.dismissRadio = widget.NewRadioGroup(labels, func(label string) {
		for _, o := range dismissOptions {
			if o.label == label {
				sv.showError(sv.controller.SetOverlayDismiss(o.policy))
			}
		}
	})
	sv.dismissRadio.Required = true

	form := container.NewVBox(
		sv.launchCheck,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Updates", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sv.autoUpdateCheck,
		updateRow,
		widget.NewSeparator(),
		container.NewBorder(nil, nil, widget.NewLabel("History Limit"), sv.limitLabel),
		sv.limitSlider,
		sv.limitWarning,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Hide the popup when I", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sv.dismissRadio,
	)
	return container.NewTabItemWithIcon("General", theme.SettingsIcon(), container.NewVScroll(form))
}

func (sv *SettingsView) createKeybindingTab() *container.TabItem {
	sv.hotkeyEntry = widget.NewEntry()
	sv.hotkeyEntry.SetPlaceHolder("ctrl+shift+v")
	sv.hotkeyEntry.Validator = func(s string) error {
		_, err := hotkey.ParseCombo(s)
		return err
	}

	apply := widget.NewButton("Apply", func() {
		combo, err := sv.controller.SetHotkey(sv.hotkeyEntry.Text)
		if err != nil {
			sv.showError(err)
			return
		}
		sv.hotkeyEntry.SetText(combo.String())
		sv.setKeycaps(combo)
	})

	hint := widget.NewLabel("Use this shortcut to summon Bufferly anywhere.")
	hint.Wrapping = fyne.TextWrapWord

	return container.NewTabItemWithIcon("Keybinding", theme.ComputerIcon(), container.NewVBox(
		widget.NewLabelWithStyle("Global Shortcut", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sv.keycaps,
		hint,
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, apply, sv.hotkeyEntry),
	))
}

func (sv *SettingsView) setKeycaps(combo hotkey.Combo) {
	sv.keycaps.RemoveAll()
	for _, sym := range combo.Symbols() {
		sv.keycaps.Add(keycap(sym))
	}
	sv.keycaps.Refresh()
}

func keycap(symbol string) fyne.CanvasObject {
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground))
	bg.CornerRadius = 6
	bg.StrokeColor = theme.Color(theme.ColorNameInputBorder)
	bg.StrokeWidth = 1
	bg.SetMinSize(fyne.NewSquareSize(32))
	return container.NewStack(bg, container.NewCenter(
		widget.NewLabelWithStyle(symbol, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
	))
}

func (sv *SettingsView) createAboutTab() *container.TabItem {
	version := sv.controller.Version()
	if version == "" {
		version = "dev"
	}

	links := container.NewVBox()
	for _, l := range []struct{ text, raw string }{
		{"GitHub Repository", repositoryURL},
		{"Report a Bug or Request a Feature", issuesURL},
	} {
		if u, err := url.Parse(l.raw); err == nil {
			links.Add(widget.NewHyperlink(l.text, u))
		}
	}

	reset := widget.NewButton("Reset to Defaults", func() {
		dialog.ShowConfirm("Reset Settings",
			"Are you sure you want to reset all settings to their default values?",
			func(confirmed bool) {
				if confirmed {
					sv.resetSettings()
				}
			}, sv.parent)
	})
	reset.Importance = widget.LowImportance

	return container.NewTabItemWithIcon("About", theme.InfoIcon(), container.NewVBox(
		widget.NewLabelWithStyle("Bufferly", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Version "+version),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Links", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		links,
		layout.NewSpacer(),
		reset,
	))
}

func (sv *SettingsView) resetSettings() {
	if err := sv.controller.ResetSettings(); err != nil {
		sv.showError(err)
		return
	}
	sv.showConfig(sv.controller.Config())
}

// SetUpdateStatus renders s; it must be called on the UI thread.
func (sv *SettingsView) SetUpdateStatus(s update.Status) {
	sv.updateLabel.SetText(s.Text())

	if s.State == update.StateDownloading {
		sv.updateProgress.SetValue(s.Progress)
		sv.updateProgress.Show()
	} else {
		sv.updateProgress.Hide()
	}

	action, ok := sv.controller.UpdateAction(s)
	if !ok {
		sv.updateButton.Hide()
		return
	}
	sv.updateButton.SetText(action.Label)
	sv.updateButton.OnTapped = action.Run
	sv.updateButton.Show()
}

func (sv *SettingsView) showError(err error) {
	if err != nil && sv.parent != nil {
		dialog.ShowError(err, sv.parent)
	}
}
