package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/zalando/go-keyring"
)

// settingsWidgets holds the form inputs read back on save.
type settingsWidgets struct {
	langSelect    *widget.Select
	modeSelect    *widget.Select
	urlEntry      *widget.Entry
	userEntry     *widget.Entry
	passEntry     *widget.Entry
	pathEntry     *widget.Entry
	entryInterval *NumericalEntry
	entryPort     *NumericalEntry
	checkReminder *widget.Check
	entryRemValue *NumericalEntry
	selectRemUnit *widget.Select
	selectRemDir  *widget.Select
}

// option pairs a stored preference value with its translation key.
type option struct {
	value string
	key   string
}

var (
	sourceOptions = []option{
		{config.SourceModeWeb, config.TKeyModeCardDAV},
		{config.SourceModeLocal, config.TKeyModeLocal},
	}
	unitOptions = []option{
		{config.UnitDays, config.TKeyUnitDays},
		{config.UnitHours, config.TKeyUnitHours},
		{config.UnitMinutes, config.TKeyUnitMinutes},
	}
	dirOptions = []option{
		{config.DirBefore, config.TKeyDirBefore},
		{config.DirAfter, config.TKeyDirAfter},
	}
)

// labels returns the localized labels of opts, in order.
func (app *AddressBookApp) labels(opts []option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = app.GetMsg(o.key)
	}
	return out
}

// labelOf maps a stored value to its label, falling back to the first option.
func (app *AddressBookApp) labelOf(opts []option, value string) string {
	for _, o := range opts {
		if o.value == value {
			return app.GetMsg(o.key)
		}
	}
	return app.GetMsg(opts[0].key)
}

// valueOf maps a selected label back to its stored value.
func (app *AddressBookApp) valueOf(opts []option, label string) string {
	for _, o := range opts {
		if app.GetMsg(o.key) == label {
			return o.value
		}
	}
	return opts[0].value
}

// ShowSettingsWindow opens the preferences dialog.
func (app *AddressBookApp) ShowSettingsWindow() {
	if app.Window != nil {
		slog.Debug("Settings window already open, requesting focus", config.LogKeyComponent, config.CompUISet)
		app.Window.RequestFocus()
		return
	}

	slog.Info("Opening settings window", config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w

	sw := app.newSettingsWidgets()

	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	sourceCard := app.buildSourceCard(w, sw, onLayoutChange)
	generalCard := app.buildGeneralCard(sw)
	notifCard := app.buildNotifCard(sw, onLayoutChange)

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw)
		w.Close()
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabel(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version))
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		sourceCard,
		generalCard,
		notifCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	refreshLayout = func() {
		content.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	}

	w.SetContent(content)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.Window = nil })

	refreshLayout()
	w.Show()
}

// newSettingsWidgets creates every input, pre-filled from preferences.
func (app *AddressBookApp) newSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.modeSelect = widget.NewSelect(app.labels(sourceOptions), nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetText(app.Preferences.String(config.PrefCardDAVURL))
	sw.urlEntry.PlaceHolder = config.PlaceholderURL

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefUsername))

	sw.passEntry = widget.NewPasswordEntry()
	if user := sw.userEntry.Text; user != "" {
		if pwd, err := keyring.Get(config.KeyringService, user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefLocalPath))

	// Empty or zero disables the periodic import.
	sw.entryInterval = NewNumericalEntry()
	sw.entryInterval.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultImportMin)))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = app.validatePort

	sw.checkReminder = widget.NewCheck(app.GetMsg(config.TKeyLblEnableRem), nil)
	sw.checkReminder.Checked = app.Preferences.Bool(config.PrefReminderEnabled)

	sw.entryRemValue = NewNumericalEntry()
	sw.entryRemValue.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefReminderValue, config.DefaultReminderValue)))

	sw.selectRemUnit = widget.NewSelect(app.labels(unitOptions), nil)
	sw.selectRemUnit.SetSelected(app.labelOf(unitOptions, app.Preferences.StringWithFallback(config.PrefReminderUnit, config.UnitDays)))

	sw.selectRemDir = widget.NewSelect(app.labels(dirOptions), nil)
	sw.selectRemDir.SetSelected(app.labelOf(dirOptions, app.Preferences.StringWithFallback(config.PrefReminderDir, config.DirBefore)))

	return sw
}

// validatePort accepts 1-65535 only.
func (app *AddressBookApp) validatePort(s string) error {
	if s == "" {
		return errors.New(app.GetMsg(config.TKeyErrPortReq))
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(app.GetMsg(config.TKeyErrPortNum))
	}
	if port < config.MinPort || port > config.MaxPort {
		return errors.New(app.GetMsg(config.TKeyErrPortRange))
	}
	return nil
}

func (app *AddressBookApp) buildGeneralCard(sw *settingsWidgets) *widget.Card {
	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	interval := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblMinutes)), sw.entryInterval)
	itemInterval := widget.NewFormItem(app.GetMsg(config.TKeyLblRefresh), interval)
	itemInterval.HintText = app.GetMsg(config.TKeyHelpInterval)

	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpPort)

	return widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", widget.NewForm(itemLang, itemInterval, itemPort))
}

// buildSourceCard shows either the CardDAV form or the local file picker.
func (app *AddressBookApp) buildSourceCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})

	itemURL := widget.NewFormItem(app.GetMsg(config.TKeyLblURL), sw.urlEntry)
	itemURL.HintText = app.GetMsg(config.TKeyHelpURL)
	webForm := widget.NewForm(
		itemURL,
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry),
	)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	applyMode := func(label string) {
		if app.valueOf(sourceOptions, label) == config.SourceModeLocal {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
	}

	sw.modeSelect.SetSelected(app.labelOf(sourceOptions, app.Preferences.String(config.PrefSourceMode)))
	applyMode(sw.modeSelect.Selected)
	sw.modeSelect.OnChanged = func(label string) {
		applyMode(label)
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}

	return widget.NewCard(app.GetMsg(config.TKeyLblSource), "", container.NewVBox(sw.modeSelect, webForm, localForm))
}

// buildNotifCard holds the reminder controls: value, unit and direction.
func (app *AddressBookApp) buildNotifCard(sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	controls := container.NewHBox(sw.selectRemUnit, sw.selectRemDir)
	row := container.NewBorder(nil, nil, nil, controls, sw.entryRemValue)

	setVisible := func(on bool) {
		if on {
			row.Show()
		} else {
			row.Hide()
		}
	}
	setVisible(sw.checkReminder.Checked)
	sw.checkReminder.OnChanged = func(on bool) {
		setVisible(on)
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}

	return widget.NewCard(app.GetMsg(config.TKeyLblNotif), "", container.NewVBox(sw.checkReminder, row))
}

// saveSettings writes the form back to preferences and the keyring, then
// applies the language and republishes the feeds.
func (app *AddressBookApp) saveSettings(sw *settingsWidgets) {
	slog.Info("Saving preferences", config.LogKeyComponent, config.CompUISet)

	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	app.Preferences.SetString(config.PrefSourceMode, app.valueOf(sourceOptions, sw.modeSelect.Selected))
	app.Preferences.SetString(config.PrefCardDAVURL, sw.urlEntry.Text)
	app.Preferences.SetString(config.PrefUsername, sw.userEntry.Text)
	app.Preferences.SetString(config.PrefLocalPath, sw.pathEntry.Text)

	if sw.userEntry.Text != "" && sw.passEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, sw.userEntry.Text, sw.passEntry.Text); err != nil {
			slog.Error("Failed to save credentials to keyring", config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		}
	}

	interval, err := strconv.Atoi(sw.entryInterval.Text)
	if err != nil || interval <= 0 {
		interval = config.DisabledInterval
		slog.Info("Periodic import disabled via settings", config.LogKeyComponent, config.CompUISet)
	}
	app.Preferences.SetInt(config.PrefInterval, interval)

	if sw.entryPort.Text != "" {
		app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)
	}

	// An empty value turns reminders off whatever the checkbox says.
	if v, err := strconv.Atoi(sw.entryRemValue.Text); err != nil {
		app.Preferences.SetBool(config.PrefReminderEnabled, false)
		slog.Info("Reminders disabled via settings (value is empty)", config.LogKeyComponent, config.CompUISet)
	} else {
		app.Preferences.SetBool(config.PrefReminderEnabled, sw.checkReminder.Checked)
		app.Preferences.SetInt(config.PrefReminderValue, v)
	}
	app.Preferences.SetString(config.PrefReminderUnit, app.valueOf(unitOptions, sw.selectRemUnit.Selected))
	app.Preferences.SetString(config.PrefReminderDir, app.valueOf(dirOptions, sw.selectRemDir.Selected))

	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	app.RefreshMainWindow()
	app.publishFeeds()
}
