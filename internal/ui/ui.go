package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/command"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/tartampluch/go-addressbook/internal/server"
	"github.com/zalando/go-keyring"
)

// Persister saves the address book after every change.
type Persister interface {
	Save(ctx context.Context, src book.ReadOnlyAddressBook) error
}

// AddressBookApp encapsulates the UI state, preferences, and background logic.
// The Model is only touched from the Fyne main goroutine.
type AddressBookApp struct {
	App         fyne.App
	MainWindow  fyne.Window
	Window      fyne.Window // settings
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Model   *book.Model
	Store   Persister
	Server  *server.FeedServer
	Fetcher engine.VCardFetcher
	Clock   engine.Clock
	Parser  command.Parser

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayOpenItem     *fyne.MenuItem
	TrayImportItem   *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan string

	// Main window state
	views    map[book.Kind]*listView
	tabs     *container.AppTabs
	feedback *widget.Label
	cmdEntry *widget.Entry
}

// NewAddressBookApp constructs the application and wires dependencies.
func NewAddressBookApp(a fyne.App, ctx context.Context, model *book.Model, store Persister, srv *server.FeedServer, fetcher engine.VCardFetcher) *AddressBookApp {
	a.SetIcon(theme.AccountIcon())

	app := &AddressBookApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Model:              model,
		Store:              store,
		Server:             srv,
		Fetcher:            fetcher,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
		feedback:           widget.NewLabel(""),
	}
	app.feedback.Wrapping = fyne.TextWrapWord
	app.views = newListViews(model)
	model.Subscribe(app.onModelChanged)
	return app
}

// Run launches the application services and the main UI loop.
func (app *AddressBookApp) Run() {
	app.SetupI18n()
	app.watchPreferences()

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyPort, app.Server.Port,
			config.LogKeyComponent, config.CompUI)

		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	app.ShowMainWindow()
	app.publishFeeds()

	go app.backgroundWorker()
	app.App.Run()
}

// watchPreferences wakes the worker whenever a setting changes.
func (app *AddressBookApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

func (app *AddressBookApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowMainWindow()
	})

	app.TrayOpenItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuOpen), func() {
		app.ShowMainWindow()
	})

	app.TrayImportItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuImport), func() {
		go app.importContacts(true)
	})

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayOpenItem,
		app.TrayImportItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *AddressBookApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayOpenItem.Label = app.GetMsg(config.TKeyMenuOpen)
	app.TrayImportItem.Label = app.GetMsg(config.TKeyMenuImport)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// importInterval returns zero when periodic import is disabled.
func (app *AddressBookApp) importInterval() time.Duration {
	val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultImportMin)
	if val <= 0 {
		return 0
	}
	return time.Duration(val) * time.Minute
}

// backgroundWorker runs the periodic import. A zero interval parks it until
// the preferences change.
func (app *AddressBookApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	var ticker *time.Ticker
	var tick <-chan time.Time
	current := time.Duration(-1)

	schedule := func() {
		next := app.importInterval()
		if next == current {
			return
		}
		log.Info(config.MsgUpdateInterval, config.LogKeyOld, current, config.LogKeyNew, next)
		current = next
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if next == 0 {
			log.Info(config.MsgWorkerIdle)
			return
		}
		ticker = time.NewTicker(next)
		tick = ticker.C
	}

	schedule()
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, current)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			schedule()

		case <-tick:
			app.importContacts(false)
		}
	}
}

// importContacts loads the configured source off the main goroutine and
// merges the result on it. It must not be called from the main goroutine.
func (app *AddressBookApp) importContacts(manual bool) {
	slog.Info(config.MsgImportReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifStart)))
	}

	im := &engine.Importer{Fetcher: app.Fetcher}
	batch, err := im.Load(app.Ctx, app.loadSourceConfig())
	if err != nil {
		slog.Error(config.MsgImportFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleImportError, app.GetMsg(config.TKeyNotifError)))
		}
		fyne.DoAndWait(func() {
			app.setFeedback(app.GetMsg(config.TKeyNotifError))
			app.updateTrayStatus(-1)
		})
		return
	}

	fyne.DoAndWait(func() { app.applyBatch(batch, manual) })
}

// applyBatch merges an imported batch into the model.
func (app *AddressBookApp) applyBatch(batch *engine.Batch, manual bool) {
	stats, err := batch.Merge(app.Model)
	if err != nil {
		slog.Error(config.MsgImportFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		app.setFeedback(app.localizeError(err))
		return
	}

	slog.Info(config.MsgImportMerged,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyPersons, stats.Persons,
		config.LogKeyCompanies, stats.Companies,
		config.LogKeySkipped, stats.Skipped)

	app.setFeedback(fmt.Sprintf(config.MsgImported, stats.Persons, stats.Companies, stats.Skipped))
	app.persist()

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifSuccess)))
	}
}

// persist saves the book and republishes both feeds.
func (app *AddressBookApp) persist() {
	if app.Store != nil {
		if err := app.Store.Save(app.Ctx, app.Model.AddressBook()); err != nil {
			slog.Error(config.ErrStoreSave, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
			app.setFeedback(app.GetMsg(config.TKeyErrSave))
		}
	}
	app.publishFeeds()
}

// publishFeeds renders the events calendar and contacts collection and hands
// them to the feed server.
func (app *AddressBookApp) publishFeeds() {
	if app.Server == nil {
		return
	}
	x := &engine.Exporter{Clock: app.Clock, ReminderTrigger: app.reminderTrigger()}
	ab := app.Model.AddressBook()

	ics, today, err := x.Calendar(ab.Events())
	if err != nil {
		slog.Error(config.ErrFeedPublish, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		app.updateTrayStatus(-1)
		return
	}
	app.Server.UpdateCalendar(ics)

	vcf, err := x.Contacts(ab.Persons())
	if err != nil {
		slog.Error(config.ErrFeedPublish, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	} else {
		app.Server.UpdateContacts(vcf)
	}

	app.updateTrayStatus(today)
}

// updateTrayStatus shows how many events happen today.
func (app *AddressBookApp) updateTrayStatus(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	var label string
	if count < 0 {
		label = config.FallbackTrayError
	} else if count == 0 {
		label = app.GetMsg(config.TKeyTrayStatusZero)
		if label == config.TKeyTrayStatusZero {
			label = fmt.Sprintf(config.FallbackTrayDefault, 0)
		}
	} else {
		if app.Localizer != nil {
			msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
				MessageID:    config.TKeyTrayStatus,
				TemplateData: map[string]interface{}{"Count": count},
				PluralCount:  count,
			})
			if err == nil {
				label = msg
			}
		}
		if label == "" {
			label = fmt.Sprintf(config.FallbackTrayDefault, count)
		}
	}

	app.TrayStatusItem.Label = label
	app.Menu.Refresh()
}

// loadSourceConfig assembles the import source from preferences and the keyring.
func (app *AddressBookApp) loadSourceConfig() engine.SourceConfig {
	cfg := engine.SourceConfig{
		Mode:      app.Preferences.String(config.PrefSourceMode),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefCardDAVURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return cfg
}

// reminderTrigger builds the ISO 8601 duration of the event alarms, or ""
// when reminders are off.
func (app *AddressBookApp) reminderTrigger() string {
	if !app.Preferences.Bool(config.PrefReminderEnabled) {
		return ""
	}
	val := app.Preferences.IntWithFallback(config.PrefReminderValue, config.DefaultReminderValue)
	unit := app.Preferences.StringWithFallback(config.PrefReminderUnit, config.UnitDays)
	dir := app.Preferences.StringWithFallback(config.PrefReminderDir, config.DirBefore)

	sign := config.ISOPeriodPrefix
	if dir == config.DirBefore {
		sign = config.ISONegativePrefix
	}

	switch unit {
	case config.UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, config.ISOTimePrefix, val, config.ISOHour)
	case config.UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, config.ISOTimePrefix, val, config.ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, val, config.ISODay)
	}
}
