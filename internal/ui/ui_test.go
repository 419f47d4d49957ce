package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/command"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/tartampluch/go-addressbook/internal/entry"
	"github.com/tartampluch/go-addressbook/internal/server"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the engine.VCardFetcher interface using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockStore records saves instead of writing a database.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, src book.ReadOnlyAddressBook) error {
	return m.Called(ctx, src).Error(0)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockTray implements minimal system tray functionality for headless testing.
type MockTray struct {
	Menu *fyne.Menu
}

func (m *MockTray) SetSystemTrayMenu(menu *fyne.Menu) {
	m.Menu = menu
}

func (m *MockTray) SetSystemTrayIcon(icon fyne.Resource) {}
func (m *MockTray) SetSystemTrayWindow(w fyne.Window)    {}
func (m *MockTray) Run()                                 {}
func (m *MockTray) Quit()                                {}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

type testDeps struct {
	fetcher *MockFetcher
	store   *MockStore
	tray    *MockTray
}

// setupTestApp initializes a headless Fyne app with mocked dependencies and
// English messages.
func setupTestApp(t *testing.T) (*AddressBookApp, testDeps) {
	a := test.NewApp()
	t.Cleanup(a.Quit)

	deps := testDeps{fetcher: new(MockFetcher), store: new(MockStore), tray: &MockTray{}}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := NewAddressBookApp(a, ctx, book.NewModel(book.New()), deps.store, server.NewFeedServer("0"), deps.fetcher)
	app.Tray = deps.tray
	app.Clock = MockClock{CurrentTime: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)}
	app.Parser = command.Parser{Location: time.UTC}

	app.Preferences.SetString(config.PrefLanguage, "en")
	app.SetupI18n()

	return app, deps
}

func feedBody(t *testing.T, app *AddressBookApp, route string) string {
	t.Helper()
	w := httptest.NewRecorder()
	app.Server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, route, nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _ := setupTestApp(t)

	assert.Equal(t, "Settings...", app.GetMsg(config.TKeyMenuSettings))
	assert.ElementsMatch(t, []string{"en", "fr"}, app.SupportedLanguages)

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyMenuSettings))
}

func TestLocalization_MissingKey(t *testing.T) {
	app, _ := setupTestApp(t)
	assert.Equal(t, "no_such_key", app.GetMsg("no_such_key"))
}

// -----------------------------------------------------------------------------
// Command Tests
// -----------------------------------------------------------------------------

func TestExecuteCommand_AddPersistsAndPublishes(t *testing.T) {
	app, deps := setupTestApp(t)
	deps.store.On("Save", mock.Anything, mock.Anything).Return(nil)

	res, err := app.ExecuteCommand("addp n/Alice p/555 e/alice@example.com t/friend")
	require.NoError(t, err)
	assert.True(t, res.Mutated)

	assert.Equal(t, "New person added: Alice", app.Feedback())
	rows := app.views[book.KindPersons].rows
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"1. Alice", "555", "alice@example.com", "", "", "friend"}, rows[0])

	deps.store.AssertNumberOfCalls(t, "Save", 1)
	assert.Contains(t, feedBody(t, app, config.RouteContacts), "FN:Alice")
}

func TestExecuteCommand_ReadOnlyDoesNotSave(t *testing.T) {
	app, deps := setupTestApp(t)

	_, err := app.ExecuteCommand("listp")
	require.NoError(t, err)
	deps.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestExecuteCommand_LocalizedErrors(t *testing.T) {
	app, deps := setupTestApp(t)
	deps.store.On("Save", mock.Anything, mock.Anything).Return(nil)
	_, err := app.ExecuteCommand("addc n/Acme")
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		target  error
		message string
	}{
		{"Unknown", "launch rockets", command.ErrUnknownCommand, "Unknown command. Type help to see the available commands."},
		{"Duplicate", "addc n/ACME", entry.ErrDuplicateEntry, "This entry already exists in the address book."},
		{"Index", "deletec 9", command.ErrInvalidIndex, "The index is not in the displayed list."},
		{"Date", "adde n/Call d/tomorrow", command.ErrInvalidDate, "Dates must look like 2025-03-01 or 2025-03-01 14:30."},
		{"NotEdited", "editc 1", command.ErrNotEdited, "At least one field to edit must be provided."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.ExecuteCommand(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.message, app.Feedback())
		})
	}
}

func TestExecuteCommand_FormatErrorShowsUsage(t *testing.T) {
	app, _ := setupTestApp(t)

	_, err := app.ExecuteCommand("addp p/555")
	require.ErrorIs(t, err, command.ErrInvalidFormat)

	lines := strings.Split(app.Feedback(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Invalid command format.", lines[0])
	assert.Contains(t, lines[1], "n/NAME")
}

func TestExecuteCommand_SaveFailure(t *testing.T) {
	app, deps := setupTestApp(t)
	deps.store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := app.ExecuteCommand("addc n/Acme")
	require.NoError(t, err, "the change itself succeeded")
	assert.Equal(t, "The address book could not be saved. Check the logs.", app.Feedback())
	assert.True(t, app.Model.HasCompany(&entry.Company{Name: "Acme"}))
}

func TestMainWindow_FollowsCommandView(t *testing.T) {
	app, deps := setupTestApp(t)
	deps.store.On("Save", mock.Anything, mock.Anything).Return(nil)
	app.ShowMainWindow()
	require.NotNil(t, app.MainWindow)

	_, err := app.ExecuteCommand("adde n/Kickoff d/2025-07-01 10:00 c/Acme")
	require.NoError(t, err)
	assert.Equal(t, app.views[book.KindEvents].tabItem, app.tabs.Selected())
	assert.Equal(t, "1. Kickoff", app.views[book.KindEvents].rows[0][0])
	assert.Equal(t, "2025-07-01 10:00", app.views[book.KindEvents].rows[0][1])

	_, err = app.ExecuteCommand("addc n/Acme")
	require.NoError(t, err)
	assert.Equal(t, app.views[book.KindCompanies].tabItem, app.tabs.Selected())
	assert.Equal(t, "", app.cmdEntry.Text, "the command box is cleared after success")
}

func TestMainWindow_ArchivedMarker(t *testing.T) {
	app, deps := setupTestApp(t)
	deps.store.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := app.ExecuteCommand("addp n/Bob")
	require.NoError(t, err)
	_, err = app.ExecuteCommand("archivep 1")
	require.NoError(t, err)
	_, err = app.ExecuteCommand("listarchived")
	require.NoError(t, err)

	rows := app.views[book.KindPersons].rows
	require.Len(t, rows, 1)
	assert.Equal(t, "1. Bob"+config.ArchivedMarker, rows[0][0])
}

// -----------------------------------------------------------------------------
// Import Tests
// -----------------------------------------------------------------------------

const importCards = "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Imported User\r\nORG:Initech\r\nEND:VCARD\r\n"

func TestImportContacts_Success(t *testing.T) {
	app, deps := setupTestApp(t)
	app.setupTrayMenu()
	deps.store.On("Save", mock.Anything, mock.Anything).Return(nil)
	deps.fetcher.On("Fetch", mock.Anything, "http://test.local", mock.Anything, mock.Anything).
		Return(io.NopCloser(bytes.NewBufferString(importCards)), nil)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefCardDAVURL, "http://test.local")

	app.importContacts(true)

	deps.fetcher.AssertExpectations(t)
	deps.store.AssertNumberOfCalls(t, "Save", 1)
	assert.Equal(t, "Imported 1 persons and 1 companies (0 skipped)", app.Feedback())
	assert.True(t, app.Model.HasPerson(&entry.Person{Name: "Imported User"}))
	assert.True(t, app.Model.HasCompany(&entry.Company{Name: "Initech"}))
}

func TestImportContacts_Failure(t *testing.T) {
	app, deps := setupTestApp(t)
	app.setupTrayMenu()
	deps.fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefCardDAVURL, "http://test.local")

	app.importContacts(false)

	deps.fetcher.AssertExpectations(t)
	deps.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Equal(t, config.FallbackTrayError, app.TrayStatusItem.Label)
	assert.Equal(t, "Import failed. Check the source settings.", app.Feedback())
}

func TestApplyBatch_SkipsKnownPersons(t *testing.T) {
	app, deps := setupTestApp(t)
	deps.store.On("Save", mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, app.Model.AddPerson(&entry.Person{Name: "Known"}))

	app.applyBatch(&engine.Batch{
		Persons: []*entry.Person{{Name: "known"}, {Name: "New"}},
	}, false)

	assert.Equal(t, "Imported 1 persons and 0 companies (1 skipped)", app.Feedback())
	assert.Len(t, app.views[book.KindPersons].rows, 2)
}

// -----------------------------------------------------------------------------
// Tray & Feed Tests
// -----------------------------------------------------------------------------

func TestPublishFeeds_CountsTodayEvents(t *testing.T) {
	app, _ := setupTestApp(t)
	app.setupTrayMenu()

	require.NoError(t, app.Model.AddEvent(&entry.Event{Name: "Standup", Date: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}))
	require.NoError(t, app.Model.AddEvent(&entry.Event{Name: "Review", Date: time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)}))

	app.publishFeeds()

	assert.Equal(t, "1 event today", app.TrayStatusItem.Label)
	ics := feedBody(t, app, config.RouteEvents)
	assert.Contains(t, ics, "SUMMARY:Standup")
	assert.Contains(t, ics, "SUMMARY:Review")
}

func TestTrayStatusUpdate_Logic(t *testing.T) {
	app, deps := setupTestApp(t)
	app.setupTrayMenu()

	app.updateTrayStatus(-1)
	assert.Equal(t, config.FallbackTrayError, app.TrayStatusItem.Label)

	app.updateTrayStatus(0)
	assert.Equal(t, "No events today", app.TrayStatusItem.Label)

	app.updateTrayStatus(1)
	assert.Equal(t, "1 event today", app.TrayStatusItem.Label)

	app.updateTrayStatus(10)
	assert.Equal(t, "10 events today", app.TrayStatusItem.Label)

	assert.Same(t, app.Menu, deps.tray.Menu)
}

func TestRefreshTrayMenu_Language(t *testing.T) {
	app, _ := setupTestApp(t)
	app.setupTrayMenu()

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	app.RefreshTrayMenu()

	assert.Equal(t, "Importer les contacts", app.TrayImportItem.Label)
	assert.Equal(t, "Paramètres...", app.TraySettingsItem.Label)
}

// -----------------------------------------------------------------------------
// Configuration & Preferences Tests
// -----------------------------------------------------------------------------

func TestConfiguration_SourceMapping(t *testing.T) {
	app, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeLocal)
	app.Preferences.SetString(config.PrefLocalPath, "/tmp/contacts.vcf")
	app.Preferences.SetString(config.PrefCardDAVURL, "https://secure.example.com")

	cfg := app.loadSourceConfig()
	assert.Equal(t, config.SourceModeLocal, cfg.Mode)
	assert.Equal(t, "/tmp/contacts.vcf", cfg.LocalPath)
	assert.Equal(t, "https://secure.example.com", cfg.WebURL)
	assert.Empty(t, cfg.WebUser)
}

func TestConfiguration_ImportInterval(t *testing.T) {
	app, _ := setupTestApp(t)

	assert.Zero(t, app.importInterval(), "periodic import is off by default")

	app.Preferences.SetInt(config.PrefInterval, 15)
	assert.Equal(t, 15*time.Minute, app.importInterval())

	app.Preferences.SetInt(config.PrefInterval, -3)
	assert.Zero(t, app.importInterval())
}

func TestConfiguration_WorkerSignal(t *testing.T) {
	app, _ := setupTestApp(t)
	app.watchPreferences()

	signalReceived := make(chan bool)
	go func() {
		select {
		case key := <-app.configChan:
			signalReceived <- key == config.PrefInterval
		case <-time.After(500 * time.Millisecond):
			signalReceived <- false
		}
	}()

	app.Preferences.SetInt(config.PrefInterval, 120)

	assert.True(t, <-signalReceived, "Changing interval should notify background worker")
}

func TestBackgroundWorker_StopsOnCancel(t *testing.T) {
	a := test.NewApp()
	t.Cleanup(a.Quit)
	ctx, cancel := context.WithCancel(context.Background())
	app := NewAddressBookApp(a, ctx, book.NewModel(book.New()), nil, nil, nil)

	done := make(chan struct{})
	go func() {
		app.backgroundWorker()
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
