package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-AddressBook/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go AddressBook"
	AppID             = "com.github.tartampluch.go-addressbook"
	KeyringService    = "com.github.tartampluch.go-addressbook"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DataFileName      = "addressbook.db"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating the cache and data directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagData         = "data"
	FlagSeed         = "seed"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescData     = "Path of the SQLite data file (defaults to the user config dir)"
	FlagDescSeed     = "YAML file used to populate an empty address book"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 600

	// Preference Keys
	PrefCardDAVURL      = "carddav_url"
	PrefUsername        = "username"
	PrefLanguage        = "language"
	PrefInterval        = "import_interval_min"
	PrefServerPort      = "server_port"
	PrefSourceMode      = "source_mode"
	PrefLocalPath       = "local_path"
	PrefReminderEnabled = "reminder_enabled"
	PrefReminderValue   = "reminder_value"
	PrefReminderUnit    = "reminder_unit"
	PrefReminderDir     = "reminder_direction"
	PrefLastRun         = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// UI Main Window Constants
// -----------------------------------------------------------------------------

const (
	// Window Dimensions
	MainWinWidth  = 900
	MainWinHeight = 560

	// Column widths
	ColWidthName    = 200
	ColWidthDefault = 150
	ColWidthTags    = 120

	// Display Formats & Placeholders
	DateFormatDisplay = "2006-01-02 15:04"
	TablePlaceholder  = "Cell Content"
	TagSeparator      = ", "
	ArchivedMarker    = " [archived]"
	LogMsgOpenWin     = "Opening main window"
	LogMsgCommand     = "Command executed"
	LogMsgCmdFailed   = "Command failed"
	LogMsgViewChanged = "Displayed list changed"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinMain        = "win_main_title"
	TKeyMenuOpen       = "menu_open"
	TKeyMenuImport     = "menu_import"
	TKeyMenuSettings   = "menu_settings"
	TKeyTrayStatus     = "tray_status"      // Requires Count > 0
	TKeyTrayStatusZero = "tray_status_zero" // Explicit key for 0
	TKeyNotifStart     = "notif_import_start"
	TKeyNotifSuccess   = "notif_import_success"
	TKeyNotifError     = "notif_err_import"
	TKeyModeCardDAV    = "mode_carddav"
	TKeyModeLocal      = "mode_local"
	TKeyLblLanguage    = "lbl_language"
	TKeyHelpLanguage   = "help_language"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblRefresh     = "lbl_import_interval"
	TKeyHelpInterval   = "help_interval"
	TKeyLblPort        = "lbl_server_port"
	TKeyHelpPort       = "help_port"
	TKeyLblGeneral     = "lbl_general"
	TKeyLblEnableRem   = "lbl_enable_reminders"
	TKeyUnitDays       = "unit_days"
	TKeyUnitHours      = "unit_hours"
	TKeyUnitMinutes    = "unit_minutes"
	TKeyDirBefore      = "dir_before"
	TKeyDirAfter       = "dir_after"
	TKeyLblNotif       = "lbl_notifications"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyLblFooter      = "lbl_footer"
	TKeyBtnBrowse      = "btn_browse"
	TKeyLblURL         = "lbl_url"
	TKeyHelpURL        = "help_carddav_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblSource      = "lbl_source"
	TKeyCmdPlaceholder = "cmd_placeholder"
	TKeyHelpText       = "help_text"
	TKeyHelpTitle      = "help_title"
	TKeyTabPersons     = "tab_persons"
	TKeyTabCompanies   = "tab_companies"
	TKeyTabEvents      = "tab_events"

	// Column Headers
	TKeyColName    = "col_name"
	TKeyColPhone   = "col_phone"
	TKeyColEmail   = "col_email"
	TKeyColAddress = "col_address"
	TKeyColCompany = "col_company"
	TKeyColDate    = "col_date"
	TKeyColDesc    = "col_description"
	TKeyColTags    = "col_tags"

	// Command Errors (UI)
	TKeyErrDuplicate   = "err_duplicate_entry"
	TKeyErrNotFound    = "err_entry_not_found"
	TKeyErrUnknownCmd  = "err_unknown_command"
	TKeyErrFormat      = "err_invalid_format"
	TKeyErrIndex       = "err_invalid_index"
	TKeyErrDate        = "err_invalid_date"
	TKeyErrName        = "err_invalid_name"
	TKeyErrNotEdited   = "err_not_edited"
	TKeyErrSave        = "err_save"
	TKeyErrUnexpected  = "err_unexpected"
	TKeyErrPortReq     = "err_port_required"
	TKeyErrPortNum     = "err_port_number"
	TKeyErrPortRange   = "err_port_range"
	TKeyErrNilArgument = "err_nil_argument"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	DefaultPort          = "18080"
	DefaultImportMin     = 0 // Periodic import is opt-in.
	DefaultLanguage      = "en"
	DefaultReminderValue = 1
	UIDSalt              = "go-addressbook-v1-" // Salt for deterministic UID generation
	DisabledInterval     = 0
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTimePrefix     = "T"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Command Language
// -----------------------------------------------------------------------------

const (
	CmdAddPerson      = "addp"
	CmdAddCompany     = "addc"
	CmdAddEvent       = "adde"
	CmdEditPerson     = "editp"
	CmdEditCompany    = "editc"
	CmdEditEvent      = "edite"
	CmdDeletePerson   = "deletep"
	CmdDeleteCompany  = "deletec"
	CmdDeleteEvent    = "deletee"
	CmdArchivePerson  = "archivep"
	CmdArchiveCompany = "archivec"
	CmdArchiveEvent   = "archivee"
	CmdListPersons    = "listp"
	CmdListCompanies  = "listc"
	CmdListEvents     = "liste"
	CmdListArchived   = "listarchived"
	CmdFind           = "find"
	CmdSortPersons    = "sortp"
	CmdSortCompanies  = "sortc"
	CmdSortEvents     = "sorte"
	CmdImport         = "import"
	CmdClear          = "clear"
	CmdHelp           = "help"
	CmdExit           = "exit"

	PrefixName        = "n/"
	PrefixPhone       = "p/"
	PrefixEmail       = "e/"
	PrefixAddress     = "a/"
	PrefixCompany     = "c/"
	PrefixDate        = "d/"
	PrefixDescription = "r/"
	PrefixTag         = "t/"

	SortAscending  = "asc"
	SortDescending = "desc"

	// Event date layouts accepted by the parser, most specific first.
	DateLayoutMinute = "2006-01-02 15:04"
	DateLayoutDay    = "2006-01-02"
)

// -----------------------------------------------------------------------------
// Command Feedback
// -----------------------------------------------------------------------------

const (
	MsgAddedPerson     = "New person added: %s"
	MsgAddedCompany    = "New company added: %s"
	MsgAddedEvent      = "New event added: %s"
	MsgEditedPerson    = "Edited person: %s"
	MsgEditedCompany   = "Edited company: %s"
	MsgRenamedCompany  = "Edited company: %s (%d references updated)"
	MsgEditedEvent     = "Edited event: %s"
	MsgDeletedEntry    = "Deleted: %s"
	MsgArchivedEntry   = "Archived: %s"
	MsgListedPersons   = "Listed all persons"
	MsgListedCompanies = "Listed all companies"
	MsgListedEvents    = "Listed all events"
	MsgListedArchived  = "Listed archived entries"
	MsgFound           = "%d persons, %d companies, %d events listed"
	MsgSorted          = "Sorted %s (%s)"
	MsgCleared         = "Address book has been cleared"
	MsgShowingHelp     = "Opened help"
	MsgExiting         = "Exiting address book"
	MsgImportRequested = "Importing contacts..."
	MsgImported        = "Imported %d persons and %d companies (%d skipped)"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go AddressBook//Engine//EN"
	ICalCalName   = "Address Book Events"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goaddressbook"

	// iCal Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	// vCard Fields
	VCardVersion = "4.0"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"

	// Event summary when a company is attached.
	FormatEventSummary = "%s (%s)"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Storage
// -----------------------------------------------------------------------------

const (
	BucketPersons   = "persons"
	BucketCompanies = "companies"
	BucketEvents    = "events"
	SQLiteDriver    = "sqlite"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteEvents         = "/events.ics"
	RouteContacts       = "/contacts.vcf"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextVCard       = "text/vcard; charset=utf-8"
	AcceptVCard         = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrDuplicateEntry   = "operation would result in duplicate entries"
	ErrEntryNotFound    = "entry not found"
	ErrNilArgument      = "required argument is nil"
	ErrInvalidName      = "names must not be blank"
	ErrUnknownCommand   = "unknown command"
	ErrInvalidFormat    = "invalid command format"
	ErrInvalidIndex     = "index is not in the displayed list"
	ErrInvalidDate      = "invalid date, expected YYYY-MM-DD or YYYY-MM-DD HH:MM"
	ErrNotEdited        = "at least one field to edit must be provided"
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrRequestBuild     = "failed to create request"
	ErrNetwork          = "network error during fetch"
	ErrSourceStatus     = "address book source returned unexpected status"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardEncode      = "failed to encode vCard data"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrCreateDir        = "could not create app directory"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrStoreOpen        = "failed to open data file"
	ErrStoreSchema      = "failed to prepare data schema"
	ErrStoreLoad        = "failed to load address book"
	ErrStoreSave        = "failed to save address book"
	ErrStoreDecode      = "stored address book is corrupted"
	ErrSeedLoad         = "failed to load seed file"
	ErrFeedPublish      = "failed to publish feeds"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackTrayError   = "Go AddressBook: Import Error"
	FallbackTrayDefault = "Go AddressBook (%d events today)"
	FallbackTrayLabel   = "Go AddressBook"
	FallbackName        = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are active.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	TitleImportError  = "Import Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgImportStarted   = "Import started..."
	MsgImportFailed    = "Import failed. Check logs."
	MsgImportReq       = "Import requested"
	MsgImportMerged    = "Imported contacts merged"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgWorkerIdle      = "Periodic import disabled"
	MsgUpdateInterval  = "Updating import interval"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedNameless = "Skipping vCard without a name"
	MsgParseSuccess    = "vCard parsing successful"
	MsgExportSuccess   = "Feed encoding successful"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Feed cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgBookReset       = "Address book data replaced"
	MsgCompanyCascade  = "Company references renamed"
	MsgBookLoaded      = "Address book loaded"
	MsgBookSaved       = "Address book saved"
	MsgSeedApplied     = "Seed data applied to empty address book"

	PlaceholderURL = "https://..."
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyPersons   = "persons"
	LogKeyCompanies = "companies"
	LogKeyEvents    = "events"
	LogKeySkipped   = "skipped"
	LogKeyUpdated   = "updated"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCommand   = "command"
	LogKeyView      = "view"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyPath      = "path"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompBook    = "book"
	CompCommand = "command"
	CompEngine  = "engine"
	CompStorage = "storage"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)
