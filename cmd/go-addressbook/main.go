package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/tartampluch/go-addressbook/internal/server"
	"github.com/tartampluch/go-addressbook/internal/storage"
	"github.com/tartampluch/go-addressbook/internal/ui"
)

// options carries the parsed command line.
type options struct {
	dataPath string
	seedPath string
}

// main only converts runMain's result into an exit code, so that deferred
// calls in runMain still run.
func main() {
	os.Exit(runMain())
}

func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	dataPath := flag.String(config.FlagData, "", config.FlagDescData)
	seedPath := flag.String(config.FlagSeed, "", config.FlagDescSeed)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, options{dataPath: *dataPath, seedPath: *seedPath}); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run opens the data file, wires dependencies, and blocks in the UI loop.
func run(ctx context.Context, opts options) error {
	path := opts.dataPath
	if path == "" {
		var err error
		if path, err = defaultDataPath(); err != nil {
			return err
		}
	}

	store, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ab, err := loadAddressBook(ctx, store, opts.seedPath)
	if err != nil {
		return err
	}

	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	port := a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	gui := ui.NewAddressBookApp(a, ctx, book.NewModel(ab), store, server.NewFeedServer(port), engine.NewHTTPFetcher())

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
	return nil
}

// loadAddressBook restores the saved book. On first run, the seed file (if
// any) is applied and saved right away.
func loadAddressBook(ctx context.Context, store *storage.Store, seedPath string) (*book.AddressBook, error) {
	snapshot, found, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if found || seedPath == "" {
		return book.NewFrom(snapshot)
	}

	seed, err := storage.LoadSeed(seedPath)
	if err != nil {
		return nil, err
	}
	ab, err := book.NewFrom(seed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSeedLoad, err)
	}
	if err := store.Save(ctx, ab); err != nil {
		return nil, err
	}
	slog.Info(config.MsgSeedApplied,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyPath, seedPath,
		config.LogKeyPersons, len(seed.PersonEntries),
		config.LogKeyCompanies, len(seed.CompanyEntries),
		config.LogKeyEvents, len(seed.EventEntries))
	return ab, nil
}

// defaultDataPath places the data file in the user's config directory.
func defaultDataPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrConfigDir, err)
	}
	return filepath.Join(dir, config.AppID, config.DataFileName), nil
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging sends JSON logs to stdout and, when possible, to a file in
// the user's cache directory. The file is truncated on every start.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := logFilePath(); err == nil {
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

func logFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}
