// Package engine moves address book data in and out of the standard formats:
// it imports persons from vCard sources and renders the iCalendar and vCard feeds.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// SourceConfig contains all parameters required to read a vCard source.
type SourceConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Absolute path to the .vcf file
	WebURL    string // CardDAV or WebDAV URL
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// Importer reads vCard sources into batches of entries.
type Importer struct {
	Fetcher VCardFetcher // Interface for network abstraction.
}

// Load reads and decodes the configured source. It never touches a book, so it
// is safe to call from a background goroutine.
func (im *Importer) Load(ctx context.Context, cfg SourceConfig) (*Batch, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgImportStarted)

	reader, err := im.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, total, err := decode(ctx, reader)
	if err != nil {
		return nil, err
	}

	log.Info(config.MsgParseSuccess,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, total),
			slog.Int(config.LogKeyPersons, len(batch.Persons)),
			slog.Int(config.LogKeyCompanies, len(batch.Companies)),
			slog.Int(config.LogKeySkipped, batch.Skipped),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return batch, nil
}

// acquireStream opens the appropriate data source based on configuration.
func (im *Importer) acquireStream(ctx context.Context, cfg SourceConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// decode reads every card of r. Malformed cards are logged and skipped so a
// single bad entry does not block the rest of the address book.
func decode(ctx context.Context, r io.Reader) (*Batch, int, error) {
	batch := &Batch{}
	decoder := vcard.NewDecoder(r)
	total := 0

	for {
		if ctx.Err() != nil {
			return nil, total, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			batch.Skipped++
			continue
		}

		total++
		if !batch.add(card) {
			slog.Debug(config.MsgSkippedNameless, config.LogKeyComponent, config.CompEngine)
		}
	}
	return batch, total, nil
}
