// Package storage persists the address book as a snapshot in a local SQLite
// file and reads the optional YAML seed used on first run.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/entry"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Snapshot is a plain copy of the three lists. It implements
// book.ReadOnlyAddressBook so it can be handed to ResetData.
type Snapshot struct {
	PersonEntries  []*entry.Person  `json:"persons" yaml:"persons"`
	CompanyEntries []*entry.Company `json:"companies" yaml:"companies"`
	EventEntries   []*entry.Event   `json:"events" yaml:"events"`
}

// Persons returns the stored persons, or nil on a nil snapshot.
func (s *Snapshot) Persons() []*entry.Person {
	if s == nil {
		return nil
	}
	return s.PersonEntries
}

func (s *Snapshot) Companies() []*entry.Company {
	if s == nil {
		return nil
	}
	return s.CompanyEntries
}

func (s *Snapshot) Events() []*entry.Event {
	if s == nil {
		return nil
	}
	return s.EventEntries
}

// Capture copies the current content of src.
func Capture(src book.ReadOnlyAddressBook) *Snapshot {
	return &Snapshot{
		PersonEntries:  src.Persons(),
		CompanyEntries: src.Companies(),
		EventEntries:   src.Events(),
	}
}

// Store keeps one row per list in a single table, each holding the list as JSON.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var buckets = []string{config.BucketPersons, config.BucketCompanies, config.BucketEvents}

// Open creates the data file and its directory when missing.
func Open(path string) (*Store, error) {
	if path == "" {
		path = config.DataFileName
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	db, err := sql.Open(config.SQLiteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrStoreSchema, err)
	}
	return &Store{db: db, path: path}, nil
}

// Load reads the last saved snapshot. The boolean is false when nothing was
// ever saved, which callers use to decide whether to apply a seed.
func (s *Store) Load(ctx context.Context) (*Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", config.ErrStoreLoad, err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := &Snapshot{}
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, false, fmt.Errorf("%s: %w", config.ErrStoreLoad, err)
		}
		found = true

		var target any
		switch bucket {
		case config.BucketPersons:
			target = &snapshot.PersonEntries
		case config.BucketCompanies:
			target = &snapshot.CompanyEntries
		case config.BucketEvents:
			target = &snapshot.EventEntries
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return nil, false, fmt.Errorf("%s: %s: %w", config.ErrStoreDecode, bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", config.ErrStoreLoad, err)
	}

	if found {
		slog.Info(config.MsgBookLoaded,
			config.LogKeyComponent, config.CompStorage,
			config.LogKeyPersons, len(snapshot.PersonEntries),
			config.LogKeyCompanies, len(snapshot.CompanyEntries),
			config.LogKeyEvents, len(snapshot.EventEntries))
	}
	return snapshot, found, nil
}

// Save replaces the stored snapshot with the content of src in one transaction.
func (s *Store) Save(ctx context.Context, src book.ReadOnlyAddressBook) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Capture(src)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreSave, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case config.BucketPersons:
			data, err = json.Marshal(nonNil(snapshot.PersonEntries))
		case config.BucketCompanies:
			data, err = json.Marshal(nonNil(snapshot.CompanyEntries))
		case config.BucketEvents:
			data, err = json.Marshal(nonNil(snapshot.EventEntries))
		}
		if err != nil {
			return fmt.Errorf("%s: %s: %w", config.ErrStoreSave, bucket, err)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("%s: %s: %w", config.ErrStoreSave, bucket, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreSave, err)
	}

	slog.Debug(config.MsgBookSaved,
		config.LogKeyComponent, config.CompStorage,
		config.LogKeyPath, s.path)
	return nil
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// LoadSeed reads a YAML file with persons, companies and events lists.
func LoadSeed(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSeedLoad, err)
	}
	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSeedLoad, err)
	}
	return &snapshot, nil
}
