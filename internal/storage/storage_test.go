package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/entry"
	"github.com/tartampluch/go-addressbook/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "nested", config.DataFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleBook(t *testing.T) *book.AddressBook {
	t.Helper()
	b := book.New()
	require.NoError(t, b.AddCompany(&entry.Company{Name: "Acme", Email: "hi@acme.test", Tags: []string{"client"}}))
	require.NoError(t, b.AddPerson(&entry.Person{Name: "Bob", Phone: "123", CompanyName: "Acme"}))
	require.NoError(t, b.AddPerson(&entry.Person{Name: "Alice", Archived: true}))
	require.NoError(t, b.AddEvent(&entry.Event{Name: "Kickoff", Date: time.Date(2025, 2, 3, 9, 30, 0, 0, time.UTC), CompanyName: "Acme", Description: "Room 4"}))
	return b
}

func TestStore_LoadEmpty(t *testing.T) {
	s := openStore(t)

	snapshot, found, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found, "a fresh file has no snapshot")
	assert.Empty(t, snapshot.Persons())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	src := sampleBook(t)

	require.NoError(t, s.Save(context.Background(), src))

	snapshot, found, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	restored, err := book.NewFrom(snapshot)
	require.NoError(t, err)
	assert.True(t, src.Equal(restored), "expected %s, got %s", src, restored)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleBook(t)))
	require.NoError(t, s.Save(ctx, book.New()))

	snapshot, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found, "an emptied book is still a saved state")
	assert.Empty(t, snapshot.Persons())
	assert.Empty(t, snapshot.Companies())
	assert.Empty(t, snapshot.Events())
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DataFileName)
	ctx := context.Background()

	s, err := storage.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleBook(t)))
	require.NoError(t, s.Close())

	s, err = storage.Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	snapshot, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, snapshot.Persons(), 2)
	assert.Equal(t, path, s.Path())
}

func TestLoadSeed(t *testing.T) {
	seed := `persons:
  - name: Alice
    phone: "555"
    company: Acme
    tags: [friend]
companies:
  - name: Acme
    address: 1 Main St
events:
  - name: Kickoff
    date: 2025-02-03T09:30:00Z
    company: Acme
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), config.FilePermUserRW))

	snapshot, err := storage.LoadSeed(path)
	require.NoError(t, err)

	require.Len(t, snapshot.Persons(), 1)
	assert.Equal(t, &entry.Person{Name: "Alice", Phone: "555", CompanyName: "Acme", Tags: []string{"friend"}}, snapshot.Persons()[0])
	assert.Equal(t, "1 Main St", snapshot.Companies()[0].Address)
	assert.True(t, time.Date(2025, 2, 3, 9, 30, 0, 0, time.UTC).Equal(snapshot.Events()[0].Date))

	b, err := book.NewFrom(snapshot)
	require.NoError(t, err)
	assert.Equal(t, "1 persons, 1 companies, 1 events", b.String())
}

func TestLoadSeed_Errors(t *testing.T) {
	_, err := storage.LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSeedLoad)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("persons: [unclosed"), config.FilePermUserRW))
	_, err = storage.LoadSeed(path)
	require.Error(t, err)
}

func TestCapture(t *testing.T) {
	b := sampleBook(t)
	snapshot := storage.Capture(b)

	require.NoError(t, b.AddPerson(&entry.Person{Name: "Later"}))
	assert.Len(t, snapshot.Persons(), 2, "a capture is not affected by later changes")
}

func TestSnapshot_NilIsRejected(t *testing.T) {
	var missing *storage.Snapshot
	assert.Nil(t, missing.Persons())
	assert.Nil(t, missing.Events())

	b := sampleBook(t)
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, b.ResetData(missing), entry.ErrNilArgument)
	})
	assert.Len(t, b.Persons(), 2)

	_, err := book.NewFrom(missing)
	assert.ErrorIs(t, err, entry.ErrNilArgument)
}
