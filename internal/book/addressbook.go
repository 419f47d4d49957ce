// Package book aggregates persons, companies and events into an address book
// and exposes the filtered, sorted model the command layer works against.
package book

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/entry"
)

// Kind identifies one of the three entry lists.
type Kind int

const (
	KindPersons Kind = iota
	KindCompanies
	KindEvents
)

func (k Kind) String() string {
	switch k {
	case KindPersons:
		return config.BucketPersons
	case KindCompanies:
		return config.BucketCompanies
	case KindEvents:
		return config.BucketEvents
	default:
		return "unknown"
	}
}

// Change reports a mutation of one of the lists.
type Change struct {
	Kind Kind
	entry.Change
}

// ReadOnlyAddressBook is the snapshot shape shared by the book, the storage
// layer and anything that restores state through ResetData.
type ReadOnlyAddressBook interface {
	Persons() []*entry.Person
	Companies() []*entry.Company
	Events() []*entry.Event
}

type bookListener struct {
	id int
	fn func(Change)
}

// AddressBook owns the person, company and event lists.
// Duplicates are not allowed within a list (by IsSameEntry).
type AddressBook struct {
	persons   *entry.UniqueList[*entry.Person]
	companies *entry.UniqueList[*entry.Company]
	events    *entry.UniqueList[*entry.Event]

	listeners []bookListener
	nextID    int
}

// New returns an empty address book.
func New() *AddressBook {
	b := &AddressBook{
		persons:   entry.NewUniqueList[*entry.Person](),
		companies: entry.NewUniqueList[*entry.Company](),
		events:    entry.NewUniqueList[*entry.Event](),
	}
	b.persons.Subscribe(b.relay(KindPersons))
	b.companies.Subscribe(b.relay(KindCompanies))
	b.events.Subscribe(b.relay(KindEvents))
	return b
}

// NewFrom returns an address book holding a copy of src's lists.
func NewFrom(src ReadOnlyAddressBook) (*AddressBook, error) {
	b := New()
	if err := b.ResetData(src); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *AddressBook) relay(kind Kind) func(entry.Change) {
	return func(c entry.Change) {
		for _, l := range slices.Clone(b.listeners) {
			l.fn(Change{Kind: kind, Change: c})
		}
	}
}

// Subscribe registers fn to run synchronously after every mutation of any list.
func (b *AddressBook) Subscribe(fn func(Change)) (cancel func()) {
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, bookListener{id: id, fn: fn})
	return func() {
		b.listeners = slices.DeleteFunc(b.listeners, func(l bookListener) bool { return l.id == id })
	}
}

// requireNonNil fails with entry.ErrNilArgument when p is nil.
func requireNonNil[E any, P interface{ *E }](p P) error {
	if p == nil {
		return entry.ErrNilArgument
	}
	return nil
}

func requireNoNils[E any, P interface{ *E }](items []P) error {
	for i, p := range items {
		if p == nil {
			return fmt.Errorf("%w: element %d", entry.ErrNilArgument, i)
		}
	}
	return nil
}

//// list overwrite operations

// SetPersons replaces the person list. persons must not contain duplicates.
func (b *AddressBook) SetPersons(persons []*entry.Person) error {
	if err := requireNoNils(persons); err != nil {
		return err
	}
	return b.persons.SetEntries(persons)
}

// SetCompanies replaces the company list. companies must not contain duplicates.
func (b *AddressBook) SetCompanies(companies []*entry.Company) error {
	if err := requireNoNils(companies); err != nil {
		return err
	}
	return b.companies.SetEntries(companies)
}

// SetEvents replaces the event list. events must not contain duplicates.
func (b *AddressBook) SetEvents(events []*entry.Event) error {
	if err := requireNoNils(events); err != nil {
		return err
	}
	return b.events.SetEntries(events)
}

// ResetData replaces all three lists with the content of newData.
// Every list is validated first so a rejected source leaves the book untouched.
// A nil newData, typed or not, fails with entry.ErrNilArgument.
func (b *AddressBook) ResetData(newData ReadOnlyAddressBook) error {
	if entry.IsNil(newData) {
		return entry.ErrNilArgument
	}
	persons, companies, events := newData.Persons(), newData.Companies(), newData.Events()

	if err := validateAll(persons, companies, events); err != nil {
		return err
	}
	if err := b.SetPersons(persons); err != nil {
		return err
	}
	if err := b.SetCompanies(companies); err != nil {
		return err
	}
	if err := b.SetEvents(events); err != nil {
		return err
	}

	slog.Debug(config.MsgBookReset,
		config.LogKeyComponent, config.CompBook,
		config.LogKeyPersons, len(persons),
		config.LogKeyCompanies, len(companies),
		config.LogKeyEvents, len(events))
	return nil
}

func validateAll(persons []*entry.Person, companies []*entry.Company, events []*entry.Event) error {
	if err := requireNoNils(persons); err != nil {
		return err
	}
	if err := requireNoNils(companies); err != nil {
		return err
	}
	if err := requireNoNils(events); err != nil {
		return err
	}
	if err := entry.CheckUnique(persons); err != nil {
		return err
	}
	if err := entry.CheckUnique(companies); err != nil {
		return err
	}
	return entry.CheckUnique(events)
}

//// person-level operations

// HasPerson reports whether a person with the same identity exists.
// A nil person is never present.
func (b *AddressBook) HasPerson(p *entry.Person) bool {
	return p != nil && b.persons.Contains(p)
}

// AddPerson adds p, which must not already exist.
func (b *AddressBook) AddPerson(p *entry.Person) error {
	if err := requireNonNil(p); err != nil {
		return err
	}
	return b.persons.Add(p)
}

// SetPerson replaces target with edited. target must exist and edited must not
// share its identity with another person.
func (b *AddressBook) SetPerson(target, edited *entry.Person) error {
	if err := requireNonNil(target); err != nil {
		return err
	}
	if err := requireNonNil(edited); err != nil {
		return err
	}
	return b.persons.SetEntry(target, edited)
}

// RemovePerson removes key, which must exist.
func (b *AddressBook) RemovePerson(key *entry.Person) error {
	if err := requireNonNil(key); err != nil {
		return err
	}
	return b.persons.Remove(key)
}

// ArchivePerson marks key as archived, which must exist.
func (b *AddressBook) ArchivePerson(key *entry.Person) error {
	if err := requireNonNil(key); err != nil {
		return err
	}
	return b.persons.Archive(key)
}

//// company-level operations

// HasCompany reports whether a company with the same identity exists.
func (b *AddressBook) HasCompany(c *entry.Company) bool {
	return c != nil && b.companies.Contains(c)
}

// AddCompany adds c, which must not already exist.
func (b *AddressBook) AddCompany(c *entry.Company) error {
	if err := requireNonNil(c); err != nil {
		return err
	}
	return b.companies.Add(c)
}

// SetCompany replaces target with edited. References held by persons and
// events are not touched; see UpdateCompanyNames.
func (b *AddressBook) SetCompany(target, edited *entry.Company) error {
	if err := requireNonNil(target); err != nil {
		return err
	}
	if err := requireNonNil(edited); err != nil {
		return err
	}
	return b.companies.SetEntry(target, edited)
}

// RemoveCompany removes key, which must exist.
func (b *AddressBook) RemoveCompany(key *entry.Company) error {
	if err := requireNonNil(key); err != nil {
		return err
	}
	return b.companies.Remove(key)
}

// ArchiveCompany marks key as archived, which must exist.
func (b *AddressBook) ArchiveCompany(key *entry.Company) error {
	if err := requireNonNil(key); err != nil {
		return err
	}
	return b.companies.Archive(key)
}

//// event-level operations

// HasEvent reports whether an event with the same identity exists.
func (b *AddressBook) HasEvent(e *entry.Event) bool {
	return e != nil && b.events.Contains(e)
}

// AddEvent adds e, which must not already exist.
func (b *AddressBook) AddEvent(e *entry.Event) error {
	if err := requireNonNil(e); err != nil {
		return err
	}
	return b.events.Add(e)
}

// SetEvent replaces target with edited.
func (b *AddressBook) SetEvent(target, edited *entry.Event) error {
	if err := requireNonNil(target); err != nil {
		return err
	}
	if err := requireNonNil(edited); err != nil {
		return err
	}
	return b.events.SetEntry(target, edited)
}

// RemoveEvent removes key, which must exist.
func (b *AddressBook) RemoveEvent(key *entry.Event) error {
	if err := requireNonNil(key); err != nil {
		return err
	}
	return b.events.Remove(key)
}

// ArchiveEvent marks key as archived, which must exist.
func (b *AddressBook) ArchiveEvent(key *entry.Event) error {
	if err := requireNonNil(key); err != nil {
		return err
	}
	return b.events.Archive(key)
}

//// cross-entity operations

// UpdateCompanyNames rewrites every person and event reference to oldName so
// it reads newName. It scans both lists in full and returns the number of
// rewritten entries. There is no rollback.
func (b *AddressBook) UpdateCompanyNames(oldName, newName string) int {
	updated := b.persons.UpdateCompanyNames(oldName, newName)
	updated += b.events.UpdateCompanyNames(oldName, newName)

	slog.Debug(config.MsgCompanyCascade,
		config.LogKeyComponent, config.CompBook,
		config.LogKeyOld, oldName,
		config.LogKeyNew, newName,
		config.LogKeyUpdated, updated)
	return updated
}

//// derived views

// SortedPersons returns the persons ordered by name.
func (b *AddressBook) SortedPersons(ascending bool) []*entry.Person {
	if ascending {
		return b.persons.Sorted(entry.PersonsByName)
	}
	return b.persons.ReversedSorted(entry.PersonsByName)
}

// SortedCompanies returns the companies ordered by name.
func (b *AddressBook) SortedCompanies(ascending bool) []*entry.Company {
	if ascending {
		return b.companies.Sorted(entry.CompaniesByName)
	}
	return b.companies.ReversedSorted(entry.CompaniesByName)
}

// SortedEvents returns the events ordered by date.
func (b *AddressBook) SortedEvents(ascending bool) []*entry.Event {
	if ascending {
		return b.events.Sorted(entry.EventsByDate)
	}
	return b.events.ReversedSorted(entry.EventsByDate)
}

// PersonList returns a live read-only view of the persons.
func (b *AddressBook) PersonList() entry.View[*entry.Person] { return b.persons.View() }

// CompanyList returns a live read-only view of the companies.
func (b *AddressBook) CompanyList() entry.View[*entry.Company] { return b.companies.View() }

// EventList returns a live read-only view of the events.
func (b *AddressBook) EventList() entry.View[*entry.Event] { return b.events.View() }

// Persons returns a snapshot of the persons in insertion order, or nil on a
// nil book.
func (b *AddressBook) Persons() []*entry.Person {
	if b == nil {
		return nil
	}
	return b.persons.Items()
}

// Companies returns a snapshot of the companies in insertion order.
func (b *AddressBook) Companies() []*entry.Company {
	if b == nil {
		return nil
	}
	return b.companies.Items()
}

// Events returns a snapshot of the events in insertion order.
func (b *AddressBook) Events() []*entry.Event {
	if b == nil {
		return nil
	}
	return b.events.Items()
}

// IsEmpty reports whether all three lists are empty.
func (b *AddressBook) IsEmpty() bool {
	return b.persons.Len() == 0 && b.companies.Len() == 0 && b.events.Len() == 0
}

//// util methods

func (b *AddressBook) String() string {
	return fmt.Sprintf("%d persons, %d companies, %d events",
		b.persons.Len(), b.companies.Len(), b.events.Len())
}

// Equal reports whether both books hold equal lists.
func (b *AddressBook) Equal(other *AddressBook) bool {
	if other == nil {
		return false
	}
	if b == other {
		return true
	}
	return b.persons.Equal(other.persons) &&
		b.companies.Equal(other.companies) &&
		b.events.Equal(other.events)
}
