package book

import (
	"slices"
	"strings"

	"github.com/tartampluch/go-addressbook/internal/entry"
)

// Predicate selects the entries shown in a displayed list.
type Predicate[T any] func(T) bool

// ShowAll keeps every entry, archived ones included.
func ShowAll[T any](T) bool { return true }

// ShowNone hides every entry.
func ShowNone[T any](T) bool { return false }

// ShowActive hides archived entries. It is the default filter.
func ShowActive[T interface{ IsArchived() bool }](e T) bool { return !e.IsArchived() }

// ShowArchived keeps archived entries only.
func ShowArchived[T interface{ IsArchived() bool }](e T) bool { return e.IsArchived() }

// NameContainsAny keeps entries whose name contains one of the keywords as a
// whole word, ignoring case.
func NameContainsAny[T interface{ DisplayName() string }](keywords []string) Predicate[T] {
	return func(e T) bool {
		words := strings.Fields(e.DisplayName())
		for _, kw := range keywords {
			for _, w := range words {
				if entry.SameName(w, kw) {
					return true
				}
			}
		}
		return false
	}
}

// SortOrder is the ordering applied to a displayed list.
type SortOrder int

const (
	// SortNone keeps insertion order.
	SortNone SortOrder = iota
	SortAscending
	SortDescending
)

func (o SortOrder) String() string {
	switch o {
	case SortAscending:
		return "ascending"
	case SortDescending:
		return "descending"
	default:
		return "none"
	}
}

// displayed is the filtered and sorted projection of one list. Ordering is
// delegated to the book's sorted getters.
type displayed[T entry.Entry[T]] struct {
	view      entry.View[T]
	sorted    func(ascending bool) []T
	predicate Predicate[T]
	order     SortOrder
}

func (d *displayed[T]) items() []T {
	var src []T
	switch d.order {
	case SortAscending:
		src = d.sorted(true)
	case SortDescending:
		src = d.sorted(false)
	default:
		src = d.view.Items()
	}
	return slices.DeleteFunc(src, func(e T) bool { return !d.predicate(e) })
}

// Model is the facade the command layer works against. It owns one
// AddressBook plus what the user currently sees of it.
type Model struct {
	book *AddressBook

	persons   displayed[*entry.Person]
	companies displayed[*entry.Company]
	events    displayed[*entry.Event]

	listeners []modelListener
	nextID    int
}

type modelListener struct {
	id int
	fn func(Kind)
}

// NewModel wraps b. Displayed lists start with archived entries hidden.
func NewModel(b *AddressBook) *Model {
	if b == nil {
		b = New()
	}
	m := &Model{
		book:      b,
		persons:   displayed[*entry.Person]{view: b.PersonList(), sorted: b.SortedPersons, predicate: ShowActive[*entry.Person]},
		companies: displayed[*entry.Company]{view: b.CompanyList(), sorted: b.SortedCompanies, predicate: ShowActive[*entry.Company]},
		events:    displayed[*entry.Event]{view: b.EventList(), sorted: b.SortedEvents, predicate: ShowActive[*entry.Event]},
	}
	b.Subscribe(func(c Change) { m.notify(c.Kind) })
	return m
}

// AddressBook returns the underlying book.
func (m *Model) AddressBook() *AddressBook { return m.book }

// Subscribe registers fn to run after the content or the filtering of a
// displayed list changes.
func (m *Model) Subscribe(fn func(Kind)) (cancel func()) {
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, modelListener{id: id, fn: fn})
	return func() {
		m.listeners = slices.DeleteFunc(m.listeners, func(l modelListener) bool { return l.id == id })
	}
}

func (m *Model) notify(kind Kind) {
	for _, l := range slices.Clone(m.listeners) {
		l.fn(kind)
	}
}

// ResetData replaces the book content with newData.
func (m *Model) ResetData(newData ReadOnlyAddressBook) error {
	return m.book.ResetData(newData)
}

//// persons

func (m *Model) HasPerson(p *entry.Person) bool               { return m.book.HasPerson(p) }
func (m *Model) AddPerson(p *entry.Person) error              { return m.book.AddPerson(p) }
func (m *Model) SetPerson(target, edited *entry.Person) error { return m.book.SetPerson(target, edited) }
func (m *Model) DeletePerson(p *entry.Person) error           { return m.book.RemovePerson(p) }
func (m *Model) ArchivePerson(p *entry.Person) error          { return m.book.ArchivePerson(p) }

// FilteredPersons returns the persons currently displayed.
func (m *Model) FilteredPersons() []*entry.Person { return m.persons.items() }

// UpdateFilteredPersonList changes which persons are displayed.
func (m *Model) UpdateFilteredPersonList(p Predicate[*entry.Person]) {
	m.persons.predicate = p
	m.notify(KindPersons)
}

// SortPersons changes the order of the displayed persons.
func (m *Model) SortPersons(order SortOrder) {
	m.persons.order = order
	m.notify(KindPersons)
}

//// companies

func (m *Model) HasCompany(c *entry.Company) bool      { return m.book.HasCompany(c) }
func (m *Model) AddCompany(c *entry.Company) error     { return m.book.AddCompany(c) }
func (m *Model) DeleteCompany(c *entry.Company) error  { return m.book.RemoveCompany(c) }
func (m *Model) ArchiveCompany(c *entry.Company) error { return m.book.ArchiveCompany(c) }

// SetCompany replaces target with edited and, when the name changed, renames
// every reference to it in the same call. It returns the number of rewritten
// references.
func (m *Model) SetCompany(target, edited *entry.Company) (int, error) {
	if err := m.book.SetCompany(target, edited); err != nil {
		return 0, err
	}
	if target.Name == edited.Name {
		return 0, nil
	}
	return m.book.UpdateCompanyNames(target.Name, edited.Name), nil
}

// FilteredCompanies returns the companies currently displayed.
func (m *Model) FilteredCompanies() []*entry.Company { return m.companies.items() }

// UpdateFilteredCompanyList changes which companies are displayed.
func (m *Model) UpdateFilteredCompanyList(p Predicate[*entry.Company]) {
	m.companies.predicate = p
	m.notify(KindCompanies)
}

// SortCompanies changes the order of the displayed companies.
func (m *Model) SortCompanies(order SortOrder) {
	m.companies.order = order
	m.notify(KindCompanies)
}

//// events

func (m *Model) HasEvent(e *entry.Event) bool               { return m.book.HasEvent(e) }
func (m *Model) AddEvent(e *entry.Event) error              { return m.book.AddEvent(e) }
func (m *Model) SetEvent(target, edited *entry.Event) error { return m.book.SetEvent(target, edited) }
func (m *Model) DeleteEvent(e *entry.Event) error           { return m.book.RemoveEvent(e) }
func (m *Model) ArchiveEvent(e *entry.Event) error          { return m.book.ArchiveEvent(e) }

// FilteredEvents returns the events currently displayed.
func (m *Model) FilteredEvents() []*entry.Event { return m.events.items() }

// UpdateFilteredEventList changes which events are displayed.
func (m *Model) UpdateFilteredEventList(p Predicate[*entry.Event]) {
	m.events.predicate = p
	m.notify(KindEvents)
}

// SortEvents changes the order of the displayed events.
func (m *Model) SortEvents(order SortOrder) {
	m.events.order = order
	m.notify(KindEvents)
}
