// Package command parses the text command language and runs each command
// against a book.Model.
package command

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/entry"
)

// Result tells the caller what to show after a command ran.
type Result struct {
	Feedback string
	// View is the list the UI should bring to front.
	View book.Kind
	// Mutated is set when the book content changed and needs saving.
	Mutated  bool
	ShowHelp bool
	Exit     bool
	Import   bool
}

// Command is a parsed user instruction.
type Command interface {
	Execute(m *book.Model) (Result, error)
}

// pick returns the element at a 1-based index of a displayed list.
func pick[T any](items []T, index int) (T, error) {
	var zero T
	if index < 1 || index > len(items) {
		return zero, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return items[index-1], nil
}

func logExecuted(name string, kind book.Kind) {
	slog.Debug(config.LogMsgCommand,
		config.LogKeyComponent, config.CompCommand,
		config.LogKeyCommand, name,
		config.LogKeyView, kind.String())
}

//// add

type AddPersonCommand struct{ Person *entry.Person }

func (c AddPersonCommand) Execute(m *book.Model) (Result, error) {
	if err := m.AddPerson(c.Person); err != nil {
		return Result{}, err
	}
	logExecuted(config.CmdAddPerson, book.KindPersons)
	return Result{Feedback: fmt.Sprintf(config.MsgAddedPerson, c.Person.Name), View: book.KindPersons, Mutated: true}, nil
}

type AddCompanyCommand struct{ Company *entry.Company }

func (c AddCompanyCommand) Execute(m *book.Model) (Result, error) {
	if err := m.AddCompany(c.Company); err != nil {
		return Result{}, err
	}
	logExecuted(config.CmdAddCompany, book.KindCompanies)
	return Result{Feedback: fmt.Sprintf(config.MsgAddedCompany, c.Company.Name), View: book.KindCompanies, Mutated: true}, nil
}

type AddEventCommand struct{ Event *entry.Event }

func (c AddEventCommand) Execute(m *book.Model) (Result, error) {
	if err := m.AddEvent(c.Event); err != nil {
		return Result{}, err
	}
	logExecuted(config.CmdAddEvent, book.KindEvents)
	return Result{Feedback: fmt.Sprintf(config.MsgAddedEvent, c.Event.Name), View: book.KindEvents, Mutated: true}, nil
}

//// edit

// PersonEdit lists the fields to change. Nil fields are kept.
type PersonEdit struct {
	Name, Phone, Email, Address, Company *string
	Tags                                 []string
}

func (e PersonEdit) empty() bool {
	return e.Name == nil && e.Phone == nil && e.Email == nil && e.Address == nil &&
		e.Company == nil && e.Tags == nil
}

func (e PersonEdit) apply(p *entry.Person) *entry.Person {
	out := p.Clone()
	assign(&out.Name, e.Name)
	assign(&out.Phone, e.Phone)
	assign(&out.Email, e.Email)
	assign(&out.Address, e.Address)
	assign(&out.CompanyName, e.Company)
	if e.Tags != nil {
		out.Tags = e.Tags
	}
	return out
}

// CompanyEdit lists the fields to change. Nil fields are kept.
type CompanyEdit struct {
	Name, Phone, Email, Address *string
	Tags                        []string
}

func (e CompanyEdit) empty() bool {
	return e.Name == nil && e.Phone == nil && e.Email == nil && e.Address == nil && e.Tags == nil
}

func (e CompanyEdit) apply(c *entry.Company) *entry.Company {
	out := c.Clone()
	assign(&out.Name, e.Name)
	assign(&out.Phone, e.Phone)
	assign(&out.Email, e.Email)
	assign(&out.Address, e.Address)
	if e.Tags != nil {
		out.Tags = e.Tags
	}
	return out
}

// EventEdit lists the fields to change. Nil fields are kept.
type EventEdit struct {
	Name, Company, Description *string
	Date                       *time.Time
	Tags                       []string
}

func (e EventEdit) empty() bool {
	return e.Name == nil && e.Company == nil && e.Description == nil && e.Date == nil && e.Tags == nil
}

func (e EventEdit) apply(ev *entry.Event) *entry.Event {
	out := ev.Clone()
	assign(&out.Name, e.Name)
	assign(&out.CompanyName, e.Company)
	assign(&out.Description, e.Description)
	if e.Date != nil {
		out.Date = *e.Date
	}
	if e.Tags != nil {
		out.Tags = e.Tags
	}
	return out
}

func assign(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

type EditPersonCommand struct {
	Index int
	Edit  PersonEdit
}

func (c EditPersonCommand) Execute(m *book.Model) (Result, error) {
	target, err := pick(m.FilteredPersons(), c.Index)
	if err != nil {
		return Result{}, err
	}
	edited := c.Edit.apply(target)
	if err := edited.Validate(); err != nil {
		return Result{}, err
	}
	if err := m.SetPerson(target, edited); err != nil {
		return Result{}, err
	}
	logExecuted(config.CmdEditPerson, book.KindPersons)
	return Result{Feedback: fmt.Sprintf(config.MsgEditedPerson, edited.Name), View: book.KindPersons, Mutated: true}, nil
}

type EditCompanyCommand struct {
	Index int
	Edit  CompanyEdit
}

func (c EditCompanyCommand) Execute(m *book.Model) (Result, error) {
	target, err := pick(m.FilteredCompanies(), c.Index)
	if err != nil {
		return Result{}, err
	}
	edited := c.Edit.apply(target)
	if err := edited.Validate(); err != nil {
		return Result{}, err
	}
	updated, err := m.SetCompany(target, edited)
	if err != nil {
		return Result{}, err
	}
	logExecuted(config.CmdEditCompany, book.KindCompanies)

	feedback := fmt.Sprintf(config.MsgEditedCompany, edited.Name)
	if target.Name != edited.Name {
		feedback = fmt.Sprintf(config.MsgRenamedCompany, edited.Name, updated)
	}
	return Result{Feedback: feedback, View: book.KindCompanies, Mutated: true}, nil
}

type EditEventCommand struct {
	Index int
	Edit  EventEdit
}

func (c EditEventCommand) Execute(m *book.Model) (Result, error) {
	target, err := pick(m.FilteredEvents(), c.Index)
	if err != nil {
		return Result{}, err
	}
	edited := c.Edit.apply(target)
	if err := edited.Validate(); err != nil {
		return Result{}, err
	}
	if err := m.SetEvent(target, edited); err != nil {
		return Result{}, err
	}
	logExecuted(config.CmdEditEvent, book.KindEvents)
	return Result{Feedback: fmt.Sprintf(config.MsgEditedEvent, edited.Name), View: book.KindEvents, Mutated: true}, nil
}

//// delete and archive

// DeleteCommand removes the entry at Index of the displayed list of Kind.
type DeleteCommand struct {
	Kind  book.Kind
	Index int
}

func (c DeleteCommand) Execute(m *book.Model) (Result, error) {
	var name string
	switch c.Kind {
	case book.KindPersons:
		p, err := pick(m.FilteredPersons(), c.Index)
		if err != nil {
			return Result{}, err
		}
		if err := m.DeletePerson(p); err != nil {
			return Result{}, err
		}
		name = p.Name
	case book.KindCompanies:
		co, err := pick(m.FilteredCompanies(), c.Index)
		if err != nil {
			return Result{}, err
		}
		if err := m.DeleteCompany(co); err != nil {
			return Result{}, err
		}
		name = co.Name
	case book.KindEvents:
		ev, err := pick(m.FilteredEvents(), c.Index)
		if err != nil {
			return Result{}, err
		}
		if err := m.DeleteEvent(ev); err != nil {
			return Result{}, err
		}
		name = ev.Name
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidFormat, c.Kind)
	}
	logExecuted("delete", c.Kind)
	return Result{Feedback: fmt.Sprintf(config.MsgDeletedEntry, name), View: c.Kind, Mutated: true}, nil
}

// ArchiveCommand marks the entry at Index of the displayed list of Kind as archived.
type ArchiveCommand struct {
	Kind  book.Kind
	Index int
}

func (c ArchiveCommand) Execute(m *book.Model) (Result, error) {
	var name string
	switch c.Kind {
	case book.KindPersons:
		p, err := pick(m.FilteredPersons(), c.Index)
		if err != nil {
			return Result{}, err
		}
		if err := m.ArchivePerson(p); err != nil {
			return Result{}, err
		}
		name = p.Name
	case book.KindCompanies:
		co, err := pick(m.FilteredCompanies(), c.Index)
		if err != nil {
			return Result{}, err
		}
		if err := m.ArchiveCompany(co); err != nil {
			return Result{}, err
		}
		name = co.Name
	case book.KindEvents:
		ev, err := pick(m.FilteredEvents(), c.Index)
		if err != nil {
			return Result{}, err
		}
		if err := m.ArchiveEvent(ev); err != nil {
			return Result{}, err
		}
		name = ev.Name
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidFormat, c.Kind)
	}
	logExecuted("archive", c.Kind)
	return Result{Feedback: fmt.Sprintf(config.MsgArchivedEntry, name), View: c.Kind, Mutated: true}, nil
}

//// listing

// ListCommand shows the active entries of Kind and empties the other two views.
type ListCommand struct{ Kind book.Kind }

func (c ListCommand) Execute(m *book.Model) (Result, error) {
	persons, companies, events := book.ShowNone[*entry.Person], book.ShowNone[*entry.Company], book.ShowNone[*entry.Event]
	var feedback string
	switch c.Kind {
	case book.KindPersons:
		persons, feedback = book.ShowActive[*entry.Person], config.MsgListedPersons
	case book.KindCompanies:
		companies, feedback = book.ShowActive[*entry.Company], config.MsgListedCompanies
	case book.KindEvents:
		events, feedback = book.ShowActive[*entry.Event], config.MsgListedEvents
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidFormat, c.Kind)
	}
	m.UpdateFilteredPersonList(persons)
	m.UpdateFilteredCompanyList(companies)
	m.UpdateFilteredEventList(events)
	logExecuted("list", c.Kind)
	return Result{Feedback: feedback, View: c.Kind}, nil
}

// ListArchivedCommand shows archived entries of every kind.
type ListArchivedCommand struct{}

func (ListArchivedCommand) Execute(m *book.Model) (Result, error) {
	m.UpdateFilteredPersonList(book.ShowArchived[*entry.Person])
	m.UpdateFilteredCompanyList(book.ShowArchived[*entry.Company])
	m.UpdateFilteredEventList(book.ShowArchived[*entry.Event])
	logExecuted(config.CmdListArchived, book.KindPersons)
	return Result{Feedback: config.MsgListedArchived, View: book.KindPersons}, nil
}

// FindCommand shows the active entries whose name holds one of the keywords.
type FindCommand struct{ Keywords []string }

func (c FindCommand) Execute(m *book.Model) (Result, error) {
	m.UpdateFilteredPersonList(activeMatching[*entry.Person](c.Keywords))
	m.UpdateFilteredCompanyList(activeMatching[*entry.Company](c.Keywords))
	m.UpdateFilteredEventList(activeMatching[*entry.Event](c.Keywords))

	persons, companies, events := len(m.FilteredPersons()), len(m.FilteredCompanies()), len(m.FilteredEvents())
	view := book.KindPersons
	if persons == 0 && companies > 0 {
		view = book.KindCompanies
	} else if persons == 0 && companies == 0 && events > 0 {
		view = book.KindEvents
	}
	logExecuted(config.CmdFind, view)
	return Result{Feedback: fmt.Sprintf(config.MsgFound, persons, companies, events), View: view}, nil
}

func activeMatching[T interface {
	IsArchived() bool
	DisplayName() string
}](keywords []string) book.Predicate[T] {
	match := book.NameContainsAny[T](keywords)
	return func(e T) bool { return !e.IsArchived() && match(e) }
}

// SortCommand orders the displayed list of Kind.
type SortCommand struct {
	Kind  book.Kind
	Order book.SortOrder
}

func (c SortCommand) Execute(m *book.Model) (Result, error) {
	switch c.Kind {
	case book.KindPersons:
		m.SortPersons(c.Order)
	case book.KindCompanies:
		m.SortCompanies(c.Order)
	case book.KindEvents:
		m.SortEvents(c.Order)
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidFormat, c.Kind)
	}
	logExecuted("sort", c.Kind)
	return Result{Feedback: fmt.Sprintf(config.MsgSorted, c.Kind, c.Order), View: c.Kind}, nil
}

//// session

// ClearCommand empties the whole address book.
type ClearCommand struct{}

func (ClearCommand) Execute(m *book.Model) (Result, error) {
	if err := m.ResetData(book.New()); err != nil {
		return Result{}, err
	}
	logExecuted(config.CmdClear, book.KindPersons)
	return Result{Feedback: config.MsgCleared, View: book.KindPersons, Mutated: true}, nil
}

// ImportCommand asks the caller to run a vCard import.
type ImportCommand struct{}

func (ImportCommand) Execute(*book.Model) (Result, error) {
	return Result{Feedback: config.MsgImportRequested, View: book.KindPersons, Import: true}, nil
}

type HelpCommand struct{}

func (HelpCommand) Execute(*book.Model) (Result, error) {
	return Result{Feedback: config.MsgShowingHelp, ShowHelp: true}, nil
}

type ExitCommand struct{}

func (ExitCommand) Execute(*book.Model) (Result, error) {
	return Result{Feedback: config.MsgExiting, Exit: true}, nil
}
