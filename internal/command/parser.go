package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/entry"
)

var (
	// ErrUnknownCommand is returned for an unrecognised command word.
	ErrUnknownCommand = errors.New(config.ErrUnknownCommand)

	// ErrInvalidFormat is returned when arguments do not match the command syntax.
	ErrInvalidFormat = errors.New(config.ErrInvalidFormat)

	// ErrInvalidIndex is returned when an index is malformed or outside the displayed list.
	ErrInvalidIndex = errors.New(config.ErrInvalidIndex)

	// ErrInvalidDate is returned for dates matching none of the accepted layouts.
	ErrInvalidDate = errors.New(config.ErrInvalidDate)

	// ErrNotEdited is returned by edit commands carrying no field.
	ErrNotEdited = errors.New(config.ErrNotEdited)
)

var allPrefixes = []string{
	config.PrefixName, config.PrefixPhone, config.PrefixEmail, config.PrefixAddress,
	config.PrefixCompany, config.PrefixDate, config.PrefixDescription, config.PrefixTag,
}

// Parser turns a line of user input into a Command.
type Parser struct {
	// Location is used to interpret event dates. Defaults to time.Local.
	Location *time.Location
}

// Parse splits input into a command word and arguments and builds the matching command.
func (p Parser) Parse(input string) (Command, error) {
	word, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	args = strings.TrimSpace(args)

	switch word {
	case config.CmdAddPerson:
		return p.parseAddPerson(args)
	case config.CmdAddCompany:
		return p.parseAddCompany(args)
	case config.CmdAddEvent:
		return p.parseAddEvent(args)
	case config.CmdEditPerson:
		return p.parseEditPerson(args)
	case config.CmdEditCompany:
		return p.parseEditCompany(args)
	case config.CmdEditEvent:
		return p.parseEditEvent(args)
	case config.CmdDeletePerson:
		return parseIndexed(args, func(i int) Command { return DeleteCommand{Kind: book.KindPersons, Index: i} })
	case config.CmdDeleteCompany:
		return parseIndexed(args, func(i int) Command { return DeleteCommand{Kind: book.KindCompanies, Index: i} })
	case config.CmdDeleteEvent:
		return parseIndexed(args, func(i int) Command { return DeleteCommand{Kind: book.KindEvents, Index: i} })
	case config.CmdArchivePerson:
		return parseIndexed(args, func(i int) Command { return ArchiveCommand{Kind: book.KindPersons, Index: i} })
	case config.CmdArchiveCompany:
		return parseIndexed(args, func(i int) Command { return ArchiveCommand{Kind: book.KindCompanies, Index: i} })
	case config.CmdArchiveEvent:
		return parseIndexed(args, func(i int) Command { return ArchiveCommand{Kind: book.KindEvents, Index: i} })
	case config.CmdListPersons:
		return ListCommand{Kind: book.KindPersons}, nil
	case config.CmdListCompanies:
		return ListCommand{Kind: book.KindCompanies}, nil
	case config.CmdListEvents:
		return ListCommand{Kind: book.KindEvents}, nil
	case config.CmdListArchived:
		return ListArchivedCommand{}, nil
	case config.CmdFind:
		keywords := strings.Fields(args)
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: %s KEYWORD...", ErrInvalidFormat, config.CmdFind)
		}
		return FindCommand{Keywords: keywords}, nil
	case config.CmdSortPersons:
		return parseSort(book.KindPersons, args)
	case config.CmdSortCompanies:
		return parseSort(book.KindCompanies, args)
	case config.CmdSortEvents:
		return parseSort(book.KindEvents, args)
	case config.CmdImport:
		return ImportCommand{}, nil
	case config.CmdClear:
		return ClearCommand{}, nil
	case config.CmdHelp:
		return HelpCommand{}, nil
	case config.CmdExit:
		return ExitCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, word)
	}
}

//// argument tokenizing

// argMap holds the preamble and the values found for each prefix, in order.
type argMap struct {
	preamble string
	values   map[string][]string
}

func (a argMap) value(prefix string) (string, bool) {
	vs := a.values[prefix]
	if len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

func (a argMap) all(prefix string) []string {
	return a.values[prefix]
}

// tokenize splits args on the known prefixes. A prefix only counts at the
// start of the string or after whitespace.
func tokenize(args string) argMap {
	type mark struct {
		pos    int
		prefix string
	}
	var marks []mark
	for i := 0; i < len(args); i++ {
		if i > 0 && args[i-1] != ' ' && args[i-1] != '\t' {
			continue
		}
		for _, p := range allPrefixes {
			if strings.HasPrefix(args[i:], p) {
				marks = append(marks, mark{pos: i, prefix: p})
				break
			}
		}
	}

	out := argMap{values: make(map[string][]string)}
	if len(marks) == 0 {
		out.preamble = strings.TrimSpace(args)
		return out
	}
	out.preamble = strings.TrimSpace(args[:marks[0].pos])
	for i, m := range marks {
		end := len(args)
		if i+1 < len(marks) {
			end = marks[i+1].pos
		}
		v := strings.TrimSpace(args[m.pos+len(m.prefix) : end])
		out.values[m.prefix] = append(out.values[m.prefix], v)
	}
	return out
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, s)
	}
	return i, nil
}

func parseIndexed(args string, build func(int) Command) (Command, error) {
	i, err := parseIndex(args)
	if err != nil {
		return nil, err
	}
	return build(i), nil
}

func parseSort(kind book.Kind, args string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case config.SortAscending, "":
		return SortCommand{Kind: kind, Order: book.SortAscending}, nil
	case config.SortDescending:
		return SortCommand{Kind: kind, Order: book.SortDescending}, nil
	default:
		return nil, fmt.Errorf("%w: sort order must be %s or %s", ErrInvalidFormat, config.SortAscending, config.SortDescending)
	}
}

func (p Parser) parseDate(s string) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{config.DateLayoutMinute, config.DateLayoutDay} {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// tags returns nil when no tag prefix was given so edits can tell "unset"
// from "cleared" (a single empty t/).
func tags(a argMap) []string {
	raw := a.all(config.PrefixTag)
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

//// add

func (p Parser) parseAddPerson(args string) (Command, error) {
	a := tokenize(args)
	name, ok := a.value(config.PrefixName)
	if !ok || a.preamble != "" {
		return nil, fmt.Errorf("%w: %s n/NAME [p/PHONE] [e/EMAIL] [a/ADDRESS] [c/COMPANY] [t/TAG]...", ErrInvalidFormat, config.CmdAddPerson)
	}
	person := &entry.Person{Name: name, Tags: tags(a)}
	person.Phone, _ = a.value(config.PrefixPhone)
	person.Email, _ = a.value(config.PrefixEmail)
	person.Address, _ = a.value(config.PrefixAddress)
	person.CompanyName, _ = a.value(config.PrefixCompany)
	if err := person.Validate(); err != nil {
		return nil, err
	}
	return AddPersonCommand{Person: person}, nil
}

func (p Parser) parseAddCompany(args string) (Command, error) {
	a := tokenize(args)
	name, ok := a.value(config.PrefixName)
	if !ok || a.preamble != "" {
		return nil, fmt.Errorf("%w: %s n/NAME [p/PHONE] [e/EMAIL] [a/ADDRESS] [t/TAG]...", ErrInvalidFormat, config.CmdAddCompany)
	}
	company := &entry.Company{Name: name, Tags: tags(a)}
	company.Phone, _ = a.value(config.PrefixPhone)
	company.Email, _ = a.value(config.PrefixEmail)
	company.Address, _ = a.value(config.PrefixAddress)
	if err := company.Validate(); err != nil {
		return nil, err
	}
	return AddCompanyCommand{Company: company}, nil
}

func (p Parser) parseAddEvent(args string) (Command, error) {
	a := tokenize(args)
	name, okName := a.value(config.PrefixName)
	rawDate, okDate := a.value(config.PrefixDate)
	if !okName || !okDate || a.preamble != "" {
		return nil, fmt.Errorf("%w: %s n/NAME d/DATE [c/COMPANY] [r/DESCRIPTION] [t/TAG]...", ErrInvalidFormat, config.CmdAddEvent)
	}
	date, err := p.parseDate(rawDate)
	if err != nil {
		return nil, err
	}
	event := &entry.Event{Name: name, Date: date, Tags: tags(a)}
	event.CompanyName, _ = a.value(config.PrefixCompany)
	event.Description, _ = a.value(config.PrefixDescription)
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return AddEventCommand{Event: event}, nil
}

//// edit

func optional(a argMap, prefix string) *string {
	if v, ok := a.value(prefix); ok {
		return &v
	}
	return nil
}

func (p Parser) parseEditPerson(args string) (Command, error) {
	a := tokenize(args)
	index, err := parseIndex(a.preamble)
	if err != nil {
		return nil, err
	}
	edit := PersonEdit{
		Name:    optional(a, config.PrefixName),
		Phone:   optional(a, config.PrefixPhone),
		Email:   optional(a, config.PrefixEmail),
		Address: optional(a, config.PrefixAddress),
		Company: optional(a, config.PrefixCompany),
		Tags:    tags(a),
	}
	if edit.empty() {
		return nil, ErrNotEdited
	}
	return EditPersonCommand{Index: index, Edit: edit}, nil
}

func (p Parser) parseEditCompany(args string) (Command, error) {
	a := tokenize(args)
	index, err := parseIndex(a.preamble)
	if err != nil {
		return nil, err
	}
	edit := CompanyEdit{
		Name:    optional(a, config.PrefixName),
		Phone:   optional(a, config.PrefixPhone),
		Email:   optional(a, config.PrefixEmail),
		Address: optional(a, config.PrefixAddress),
		Tags:    tags(a),
	}
	if edit.empty() {
		return nil, ErrNotEdited
	}
	return EditCompanyCommand{Index: index, Edit: edit}, nil
}

func (p Parser) parseEditEvent(args string) (Command, error) {
	a := tokenize(args)
	index, err := parseIndex(a.preamble)
	if err != nil {
		return nil, err
	}
	edit := EventEdit{
		Name:        optional(a, config.PrefixName),
		Company:     optional(a, config.PrefixCompany),
		Description: optional(a, config.PrefixDescription),
		Tags:        tags(a),
	}
	if raw, ok := a.value(config.PrefixDate); ok {
		date, err := p.parseDate(raw)
		if err != nil {
			return nil, err
		}
		edit.Date = &date
	}
	if edit.empty() {
		return nil, ErrNotEdited
	}
	return EditEventCommand{Index: index, Edit: edit}, nil
}
