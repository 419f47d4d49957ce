// Package entry holds the records managed by the address book and the
// identity-unique list that stores them.
package entry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/tartampluch/go-addressbook/internal/config"
	"golang.org/x/text/cases"
)

var (
	// ErrDuplicateEntry is returned when an operation would store two entries with the same identity.
	ErrDuplicateEntry = errors.New(config.ErrDuplicateEntry)

	// ErrEntryNotFound is returned when the target of an operation is absent by identity.
	ErrEntryNotFound = errors.New(config.ErrEntryNotFound)

	// ErrNilArgument is returned when a required argument is nil.
	ErrNilArgument = errors.New(config.ErrNilArgument)

	// ErrInvalidName is returned by Validate when an entry has a blank name.
	ErrInvalidName = errors.New(config.ErrInvalidName)
)

// Entry is the capability shared by Person, Company and Event.
// Entries are treated as immutable once stored: every change produces a copy.
type Entry[T any] interface {
	// Key returns the normalized identity key.
	Key() string
	// DisplayName returns the name as entered by the user.
	DisplayName() string
	// IsSameEntry reports identity equality, which is weaker than Equal.
	IsSameEntry(other T) bool
	// Equal reports full field equality.
	Equal(other T) bool
	IsArchived() bool
	// WithArchived returns a copy carrying the given archived flag.
	WithArchived(archived bool) T
}

// CompanyReferrer is implemented by entries holding a soft link to a company by name.
type CompanyReferrer[T any] interface {
	// WithCompanyRenamed returns a copy pointing at newName and true when the
	// entry referenced oldName, or the receiver and false otherwise.
	WithCompanyRenamed(oldName, newName string) (T, bool)
}

// IsNil reports whether v is nil, including a nil pointer stored in an
// interface or type parameter.
func IsNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// NameKey normalizes a name for identity comparison: surrounding whitespace is
// ignored and letters are case-folded.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// SameName reports whether two names identify the same thing.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s", ErrInvalidName, kind)
	}
	return nil
}
