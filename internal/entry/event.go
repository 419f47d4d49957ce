package entry

import (
	"slices"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Event is a dated appointment, optionally tied to a company by name.
// Two events are the same entry when they share a name on the same local
// calendar day.
type Event struct {
	Name        string    `json:"name" yaml:"name"`
	Date        time.Time `json:"date" yaml:"date"`
	CompanyName string    `json:"company,omitempty" yaml:"company,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Archived    bool      `json:"archived,omitempty" yaml:"archived,omitempty"`
}

// Validate checks the fields required to store the event.
func (e *Event) Validate() error {
	return validateName("event", e.Name)
}

// Key combines the normalized name with the event day. The day is taken in
// time.Local so dates parsed in different zones agree on it.
func (e *Event) Key() string {
	return NameKey(e.Name) + "@" + e.Date.In(time.Local).Format(config.DateLayoutDay)
}

func (e *Event) DisplayName() string { return e.Name }
func (e *Event) IsArchived() bool    { return e.Archived }

func (e *Event) IsSameEntry(other *Event) bool {
	if other == nil {
		return false
	}
	return e == other || e.Key() == other.Key()
}

// Equal reports whether every field matches. Dates compare as instants.
func (e *Event) Equal(other *Event) bool {
	if other == nil {
		return false
	}
	return e.Name == other.Name &&
		e.Date.Equal(other.Date) &&
		e.CompanyName == other.CompanyName &&
		e.Description == other.Description &&
		slices.Equal(e.Tags, other.Tags) &&
		e.Archived == other.Archived
}

// Clone returns a deep copy.
func (e *Event) Clone() *Event {
	c := *e
	c.Tags = slices.Clone(e.Tags)
	return &c
}

func (e *Event) WithArchived(archived bool) *Event {
	c := e.Clone()
	c.Archived = archived
	return c
}

func (e *Event) WithCompanyRenamed(oldName, newName string) (*Event, bool) {
	if e.CompanyName == "" || !SameName(e.CompanyName, oldName) {
		return e, false
	}
	c := e.Clone()
	c.CompanyName = newName
	return c, true
}

// IsOn reports whether the event falls on the same local calendar day as t.
func (e *Event) IsOn(t time.Time) bool {
	y1, m1, d1 := e.Date.In(t.Location()).Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
