package engine

import (
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/entry"
)

// Batch holds the entries decoded from one vCard stream, ready to be merged
// into a book. It is built off the UI goroutine and merged on it.
type Batch struct {
	Persons   []*entry.Person
	Companies []*entry.Company
	// Skipped counts cards that could not be turned into a person.
	Skipped int
}

// ImportStats reports the outcome of a merge.
type ImportStats struct {
	Persons   int
	Companies int
	Skipped   int
}

// Merge adds the batch to m. Companies named by ORG are created when missing.
// Persons already present by name are skipped and left untouched.
func (b *Batch) Merge(m *book.Model) (ImportStats, error) {
	stats := ImportStats{Skipped: b.Skipped}

	for _, c := range b.Companies {
		if m.HasCompany(c) {
			continue
		}
		if err := m.AddCompany(c); err != nil {
			return stats, err
		}
		stats.Companies++
	}

	for _, p := range b.Persons {
		if m.HasPerson(p) {
			stats.Skipped++
			continue
		}
		if err := m.AddPerson(p); err != nil {
			return stats, err
		}
		stats.Persons++
	}
	return stats, nil
}

// add records the person built from card, if any, along with its company.
func (b *Batch) add(card vcard.Card) bool {
	p := personFromCard(card)
	if p == nil {
		b.Skipped++
		return false
	}
	b.Persons = append(b.Persons, p)

	if p.CompanyName == "" {
		return true
	}
	company := &entry.Company{Name: p.CompanyName}
	for _, c := range b.Companies {
		if c.IsSameEntry(company) {
			return true
		}
	}
	b.Companies = append(b.Companies, company)
	return true
}

// personFromCard maps the vCard fields the address book knows about.
// It returns nil for cards without any usable name.
func personFromCard(card vcard.Card) *entry.Person {
	name := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
	if name == "" {
		if n := card.Name(); n != nil {
			name = strings.TrimSpace(strings.Join(nonEmpty(n.GivenName, n.AdditionalName, n.FamilyName), " "))
		}
	}
	if name == "" {
		return nil
	}

	p := &entry.Person{
		Name:        name,
		Phone:       strings.TrimSpace(card.PreferredValue(vcard.FieldTelephone)),
		Email:       strings.TrimSpace(card.PreferredValue(vcard.FieldEmail)),
		CompanyName: organization(card),
		Tags:        categories(card),
	}
	if adr := card.Address(); adr != nil {
		p.Address = strings.Join(nonEmpty(adr.StreetAddress, adr.Locality, adr.Region, adr.PostalCode, adr.Country), ", ")
	}
	return p
}

// organization returns the organization name, dropping unit components.
func organization(card vcard.Card) string {
	org := card.PreferredValue(vcard.FieldOrganization)
	name, _, _ := strings.Cut(org, ";")
	return strings.TrimSpace(name)
}

func categories(card vcard.Card) []string {
	var tags []string
	for _, f := range card[vcard.FieldCategories] {
		for _, t := range strings.Split(f.Value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
