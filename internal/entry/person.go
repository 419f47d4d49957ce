package entry

import "slices"

// Person is a contact, optionally working for a company referenced by name.
type Person struct {
	Name        string   `json:"name" yaml:"name"`
	Phone       string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email       string   `json:"email,omitempty" yaml:"email,omitempty"`
	Address     string   `json:"address,omitempty" yaml:"address,omitempty"`
	CompanyName string   `json:"company,omitempty" yaml:"company,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Archived    bool     `json:"archived,omitempty" yaml:"archived,omitempty"`
}

// Validate checks the fields required to store the person.
func (p *Person) Validate() error {
	return validateName("person", p.Name)
}

func (p *Person) Key() string         { return NameKey(p.Name) }
func (p *Person) DisplayName() string { return p.Name }
func (p *Person) IsArchived() bool    { return p.Archived }

// IsSameEntry reports whether both persons share the same name.
func (p *Person) IsSameEntry(other *Person) bool {
	if other == nil {
		return false
	}
	return p == other || p.Key() == other.Key()
}

// Equal reports whether every field matches.
func (p *Person) Equal(other *Person) bool {
	if other == nil {
		return false
	}
	return p.Name == other.Name &&
		p.Phone == other.Phone &&
		p.Email == other.Email &&
		p.Address == other.Address &&
		p.CompanyName == other.CompanyName &&
		slices.Equal(p.Tags, other.Tags) &&
		p.Archived == other.Archived
}

// Clone returns a deep copy.
func (p *Person) Clone() *Person {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	return &c
}

func (p *Person) WithArchived(archived bool) *Person {
	c := p.Clone()
	c.Archived = archived
	return c
}

func (p *Person) WithCompanyRenamed(oldName, newName string) (*Person, bool) {
	if p.CompanyName == "" || !SameName(p.CompanyName, oldName) {
		return p, false
	}
	c := p.Clone()
	c.CompanyName = newName
	return c, true
}
