package entry

import "slices"

// Company is an organisation persons and events may refer to by name.
type Company struct {
	Name     string   `json:"name" yaml:"name"`
	Phone    string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email    string   `json:"email,omitempty" yaml:"email,omitempty"`
	Address  string   `json:"address,omitempty" yaml:"address,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Archived bool     `json:"archived,omitempty" yaml:"archived,omitempty"`
}

// Validate checks the fields required to store the company.
func (c *Company) Validate() error {
	return validateName("company", c.Name)
}

func (c *Company) Key() string         { return NameKey(c.Name) }
func (c *Company) DisplayName() string { return c.Name }
func (c *Company) IsArchived() bool    { return c.Archived }

// IsSameEntry reports whether both companies share the same name.
func (c *Company) IsSameEntry(other *Company) bool {
	if other == nil {
		return false
	}
	return c == other || c.Key() == other.Key()
}

// Equal reports whether every field matches.
func (c *Company) Equal(other *Company) bool {
	if other == nil {
		return false
	}
	return c.Name == other.Name &&
		c.Phone == other.Phone &&
		c.Email == other.Email &&
		c.Address == other.Address &&
		slices.Equal(c.Tags, other.Tags) &&
		c.Archived == other.Archived
}

// Clone returns a deep copy.
func (c *Company) Clone() *Company {
	cp := *c
	cp.Tags = slices.Clone(c.Tags)
	return &cp
}

func (c *Company) WithArchived(archived bool) *Company {
	cp := c.Clone()
	cp.Archived = archived
	return cp
}
