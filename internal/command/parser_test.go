package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/entry"
)

func TestTokenize(t *testing.T) {
	a := tokenize("3 n/Alice Smith p/555 1234 t/friend t/ t/work")

	assert.Equal(t, "3", a.preamble)
	name, ok := a.value("n/")
	assert.True(t, ok)
	assert.Equal(t, "Alice Smith", name)
	phone, _ := a.value("p/")
	assert.Equal(t, "555 1234", phone)
	assert.Equal(t, []string{"friend", "", "work"}, a.all("t/"))

	_, ok = a.value("e/")
	assert.False(t, ok)
}

func TestTokenize_PrefixInsideWord(t *testing.T) {
	// "n/" glued to a word is plain text
	a := tokenize("n/Acme a/Stern/Road 4")
	addr, ok := a.value("a/")
	require.True(t, ok)
	assert.Equal(t, "Stern/Road 4", addr)
}

func TestTokenize_LastValueWins(t *testing.T) {
	a := tokenize("n/First n/Second")
	name, _ := a.value("n/")
	assert.Equal(t, "Second", name)
}

func TestParse_AddCommands(t *testing.T) {
	p := Parser{Location: time.UTC}

	cmd, err := p.Parse("addp n/Alice p/123 e/alice@example.com a/1 Main St c/Acme t/friend t/vip")
	require.NoError(t, err)
	add, ok := cmd.(AddPersonCommand)
	require.True(t, ok)
	assert.Equal(t, &entry.Person{
		Name: "Alice", Phone: "123", Email: "alice@example.com", Address: "1 Main St",
		CompanyName: "Acme", Tags: []string{"friend", "vip"},
	}, add.Person)

	cmd, err = p.Parse("addc n/Acme e/info@acme.test")
	require.NoError(t, err)
	assert.Equal(t, "Acme", cmd.(AddCompanyCommand).Company.Name)

	cmd, err = p.Parse("adde n/Interview d/2024-03-01 14:30 c/Acme r/Second round")
	require.NoError(t, err)
	ev := cmd.(AddEventCommand).Event
	assert.Equal(t, time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), ev.Date)
	assert.Equal(t, "Second round", ev.Description)

	cmd, err = p.Parse("adde n/Call d/2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), cmd.(AddEventCommand).Event.Date)
}

func TestParse_Errors(t *testing.T) {
	p := Parser{Location: time.UTC}

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"Empty", "", ErrUnknownCommand},
		{"Unknown", "frobnicate", ErrUnknownCommand},
		{"AddWithoutName", "addp p/123", ErrInvalidFormat},
		{"AddWithPreamble", "addp junk n/Alice", ErrInvalidFormat},
		{"AddBlankName", "addc n/   ", entry.ErrInvalidName},
		{"EventWithoutDate", "adde n/Call", ErrInvalidFormat},
		{"EventBadDate", "adde n/Call d/01/03/2024", ErrInvalidDate},
		{"EditWithoutIndex", "editp n/Bob", ErrInvalidIndex},
		{"EditZeroIndex", "editc 0 n/Bob", ErrInvalidIndex},
		{"EditNothing", "editp 1", ErrNotEdited},
		{"EditBadDate", "edite 1 d/tomorrow", ErrInvalidDate},
		{"DeleteNegative", "deletep -2", ErrInvalidIndex},
		{"ArchiveWord", "archivee first", ErrInvalidIndex},
		{"FindNothing", "find   ", ErrInvalidFormat},
		{"SortSideways", "sortp sideways", ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := p.Parse(tt.input)
			assert.Nil(t, cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_IndexedAndSimpleCommands(t *testing.T) {
	p := Parser{}

	tests := []struct {
		input string
		want  Command
	}{
		{"deletep 2", DeleteCommand{Kind: book.KindPersons, Index: 2}},
		{"deletec 1", DeleteCommand{Kind: book.KindCompanies, Index: 1}},
		{"deletee 3", DeleteCommand{Kind: book.KindEvents, Index: 3}},
		{"archivep 1", ArchiveCommand{Kind: book.KindPersons, Index: 1}},
		{"archivec 4", ArchiveCommand{Kind: book.KindCompanies, Index: 4}},
		{"archivee 2", ArchiveCommand{Kind: book.KindEvents, Index: 2}},
		{"listp", ListCommand{Kind: book.KindPersons}},
		{"listc", ListCommand{Kind: book.KindCompanies}},
		{"liste", ListCommand{Kind: book.KindEvents}},
		{"listarchived", ListArchivedCommand{}},
		{"find alice  acme", FindCommand{Keywords: []string{"alice", "acme"}}},
		{"sortp desc", SortCommand{Kind: book.KindPersons, Order: book.SortDescending}},
		{"sortc ASC", SortCommand{Kind: book.KindCompanies, Order: book.SortAscending}},
		{"sorte", SortCommand{Kind: book.KindEvents, Order: book.SortAscending}},
		{"import", ImportCommand{}},
		{"clear", ClearCommand{}},
		{"  help  ", HelpCommand{}},
		{"exit", ExitCommand{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_EditFields(t *testing.T) {
	p := Parser{Location: time.UTC}

	cmd, err := p.Parse("editp 2 p/999 t/")
	require.NoError(t, err)
	edit := cmd.(EditPersonCommand)
	assert.Equal(t, 2, edit.Index)
	assert.Nil(t, edit.Edit.Name)
	require.NotNil(t, edit.Edit.Phone)
	assert.Equal(t, "999", *edit.Edit.Phone)
	assert.NotNil(t, edit.Edit.Tags, "a bare t/ clears the tags")
	assert.Empty(t, edit.Edit.Tags)

	cmd, err = p.Parse("edite 1 d/2025-01-05 09:00")
	require.NoError(t, err)
	ev := cmd.(EditEventCommand)
	require.NotNil(t, ev.Edit.Date)
	assert.Equal(t, time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC), *ev.Edit.Date)

	cmd, err = p.Parse("editc 1 n/Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", *cmd.(EditCompanyCommand).Edit.Name)
}
