package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/command"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/entry"
)

// column describes one table column: its header key and width.
type column struct {
	titleKey string
	width    float32
}

// listView caches the rendered rows of one displayed list.
type listView struct {
	kind    book.Kind
	tabKey  string
	columns []column
	render  func() [][]string
	rows    [][]string
	table   *widget.Table
	tabItem *container.TabItem
}

func newListViews(m *book.Model) map[book.Kind]*listView {
	views := map[book.Kind]*listView{
		book.KindPersons: {
			kind:   book.KindPersons,
			tabKey: config.TKeyTabPersons,
			columns: []column{
				{config.TKeyColName, config.ColWidthName},
				{config.TKeyColPhone, config.ColWidthDefault},
				{config.TKeyColEmail, config.ColWidthDefault},
				{config.TKeyColAddress, config.ColWidthDefault},
				{config.TKeyColCompany, config.ColWidthDefault},
				{config.TKeyColTags, config.ColWidthTags},
			},
			render: func() [][]string {
				return renderRows(m.FilteredPersons(), func(p *entry.Person) []string {
					return []string{p.Phone, p.Email, p.Address, p.CompanyName, joinTags(p.Tags)}
				})
			},
		},
		book.KindCompanies: {
			kind:   book.KindCompanies,
			tabKey: config.TKeyTabCompanies,
			columns: []column{
				{config.TKeyColName, config.ColWidthName},
				{config.TKeyColPhone, config.ColWidthDefault},
				{config.TKeyColEmail, config.ColWidthDefault},
				{config.TKeyColAddress, config.ColWidthDefault},
				{config.TKeyColTags, config.ColWidthTags},
			},
			render: func() [][]string {
				return renderRows(m.FilteredCompanies(), func(c *entry.Company) []string {
					return []string{c.Phone, c.Email, c.Address, joinTags(c.Tags)}
				})
			},
		},
		book.KindEvents: {
			kind:   book.KindEvents,
			tabKey: config.TKeyTabEvents,
			columns: []column{
				{config.TKeyColName, config.ColWidthName},
				{config.TKeyColDate, config.ColWidthDefault},
				{config.TKeyColCompany, config.ColWidthDefault},
				{config.TKeyColDesc, config.ColWidthDefault},
				{config.TKeyColTags, config.ColWidthTags},
			},
			render: func() [][]string {
				return renderRows(m.FilteredEvents(), func(e *entry.Event) []string {
					return []string{e.Date.Format(config.DateFormatDisplay), e.CompanyName, e.Description, joinTags(e.Tags)}
				})
			},
		},
	}
	for _, v := range views {
		v.rows = v.render()
	}
	return views
}

// renderRows prefixes every row with its 1-based index and name, which is
// what commands refer to.
func renderRows[T interface {
	DisplayName() string
	IsArchived() bool
}](items []T, cells func(T) []string) [][]string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		name := fmt.Sprintf("%d. %s", i+1, item.DisplayName())
		if item.IsArchived() {
			name += config.ArchivedMarker
		}
		rows = append(rows, append([]string{name}, cells(item)...))
	}
	return rows
}

func joinTags(tags []string) string {
	return strings.Join(tags, config.TagSeparator)
}

func (v *listView) refresh() {
	v.rows = v.render()
	if v.table != nil {
		v.table.Refresh()
	}
}

func (app *AddressBookApp) newTable(v *listView) *widget.Table {
	t := widget.NewTable(
		func() (int, int) { return len(v.rows), len(v.columns) },
		func() fyne.CanvasObject {
			l := widget.NewLabel(config.TablePlaceholder)
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row < 0 || id.Row >= len(v.rows) || id.Col >= len(v.rows[id.Row]) {
				label.SetText("")
				return
			}
			label.SetText(v.rows[id.Row][id.Col])
		},
	)

	t.ShowHeaderRow = true
	t.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle(config.TablePlaceholder, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	t.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		if id.Col < 0 || id.Col >= len(v.columns) {
			return
		}
		o.(*widget.Label).SetText(app.GetMsg(v.columns[id.Col].titleKey))
	}

	for i, c := range v.columns {
		t.SetColumnWidth(i, c.width)
	}
	return t
}

// onModelChanged re-renders the list of the given kind.
func (app *AddressBookApp) onModelChanged(kind book.Kind) {
	if v, ok := app.views[kind]; ok {
		v.refresh()
	}
}

// ShowMainWindow opens the command window, or focuses it when already open.
func (app *AddressBookApp) ShowMainWindow() {
	if app.MainWindow != nil {
		app.MainWindow.Show()
		app.MainWindow.RequestFocus()
		return
	}

	slog.Info(config.LogMsgOpenWin, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinMain))
	app.MainWindow = w

	app.cmdEntry = widget.NewEntry()
	app.cmdEntry.SetPlaceHolder(app.GetMsg(config.TKeyCmdPlaceholder))
	app.cmdEntry.OnSubmitted = func(input string) {
		_, _ = app.ExecuteCommand(input)
	}

	app.tabs = container.NewAppTabs()
	for _, kind := range []book.Kind{book.KindPersons, book.KindCompanies, book.KindEvents} {
		v := app.views[kind]
		v.table = app.newTable(v)
		v.tabItem = container.NewTabItem(app.GetMsg(v.tabKey), v.table)
		app.tabs.Append(v.tabItem)
	}

	top := container.NewVBox(app.cmdEntry, app.feedback)
	w.SetContent(container.NewBorder(top, nil, nil, nil, app.tabs))
	w.Resize(fyne.NewSize(config.MainWinWidth, config.MainWinHeight))

	if app.Tray != nil {
		w.SetCloseIntercept(w.Hide)
	}
	w.SetOnClosed(func() {
		app.MainWindow = nil
		app.tabs = nil
		app.cmdEntry = nil
		for _, v := range app.views {
			v.table, v.tabItem = nil, nil
		}
	})

	w.Show()
	w.Canvas().Focus(app.cmdEntry)
}

// RefreshMainWindow applies the current language to the main window labels.
func (app *AddressBookApp) RefreshMainWindow() {
	if app.MainWindow == nil {
		return
	}
	app.MainWindow.SetTitle(app.GetMsg(config.TKeyWinMain))
	app.cmdEntry.SetPlaceHolder(app.GetMsg(config.TKeyCmdPlaceholder))
	for _, v := range app.views {
		v.tabItem.Text = app.GetMsg(v.tabKey)
		v.table.Refresh()
	}
	app.tabs.Refresh()
}

// ExecuteCommand parses and runs one line of user input, then applies the
// side effects the result asks for.
func (app *AddressBookApp) ExecuteCommand(input string) (command.Result, error) {
	var res command.Result
	cmd, err := app.Parser.Parse(input)
	if err == nil {
		res, err = cmd.Execute(app.Model)
	}
	if err != nil {
		slog.Warn(config.LogMsgCmdFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyCommand, input,
			config.LogKeyError, err)
		app.setFeedback(app.localizeError(err))
		return res, err
	}

	if app.cmdEntry != nil {
		app.cmdEntry.SetText("")
	}
	app.setFeedback(res.Feedback)
	app.selectView(res.View)

	if res.Mutated {
		app.persist()
	}
	if res.ShowHelp {
		app.showHelp()
	}
	if res.Import {
		go app.importContacts(true)
	}
	if res.Exit {
		app.App.Quit()
	}
	return res, nil
}

// Feedback returns the text currently shown under the command box.
func (app *AddressBookApp) Feedback() string {
	return app.feedback.Text
}

func (app *AddressBookApp) setFeedback(text string) {
	app.feedback.SetText(text)
}

func (app *AddressBookApp) selectView(kind book.Kind) {
	v, ok := app.views[kind]
	if !ok || app.tabs == nil || v.tabItem == nil {
		return
	}
	if app.tabs.Selected() != v.tabItem {
		app.tabs.Select(v.tabItem)
		slog.Debug(config.LogMsgViewChanged, config.LogKeyComponent, config.CompUI, config.LogKeyView, kind)
	}
}

func (app *AddressBookApp) showHelp() {
	if app.MainWindow == nil {
		return
	}
	dialog.ShowInformation(app.GetMsg(config.TKeyHelpTitle), app.GetMsg(config.TKeyHelpText), app.MainWindow)
}

// localizeError turns a domain error into a message for the feedback line.
func (app *AddressBookApp) localizeError(err error) string {
	keys := []struct {
		target error
		key    string
	}{
		{entry.ErrDuplicateEntry, config.TKeyErrDuplicate},
		{entry.ErrEntryNotFound, config.TKeyErrNotFound},
		{entry.ErrInvalidName, config.TKeyErrName},
		{entry.ErrNilArgument, config.TKeyErrNilArgument},
		{command.ErrUnknownCommand, config.TKeyErrUnknownCmd},
		{command.ErrInvalidIndex, config.TKeyErrIndex},
		{command.ErrInvalidDate, config.TKeyErrDate},
		{command.ErrNotEdited, config.TKeyErrNotEdited},
		{command.ErrInvalidFormat, config.TKeyErrFormat},
	}
	for _, k := range keys {
		if errors.Is(err, k.target) {
			if k.target == command.ErrInvalidFormat {
				return fmt.Sprintf("%s\n%v", app.GetMsg(k.key), err)
			}
			return app.GetMsg(k.key)
		}
	}
	return fmt.Sprintf("%s: %v", app.GetMsg(config.TKeyErrUnexpected), err)
}
