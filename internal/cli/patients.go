package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/model"
)

// sortFields is the cycle order of the "s" key.
var sortFields = []string{
	"id",
	string(model.FieldLastName),
	string(model.FieldFirstName),
	string(model.FieldCity),
	string(model.FieldState),
	string(model.FieldEmail),
}

var columnWidths = map[model.Field]int{
	model.FieldFirstName:   12,
	model.FieldLastName:    12,
	model.FieldAddress:     20,
	model.FieldCity:        12,
	model.FieldState:       6,
	model.FieldZipCode:     7,
	model.FieldPhoneNumber: 14,
	model.FieldEmail:       22,
}

type browseKeyMap struct {
	Up, Down, Prev, Next   key.Binding
	Search, View, Edit     key.Binding
	Add, EditForm, Delete  key.Binding
	Sort, SortDir, Refresh key.Binding
	Quit                   key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Prev, k.Next, k.View, k.Edit, k.Add, k.EditForm, k.Delete, k.Sort, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Prev, k.Next},
		{k.Search, k.View, k.Edit, k.Add, k.EditForm, k.Delete},
		{k.Sort, k.SortDir, k.Refresh, k.Quit},
	}
}

var browseKeys = browseKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Prev:     key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),
	Next:     key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	View:     key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "details")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit row")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	EditForm: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit in form")),
	Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	SortDir:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sort dir")),
	Refresh:  key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// resultMsg carries the outcome of a backend effect into Update.
type resultMsg struct {
	msg core.Msg
}

// PatientsModel is the interactive patient table.
type PatientsModel struct {
	ctx   context.Context
	coord *core.Coordinator

	table  table.Model
	pager  paginator.Model
	search textinput.Model
	help   help.Model

	searching bool
	formOpen  bool

	rowEditID int64
	rowInputs fieldInputs
	form      fieldInputs

	flash    string
	width    int
	quitting bool
}

// NewPatientsModel builds the table UI around coord. Backend calls made by
// the model use ctx.
func NewPatientsModel(ctx context.Context, coord *core.Coordinator) *PatientsModel {
	columns := []table.Column{{Title: "ID", Width: 6}}
	for _, f := range model.Fields {
		columns = append(columns, table.Column{Title: f.Label(), Width: columnWidths[f]})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(coord.List().PageSize()+1),
		table.WithStyles(tableStyles()),
	)

	p := paginator.New()
	p.Type = paginator.Arabic

	s := textinput.New()
	s.Prompt = "/ "
	s.Placeholder = "search patients"
	s.Cursor.Style = cursorStyle
	s.Cursor.SetMode(cursor.CursorStatic)
	s.CharLimit = 64

	m := &PatientsModel{
		ctx:    ctx,
		coord:  coord,
		table:  t,
		pager:  p,
		search: s,
		help:   help.New(),
	}
	m.sync()

	return m
}

// Init performs the first fetch.
func (m *PatientsModel) Init() tea.Cmd {
	return m.apply(core.Reload{})
}

// Coordinator exposes the state behind the view.
func (m *PatientsModel) Coordinator() *core.Coordinator { return m.coord }

// apply routes msg through the coordinator and turns the resulting effects
// into commands that run off the event loop.
func (m *PatientsModel) apply(msg core.Msg) tea.Cmd {
	effects := m.coord.Apply(msg)
	m.sync()

	if len(effects) == 0 {
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(effects))
	for _, e := range effects {
		cmds = append(cmds, func() tea.Msg {
			return resultMsg{msg: m.coord.Run(m.ctx, e)}
		})
	}

	return tea.Batch(cmds...)
}

// sync copies list state into the widgets.
func (m *PatientsModel) sync() {
	list := m.coord.List()
	editID, editing := list.EditTarget()

	rows := make([]table.Row, 0, list.PageSize())
	for _, p := range list.Visible() {
		row := p.Values()
		if editing && p.ID == editID {
			row[0] = "✎ " + row[0]
		}

		rows = append(rows, row)
	}

	m.table.SetRows(rows)

	// SetCursor clamps to -1 on an empty table, so only move it when
	// there is a row to land on.
	if c := m.table.Cursor(); len(rows) > 0 && (c < 0 || c >= len(rows)) {
		m.table.SetCursor(min(max(c, 0), len(rows)-1))
	}

	m.pager.TotalPages = max(list.PageCount(), 1)
	m.pager.Page = list.PageIndex()

	if !editing {
		m.rowEditID = 0
	} else if editID != m.rowEditID {
		scratch, _ := list.Scratch()
		m.rowEditID = editID
		m.rowInputs = newFieldInputs(scratch)
	}
}

// selected returns the row under the table cursor.
func (m *PatientsModel) selected() (model.Patient, error) {
	visible := m.coord.List().Visible()

	c := m.table.Cursor()
	if c < 0 || c >= len(visible) {
		return model.Patient{}, core.ErrNoRecord
	}

	return visible[c], nil
}

func (m *PatientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

		return m, nil

	case resultMsg:
		return m, m.apply(msg.msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true

			return m, tea.Quit
		}

		m.flash = ""
		list := m.coord.List()

		switch {
		case m.formOpen:
			return m, m.updateForm(msg)
		case list.State() == core.EditingRow:
			return m, m.updateRowEdit(msg)
		case isPending(list):
			return m, m.updateConfirm(msg)
		case list.Viewing() != nil:
			return m, m.updateDetail(msg)
		case m.searching:
			return m, m.updateSearch(msg)
		}

		return m, m.updateBrowse(msg)
	}

	return m, nil
}

func isPending(l *core.ListController) bool {
	_, ok := l.PendingDelete()

	return ok
}

func (m *PatientsModel) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	withSelected := func(fn func(p model.Patient) tea.Cmd) tea.Cmd {
		p, err := m.selected()
		if err != nil {
			m.flash = err.Error()

			return nil
		}

		return fn(p)
	}

	switch {
	case key.Matches(msg, browseKeys.Quit):
		m.quitting = true

		return tea.Quit

	case key.Matches(msg, browseKeys.Search):
		m.searching = true
		m.search.Focus()

		return nil

	case key.Matches(msg, browseKeys.Prev):
		return m.apply(core.PrevPage{})

	case key.Matches(msg, browseKeys.Next):
		return m.apply(core.NextPage{})

	case key.Matches(msg, browseKeys.Refresh):
		return m.apply(core.Reload{})

	case key.Matches(msg, browseKeys.Sort):
		return m.apply(core.SetSort{Sort: nextSort(m.coord.List().Sort())})

	case key.Matches(msg, browseKeys.SortDir):
		s := m.coord.List().Sort()
		if s.Field == "" {
			s.Field = "id"
		}

		s.Desc = !s.Desc

		return m.apply(core.SetSort{Sort: s})

	case key.Matches(msg, browseKeys.Add):
		m.formOpen = true
		cmd := m.apply(core.LoadRecord{})
		m.form = newFieldInputs(m.coord.Editor().Working())

		return cmd

	case key.Matches(msg, browseKeys.View):
		return withSelected(func(p model.Patient) tea.Cmd {
			return m.apply(core.ViewRecord{ID: p.ID})
		})

	case key.Matches(msg, browseKeys.Edit):
		return withSelected(func(p model.Patient) tea.Cmd {
			return m.apply(core.BeginEdit{ID: p.ID})
		})

	case key.Matches(msg, browseKeys.EditForm):
		return withSelected(func(p model.Patient) tea.Cmd {
			cmd := m.apply(core.EditInForm{ID: p.ID})
			m.formOpen = true
			m.form = newFieldInputs(m.coord.Editor().Working())

			return cmd
		})

	case key.Matches(msg, browseKeys.Delete):
		return withSelected(func(p model.Patient) tea.Cmd {
			return m.apply(core.RequestDelete{ID: p.ID})
		})
	}

	var cmd tea.Cmd

	m.table, cmd = m.table.Update(msg)

	return cmd
}

func nextSort(cur core.Sort) core.Sort {
	for i, f := range sortFields {
		if f == cur.Field {
			return core.Sort{Field: sortFields[(i+1)%len(sortFields)], Desc: cur.Desc}
		}
	}

	return core.Sort{Field: sortFields[0], Desc: cur.Desc}
}

func (m *PatientsModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()

		return nil

	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")

		return m.apply(core.SetFilter{Term: ""})
	}

	before := m.search.Value()
	m.search, _ = m.search.Update(msg)

	if m.search.Value() == before {
		return nil
	}

	return m.apply(core.SetFilter{Term: m.search.Value()})
}

func (m *PatientsModel) updateRowEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return m.apply(core.CancelEdit{})
	case "enter":
		return m.apply(core.SaveEdit{})
	case "tab", "down":
		m.rowInputs.next()

		return nil
	case "shift+tab", "up":
		m.rowInputs.prev()

		return nil
	}

	if f, v, changed := m.rowInputs.update(msg); changed {
		return m.apply(core.EditField{Field: f, Value: v})
	}

	return nil
}

func (m *PatientsModel) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		return m.apply(core.ConfirmDelete{Yes: true})
	case "n", "N", "esc", "q":
		return m.apply(core.ConfirmDelete{Yes: false})
	}

	return nil
}

func (m *PatientsModel) updateDetail(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter", "q", "v":
		return m.apply(core.CloseView{})
	case "e":
		p := m.coord.List().Viewing()
		m.apply(core.CloseView{})

		return m.apply(core.BeginEdit{ID: p.ID})
	}

	return nil
}

func (m *PatientsModel) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.formOpen = false

		return m.apply(core.ResetForm{})

	case "enter", "ctrl+s":
		cmd := m.apply(core.SubmitForm{})
		if cmd != nil {
			// accepted: the editor has reset itself
			m.formOpen = false
		}

		return cmd

	case "tab", "down":
		m.form.next()

		return nil

	case "shift+tab", "up":
		m.form.prev()

		return nil
	}

	if f, v, changed := m.form.update(msg); changed {
		return m.apply(core.ChangeField{Field: f, Value: v})
	}

	return nil
}

func (m *PatientsModel) View() string {
	if m.quitting {
		return ""
	}

	list := m.coord.List()

	var b strings.Builder

	title := "Patients"
	if s := list.Sort(); s.Field != "" {
		title += blurredStyle.Render(fmt.Sprintf("  sorted by %s", s))
	}

	b.WriteString(titleStyle.Render(title) + "\n")

	if m.searching || list.FilterTerm() != "" {
		b.WriteString(m.search.View() + "\n")
	}

	b.WriteString(m.table.View() + "\n")
	b.WriteString(m.footer() + "\n")

	switch {
	case m.formOpen:
		b.WriteString(m.formView())
	case list.State() == core.EditingRow:
		b.WriteString(m.rowEditView())
	case isPending(list):
		id, _ := list.PendingDelete()
		b.WriteString(warnStyle.Render(fmt.Sprintf("Delete patient #%d? (y/n)", id)) + "\n")
	case list.Viewing() != nil:
		b.WriteString(detailView(*list.Viewing()))
	}

	b.WriteString(m.statusLine() + "\n")

	if !m.formOpen && list.State() == core.Browsing && !m.searching {
		b.WriteString(m.help.View(browseKeys))
	}

	return docStyle.Render(b.String())
}

func (m *PatientsModel) footer() string {
	list := m.coord.List()

	count := strconv.Itoa(list.FilteredCount())
	if list.Mode() == model.PagingServer {
		count = strconv.Itoa(len(list.Visible())) + " on page"
	} else {
		count += " patients"
	}

	parts := []string{"Page " + m.pager.View(), count}
	if list.Loading() {
		parts = append(parts, "loading…")
	}

	if list.Saving() {
		parts = append(parts, "saving…")
	}

	return blurredStyle.Render(strings.Join(parts, " • "))
}

func (m *PatientsModel) statusLine() string {
	if m.flash != "" {
		return errorStyle.Render(m.flash)
	}

	n := m.coord.Notice()

	switch {
	case n.Text == "":
		return ""
	case n.Error:
		return errorStyle.Render("✗ " + n.Text)
	default:
		return successStyle.Render("✓ " + n.Text)
	}
}

func (m *PatientsModel) rowEditView() string {
	id, _ := m.coord.List().EditTarget()

	body := fmt.Sprintf("Editing patient #%d\n\n", id) +
		m.rowInputs.view(m.coord.List().EditErrors()) + "\n" +
		helpStyle.Render("tab/shift+tab: field • enter: save • esc: cancel")

	return panelStyle.Render(body) + "\n"
}

func (m *PatientsModel) formView() string {
	title := "New patient"
	if w := m.coord.Editor().Working(); !w.IsNew() {
		title = fmt.Sprintf("Edit patient #%d", w.ID)
	}

	body := titleStyle.Render(title) + "\n" +
		m.form.view(m.coord.Editor().Errors()) + "\n" +
		helpStyle.Render("tab/shift+tab: field • enter: save • esc: cancel")

	return panelStyle.Render(body) + "\n"
}

func detailView(p model.Patient) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Patient #%d", p.ID))}
	for _, f := range model.Fields {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(f.Label()), " ", p.Get(f)))
	}

	lines = append(lines, "", helpStyle.Render("e: edit • esc: close"))

	return panelStyle.Render(strings.Join(lines, "\n")) + "\n"
}
