package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/model"
	"github.com/inovacc/patientdesk/internal/store"
)

const (
	inputBaseURL = iota
	inputPaging
	inputPageSize
	inputSort
	inputTimeout
	inputCount
)

var configureLabels = [inputCount]string{
	"Backend URL:",
	"Paging mode (client/server):",
	"Page size:",
	"Sort (field,asc|desc):",
	"Request timeout:",
}

type ConfigureModel struct {
	focusIndex int
	inputs     []textinput.Model
	db         store.Store
	Saved      bool
	Err        error
}

func NewConfigureModel(db store.Store) (*ConfigureModel, error) {
	cfg, err := db.GetConfig()
	if err != nil {
		return nil, err
	}

	m := &ConfigureModel{
		inputs: make([]textinput.Model, inputCount),
		db:     db,
	}

	for i := range m.inputs {
		t := textinput.New()
		t.Cursor.Style = cursorStyle
		t.CharLimit = 256

		switch i {
		case inputBaseURL:
			t.Placeholder = "http://localhost:8080"
			t.SetValue(cfg.BaseURL)
			t.Focus()
			t.PromptStyle = focusedStyle
			t.TextStyle = focusedStyle
		case inputPaging:
			t.Placeholder = string(model.PagingServer)
			t.CharLimit = 6
			t.SetValue(string(cfg.PagingMode))
		case inputPageSize:
			t.Placeholder = "10"
			t.CharLimit = 4
			t.SetValue(strconv.Itoa(cfg.PageSize))
		case inputSort:
			t.Placeholder = "id,asc"
			t.SetValue(cfg.SortField + "," + cfg.SortDir)
		case inputTimeout:
			t.Placeholder = "30s"
			t.CharLimit = 16
			t.SetValue(cfg.Timeout.String())
		}

		m.inputs[i] = t
	}

	return m, nil
}

type configureKeyMap struct {
	Next, Prev, Submit, Quit key.Binding
}

var configureKeys = configureKeyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
	Submit: key.NewBinding(key.WithKeys("enter")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc")),
}

func (m *ConfigureModel) Init() tea.Cmd {
	return textinput.Blink
}

// onButton reports whether focus sits on the submit button after the inputs.
func (m *ConfigureModel) onButton() bool {
	return m.focusIndex == len(m.inputs)
}

// moveFocus shifts focus by delta, wrapping over the inputs and the button.
func (m *ConfigureModel) moveFocus(delta int) tea.Cmd {
	n := len(m.inputs) + 1
	m.focusIndex = ((m.focusIndex+delta)%n + n) % n

	var cmd tea.Cmd

	for i := range m.inputs {
		if i != m.focusIndex {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = noStyle
			m.inputs[i].TextStyle = noStyle

			continue
		}

		cmd = m.inputs[i].Focus()
		m.inputs[i].PromptStyle = focusedStyle
		m.inputs[i].TextStyle = focusedStyle
	}

	return cmd
}

func (m *ConfigureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case successMsg:
		m.Saved = true

		return m, tea.Quit

	case errMsg:
		m.Err = msg.err

		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, configureKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, configureKeys.Submit) && m.onButton():
			return m, m.saveConfig
		case key.Matches(msg, configureKeys.Next), key.Matches(msg, configureKeys.Submit):
			return m, m.moveFocus(1)
		case key.Matches(msg, configureKeys.Prev):
			return m, m.moveFocus(-1)
		}
	}

	if m.onButton() {
		return m, nil
	}

	var cmd tea.Cmd

	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)

	return m, cmd
}

func (m *ConfigureModel) View() string {
	if m.Saved {
		return successStyle.Render("\n  ✓ Settings saved\n\n")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("patientdesk settings") + "\n")
	b.WriteString(blurredStyle.Render("Tab moves between fields, Enter on Submit saves") + "\n\n")

	for i, label := range configureLabels {
		b.WriteString(fmt.Sprintf(fmtV1, blurredStyle.Render(label), m.inputs[i].View()))
	}

	button := blurredButton
	if m.onButton() {
		button = focusedButton
	}

	b.WriteString("\n " + button + "\n\n")

	if m.Err != nil {
		b.WriteString(errorStyle.Render("✗ "+m.Err.Error()) + "\n\n")
	}

	b.WriteString(helpStyle.Render(" tab/shift+tab: move • enter: next/submit • esc: quit"))

	return b.String()
}

// Config parses the inputs into a settings value.
func (m *ConfigureModel) Config() (*model.Config, error) {
	return ParseConfig(
		m.inputs[inputBaseURL].Value(),
		m.inputs[inputPaging].Value(),
		m.inputs[inputPageSize].Value(),
		m.inputs[inputSort].Value(),
		m.inputs[inputTimeout].Value(),
	)
}

func (m *ConfigureModel) saveConfig() tea.Msg {
	cfg, err := m.Config()
	if err != nil {
		return errMsg{err}
	}

	if err := m.db.SaveConfig(cfg); err != nil {
		return errMsg{err}
	}

	return successMsg{}
}

// ParseConfig validates settings given as text.
func ParseConfig(baseURL, paging, pageSize, sort, timeout string) (*model.Config, error) {
	baseURL = strings.TrimSpace(baseURL)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("backend URL must start with http:// or https://")
	}

	mode := model.PagingMode(strings.ToLower(strings.TrimSpace(paging)))
	if !mode.Valid() {
		return nil, fmt.Errorf("paging mode must be %q or %q", model.PagingClient, model.PagingServer)
	}

	size, err := strconv.Atoi(strings.TrimSpace(pageSize))
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("page size must be a positive number")
	}

	s, err := core.ParseSort(sort)
	if err != nil {
		return nil, err
	}

	dir := "asc"
	if s.Desc {
		dir = "desc"
	}

	d, err := time.ParseDuration(strings.TrimSpace(timeout))
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("timeout must be a positive duration such as 30s")
	}

	return &model.Config{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		PagingMode: mode,
		PageSize:   size,
		SortField:  s.Field,
		SortDir:    dir,
		Timeout:    d,
	}, nil
}

type successMsg struct{}
type errMsg struct{ err error }
