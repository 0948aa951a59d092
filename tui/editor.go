// Package tui is the interactive manifest editor. It renders the tool
// manifest as a table, applies the positional edits from the manifest
// package, and saves through the file store so the usual backup
// generation applies.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/action"
	"github.com/tackle-labs/tacklebox/manifest"
)

// dividerRow is how separator records render in the table.
const dividerRow = "↕ Divider"

// ─────────────────────────────────────────────────────
// Styles
// ─────────────────────────────────────────────────────

var (
	primaryColor = lipgloss.Color("#7C3AED") // violet
	mutedColor   = lipgloss.Color("#6B7280") // gray
	errorColor   = lipgloss.Color("#EF4444") // red
	warnColor    = lipgloss.Color("#F59E0B") // amber

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			PaddingLeft(1)

	dirtyStyle = lipgloss.NewStyle().
			Foreground(warnColor).
			Bold(true)

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			PaddingLeft(1)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			PaddingLeft(1)

	formTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1)

	formLabelStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	formBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)
)

// ─────────────────────────────────────────────────────
// Model
// ─────────────────────────────────────────────────────

type mode int

const (
	modeList mode = iota
	modeForm
)

// Model is the Bubble Tea model for the manifest editor.
type Model struct {
	store   *manifest.FileStore
	actions *action.Table
	records []manifest.Record

	// Events receives EventManifestSaved after each successful save. Nil
	// drops it.
	Events tacklebox.EventHandler

	tbl    table.Model
	inputs []textinput.Model
	focus  int

	mode        mode
	dirty       bool
	confirmQuit bool
	status      string
	statusErr   bool
	width       int
	height      int
}

// New builds an editor over the given records. actions may be nil; when
// present, records whose reference does not resolve are flagged in-row.
func New(store *manifest.FileStore, records []manifest.Record, actions *action.Table) Model {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Action", Width: 28},
		{Title: "Submenu", Width: 18},
		{Title: "On", Width: 3},
		{Title: "Note", Width: 12},
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(primaryColor).
		Bold(false)
	tbl.SetStyles(s)

	m := Model{
		store:   store,
		actions: actions,
		records: records,
		tbl:     tbl,
		mode:    modeList,
	}
	m.refreshRows()
	return m
}

// Load reads the manifest from the store and builds an editor over it.
func Load(ctx context.Context, store *manifest.FileStore, actions *action.Table) (Model, error) {
	records, err := store.Load(ctx)
	if err != nil {
		return Model{}, err
	}
	return New(store, records, actions), nil
}

// Run drives the editor to completion in the alternate screen.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Records returns the working record list, including unsaved edits.
func (m Model) Records() []manifest.Record {
	out := make([]manifest.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Dirty reports whether the working list has unsaved edits.
func (m Model) Dirty() bool { return m.dirty }

// ─────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 7 // title, borders, status, help
		if h < 4 {
			h = 4
		}
		m.tbl.SetHeight(h)
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	if m.mode == modeForm {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	} else {
		m.tbl, cmd = m.tbl.Update(msg)
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" && key != "esc" {
		m.confirmQuit = false
	}

	switch key {
	case "ctrl+c":
		return m, tea.Quit

	case "q", "esc":
		if m.dirty && !m.confirmQuit {
			m.confirmQuit = true
			m.setStatus("unsaved changes: press q again to discard, s to save", true)
			return m, nil
		}
		return m, tea.Quit

	case "a":
		return m.openForm()

	case "d":
		return m.deleteSelected()

	case "t":
		return m.toggleSelected()

	case "-":
		return m.insertDivider()

	case "K", "shift+up":
		return m.moveSelected(-1)

	case "J", "shift+down":
		return m.moveSelected(1)

	case "s":
		return m.save()
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	if len(m.records) == 0 {
		return m, nil
	}
	i := m.tbl.Cursor()
	name := m.records[i].Name
	m.records = manifest.Remove(m.records, i)
	m.dirty = true
	m.refreshRows()
	if i >= len(m.records) && i > 0 {
		m.tbl.SetCursor(len(m.records) - 1)
	}
	m.setStatus(fmt.Sprintf("removed %q", name), false)
	return m, nil
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	if len(m.records) == 0 {
		return m, nil
	}
	i := m.tbl.Cursor()
	rec := m.records[i]
	if rec.IsSeparator() {
		return m, nil
	}
	enabled := !rec.EnabledOrDefault()
	m.records = manifest.SetEnabled(m.records, i, enabled)
	m.dirty = true
	m.refreshRows()
	verb := "disabled"
	if enabled {
		verb = "enabled"
	}
	m.setStatus(fmt.Sprintf("%s %q", verb, rec.Name), false)
	return m, nil
}

func (m Model) insertDivider() (tea.Model, tea.Cmd) {
	at := 0
	if len(m.records) > 0 {
		at = m.tbl.Cursor() + 1
	}
	m.records = manifest.Insert(m.records, at, manifest.NewDivider())
	m.dirty = true
	m.refreshRows()
	m.tbl.SetCursor(at)
	m.setStatus("inserted divider", false)
	return m, nil
}

func (m Model) moveSelected(delta int) (tea.Model, tea.Cmd) {
	if len(m.records) < 2 {
		return m, nil
	}
	i := m.tbl.Cursor()
	to := i + delta
	if to < 0 || to >= len(m.records) {
		return m, nil
	}
	m.records = manifest.Move(m.records, i, to)
	m.dirty = true
	m.refreshRows()
	m.tbl.SetCursor(to)
	return m, nil
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if err := m.store.Save(context.Background(), m.records); err != nil {
		m.setStatus("save failed: "+err.Error(), true)
		return m, nil
	}
	if m.Events != nil {
		m.Events(tacklebox.NewEvent(tacklebox.EventManifestSaved, "").
			WithPath(m.store.Path()).
			WithPayload("records", len(m.records)))
	}
	m.dirty = false
	m.refreshRows()
	m.setStatus(fmt.Sprintf("saved %d records to %s", len(m.records), m.store.Path()), false)
	return m, nil
}

// ─────────────────────────────────────────────────────
// Add form
// ─────────────────────────────────────────────────────

var formLabels = [...]string{"Name", "Module", "Function", "Submenu", "Icon"}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	placeholders := [...]string{
		"Export missing media",
		"media",
		"export_missing",
		"Maintenance::Media (optional)",
		"media-scan.svg (optional)",
	}

	m.inputs = make([]textinput.Model, len(placeholders))
	for i, ph := range placeholders {
		ti := textinput.New()
		ti.Placeholder = ph
		ti.CharLimit = 128
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.focus = 0
	m.mode = modeForm
	m.status = ""

	return m, tea.Batch(m.inputs[0].Focus(), textinput.Blink)
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.mode = modeList
		m.setStatus("add canceled", false)
		return m, nil

	case "enter":
		return m.submitForm()

	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.inputs)
		return m, m.focusInput()

	case "shift+tab", "up":
		m.focus--
		if m.focus < 0 {
			m.focus = len(m.inputs) - 1
		}
		return m, m.focusInput()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) focusInput() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	rec := manifest.Record{
		Name:     strings.TrimSpace(m.inputs[0].Value()),
		Module:   strings.TrimSpace(m.inputs[1].Value()),
		Function: strings.TrimSpace(m.inputs[2].Value()),
		Submenu:  strings.TrimSpace(m.inputs[3].Value()),
		Icon:     strings.TrimSpace(m.inputs[4].Value()),
	}

	if rec.Name == "" || rec.Module == "" || rec.Function == "" {
		m.setStatus("name, module, and function are required", true)
		return m, nil
	}

	at := 0
	if len(m.records) > 0 {
		at = m.tbl.Cursor() + 1
	}
	m.records = manifest.Insert(m.records, at, rec)
	m.dirty = true
	m.mode = modeList
	m.refreshRows()
	m.tbl.SetCursor(at)
	m.setStatus(fmt.Sprintf("added %q", rec.Name), false)
	return m, nil
}

// ─────────────────────────────────────────────────────
// View
// ─────────────────────────────────────────────────────

func (m Model) View() string {
	if m.mode == modeForm {
		return m.formView()
	}
	return m.listView()
}

func (m Model) listView() string {
	title := titleStyle.Render("Tacklebox Tools")
	path := pathStyle.Render(m.store.Path())
	if m.dirty {
		path += dirtyStyle.Render(" ● unsaved")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, path)

	body := tableStyle.Render(m.tbl.View())

	help := helpStyle.Render(
		"a add • d delete • t toggle • shift+↑/↓ move • - divider • s save • q quit",
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusLine(), help)
}

func (m Model) formView() string {
	var sb strings.Builder
	sb.WriteString(formTitleStyle.Render("Add Tool"))
	sb.WriteString("\n\n")

	for i, input := range m.inputs {
		sb.WriteString(formLabelStyle.Render(formLabels[i]))
		sb.WriteString("\n")
		sb.WriteString(input.View())
		sb.WriteString("\n\n")
	}

	sb.WriteString(helpStyle.Render("enter add • tab next field • esc cancel"))

	return lipgloss.JoinVertical(lipgloss.Left,
		formBoxStyle.Render(sb.String()),
		m.statusLine(),
	)
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return statusErrStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// ─────────────────────────────────────────────────────
// Rows
// ─────────────────────────────────────────────────────

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.records))
	for _, rec := range m.records {
		rows = append(rows, recordRow(rec, m.actions))
	}
	m.tbl.SetRows(rows)
}

// recordRow renders one manifest record as a table row. Action records
// that do not resolve against the table are flagged, record problems are
// flagged over that, and nothing here is fatal: the editor exists to fix
// exactly these rows.
func recordRow(rec manifest.Record, actions *action.Table) table.Row {
	if rec.IsSeparator() {
		return table.Row{dividerRow, "", "", "", ""}
	}

	on := "✓"
	if !rec.EnabledOrDefault() {
		on = "·"
	}

	if rec.IsLabel() {
		return table.Row{rec.Name, "", rec.Submenu, on, "label"}
	}

	note := ""
	if issue := rec.Validate(); issue != "" {
		note = "invalid"
	} else if actions != nil && !actions.Has(rec.Ref()) {
		note = "unresolved"
	}
	return table.Row{rec.Name, rec.Ref(), rec.Submenu, on, note}
}
