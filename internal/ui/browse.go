// Package ui is the interactive document browser. It shows the documents
// table with only the columns that fit the terminal, filters it fuzzily and
// opens a detail view listing every column of the selected document.
package ui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/notify"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/internal/render"
	"github.com/oakwood-commons/cashbook/internal/ui/table"
	"github.com/oakwood-commons/cashbook/pkg/columns"
	"github.com/oakwood-commons/cashbook/pkg/core"
)

// Source is what the browser reads from; *core.Engine satisfies it.
type Source interface {
	Documents(ctx context.Context, q core.DocumentQuery) ([]ledger.DocumentEnhanced, error)
	Columns(ctx context.Context, table string) ([]columns.Descriptor, error)
	Subscribe(patterns ...notify.Collection) (<-chan core.Change, func())
}

type mode int

const (
	modeTable mode = iota
	modeFilter
	modeDetail
)

// chromeLines is the title and footer around the table.
const chromeLines = 3

type loadedMsg struct {
	docs []ledger.DocumentEnhanced
	cols []columns.Descriptor
	err  error
}

type changedMsg struct{}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model browses documents.
type Model struct {
	ctx   context.Context
	src   Source
	query core.DocumentQuery

	table *table.Model[ledger.DocumentEnhanced]
	input textinput.Model
	mode  mode

	changes <-chan core.Change
	stop    func()

	width   int
	height  int
	noColor bool
	loaded  bool
	status  string
	err     error
}

// Option configures a Model.
type Option func(*Model)

// WithQuery narrows the documents the browser loads.
func WithQuery(q core.DocumentQuery) Option {
	return func(m *Model) { m.query = q }
}

// WithNoColor disables styling.
func WithNoColor(noColor bool) Option {
	return func(m *Model) { m.noColor = noColor }
}

// WithLayout sets the pixels per cell and the reserved buffer used for
// column selection.
func WithLayout(cellWidth, buffer int) Option {
	return func(m *Model) { m.table.SetLayout(cellWidth, buffer) }
}

// NewModel creates a browser over src. It subscribes to document and column
// changes; Close releases the subscription.
func NewModel(ctx context.Context, src Source, opts ...Option) *Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "title, number or counterparty"

	m := &Model{
		ctx:   ctx,
		src:   src,
		input: ti,
		table: table.NewModel[ledger.DocumentEnhanced](nil,
			func(d ledger.DocumentEnhanced) any { return d },
			documentKey),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.table.SetNoColor(m.noColor)
	m.changes, m.stop = src.Subscribe(notify.Documents, notify.TableColumns)
	return m
}

func documentKey(d ledger.DocumentEnhanced) string {
	return strings.Join([]string{d.Title, d.Number, d.DisplayCounterparty()}, " ")
}

// Close stops listening for changes.
func (m *Model) Close() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
}

// Init loads the first page and starts watching for changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange(), textinput.Blink)
}

func (m *Model) load() tea.Cmd {
	ctx, src, q := m.ctx, m.src, m.query
	return func() tea.Msg {
		cols, err := src.Columns(ctx, registry.TableDocuments)
		if err != nil {
			return loadedMsg{err: err}
		}
		docs, err := src.Documents(ctx, q)
		return loadedMsg{docs: docs, cols: cols, err: err}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetSize(msg.Width, max(msg.Height-chromeLines, 1))
		m.input.SetWidth(max(msg.Width-lipgloss.Width(m.input.Prompt)-1, 1))
		return m, nil

	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.loaded = true
			m.table.SetColumns(msg.cols)
			m.table.SetRows(msg.docs)
		}
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.load(), m.waitForChange())

	case tea.KeyPressMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateTable(msg)
		}
	}

	if m.mode == modeFilter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateTable(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch ActionFor(msg.String()) {
	case ActionQuit, ActionForceQuit:
		return m, tea.Quit
	case ActionFilter:
		m.mode = modeFilter
		m.input.SetValue(m.table.Filter())
		m.table.Blur()
		return m, m.input.Focus()
	case ActionClear:
		m.table.ClearFilter()
		m.input.SetValue("")
		m.status = ""
		return m, nil
	case ActionDetail:
		if m.table.SelectedRow() != nil {
			m.mode = modeDetail
		}
		return m, nil
	case ActionReload:
		m.status = "reloaded"
		return m, m.load()
	case ActionCopy:
		m.copySelected()
		return m, nil
	}
	_, cmd := m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.leaveFilter()
		return m, nil
	case "esc":
		m.input.SetValue("")
		m.table.ClearFilter()
		m.leaveFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.table.SetFilter(strings.TrimSpace(m.input.Value()))
	return m, cmd
}

func (m *Model) leaveFilter() {
	m.mode = modeTable
	m.input.Blur()
	m.table.Focus()
}

func (m *Model) updateDetail(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch detailActionFor(msg.String()) {
	case ActionQuit, ActionForceQuit:
		return m, tea.Quit
	case ActionBack:
		m.mode = modeTable
	case ActionCopy:
		m.copySelected()
	}
	return m, nil
}

// copySelected copies the document number, or the id when it has none.
func (m *Model) copySelected() {
	sel := m.table.SelectedRow()
	if sel == nil {
		return
	}
	text := sel.Number
	if text == "" {
		text = sel.ID
	}
	if err := CopyToClipboard(text); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + text
}

// Selected returns the highlighted document.
func (m *Model) Selected() (ledger.DocumentEnhanced, bool) {
	sel := m.table.SelectedRow()
	if sel == nil {
		return ledger.DocumentEnhanced{}, false
	}
	return *sel, true
}

// View renders the browser in the alternate screen.
func (m *Model) View() tea.View {
	v := tea.NewView(m.content())
	v.AltScreen = true
	return v
}

func (m *Model) content() string {
	var b strings.Builder
	b.WriteString(m.style(titleStyle, m.title()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.style(errorStyle, "error: "+m.err.Error()))
		b.WriteString("\n")
	case !m.loaded:
		b.WriteString("loading...\n")
	case m.mode == modeDetail:
		if sel := m.table.SelectedRow(); sel != nil {
			pairs := render.DetailPairs(*sel, m.table.Columns())
			b.WriteString(render.Detail(pairs, m.noColor, m.width))
		}
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if m.mode == modeFilter {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.style(footerStyle, m.footer()))
	return b.String()
}

func (m *Model) title() string {
	if m.mode == modeDetail {
		if sel := m.table.SelectedRow(); sel != nil {
			return "Document " + sel.Title
		}
	}
	shown, total := len(m.table.Rows()), len(m.table.AllRows())
	t := fmt.Sprintf("Documents (%d)", total)
	if shown != total {
		t = fmt.Sprintf("Documents (%d of %d)", shown, total)
	}
	if f := m.table.Filter(); f != "" && m.mode != modeFilter {
		t += fmt.Sprintf(" matching %q", f)
	}
	return t
}

func (m *Model) footer() string {
	var parts []string
	switch m.mode {
	case modeDetail:
		parts = append(parts, "esc back", "y copy", "q quit")
	case modeFilter:
		parts = append(parts, "enter apply", "esc clear")
	default:
		if n := m.table.HiddenCount(); n > 0 && m.loaded {
			parts = append(parts, fmt.Sprintf("%d columns hidden", n))
		}
		parts = append(parts, "/ filter", "enter detail", "r reload", "q quit")
	}
	if m.status != "" {
		parts = append([]string{m.status}, parts...)
	}
	return strings.Join(parts, " · ")
}

func (m *Model) style(s lipgloss.Style, text string) string {
	if m.noColor {
		return text
	}
	return s.Render(text)
}
