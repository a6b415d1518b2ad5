package catalog

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"biochar/internal/ui/theme"
)

// Entry is one row of reference data.
type Entry struct {
	ID     string
	Name   string
	Detail string
}

// Loader fetches the entries shown by one catalog tab.
type Loader func(ctx context.Context) ([]Entry, error)

// LoadedMsg carries the result of a Loader run for the tab named Kind.
type LoadedMsg struct {
	Kind    string
	Entries []Entry
	Err     error
}

type entryItem struct{ entry Entry }

func (i entryItem) Title() string       { return i.entry.Name }
func (i entryItem) Description() string { return i.entry.Detail }
func (i entryItem) FilterValue() string { return i.entry.Name }

// Model lists kilns or biomass types. The highlighted rows of both tabs are
// what batch:start uses when no ids are typed.
type Model struct {
	kind    string
	load    Loader
	list    list.Model
	entries []Entry
	err     error
	width   int
	height  int
}

func New(kind, title string, load Loader) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = title
	l.Styles.Title = theme.Title
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return Model{kind: kind, load: load, list: l}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

func (m Model) Reload() tea.Cmd {
	kind, load := m.kind, m.load
	return func() tea.Msg {
		if load == nil {
			return LoadedMsg{Kind: kind}
		}
		entries, err := load(context.Background())
		return LoadedMsg{Kind: kind, Entries: entries, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case LoadedMsg:
		if msg.Kind != m.kind {
			return m, nil
		}
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.entries = msg.Entries
		items := make([]list.Item, len(msg.Entries))
		for i, e := range msg.Entries {
			items[i] = entryItem{entry: e}
		}
		return m, m.list.SetItems(items)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.err != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Fail.Render(m.kind+": "+m.err.Error()))
	}
	return m.list.View()
}

// Selected returns the highlighted entry, if any.
func (m Model) Selected() (Entry, bool) {
	if item, ok := m.list.SelectedItem().(entryItem); ok {
		return item.entry, true
	}
	return Entry{}, false
}

// Names maps entry ids to names.
func (m Model) Names() map[string]string {
	out := make(map[string]string, len(m.entries))
	for _, e := range m.entries {
		out[e.ID] = e.Name
	}
	return out
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
