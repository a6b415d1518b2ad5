package batches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	pyrolysisdto "biochar/internal/modules/pyrolysis/dto"
	"biochar/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// HistoryPort lists the batches visible to the current actor, newest first.
type HistoryPort interface {
	History(ctx context.Context) ([]pyrolysisdto.BatchOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type HistoryLoadedMsg struct {
	Batches []pyrolysisdto.BatchOutput
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type batchItem struct {
	batch pyrolysisdto.BatchOutput
	kiln  string
}

func (i batchItem) Title() string {
	return i.batch.StartTime.Local().Format("2006-01-02 15:04") + "  " + i.kiln
}

func (i batchItem) Description() string {
	if i.batch.Completed() {
		return fmt.Sprintf("%s  %g → %g kg", theme.Status(i.batch.Status), i.batch.InputQuantity, i.batch.OutputQuantity)
	}
	return fmt.Sprintf("%s  %g kg", theme.Status(i.batch.Status), i.batch.InputQuantity)
}

func (i batchItem) FilterValue() string { return i.kiln + " " + i.batch.ID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     HistoryPort
	list     list.Model
	preview  viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	batches  []pyrolysisdto.BatchOutput
	names    Names
	loading  bool
	err      error
	width    int
	height   int
}

// Names maps kiln and biomass type ids to display names.
type Names struct {
	Kilns   map[string]string
	Biomass map[string]string
}

func (n Names) kiln(id string) string {
	if name, ok := n.Kilns[id]; ok {
		return name
	}
	return id
}

func (n Names) biomass(id string) string {
	if name, ok := n.Biomass[id]; ok {
		return name
	}
	return id
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Batches"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:     port,
		list:     l,
		preview:  viewport.New(0, 0),
		spinner:  sp,
		renderer: newRenderer(0),
		loading:  true,
	}
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload re-reads the history from the store.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return HistoryLoadedMsg{}
		}
		batches, err := m.port.History(context.Background())
		return HistoryLoadedMsg{Batches: batches, Err: err}
	}
}

// SetNames replaces the id → name lookup used for display.
func (m *Model) SetNames(names Names) tea.Cmd {
	m.names = names
	return m.setItems()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case HistoryLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.batches = msg.Batches
			cmds = append(cmds, m.setItems())
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.refreshPreview()
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setItems() tea.Cmd {
	items := make([]list.Item, len(m.batches))
	for i, b := range m.batches {
		items[i] = batchItem{batch: b, kiln: m.names.kiln(b.KilnID)}
	}
	cmd := m.list.SetItems(items)
	m.refreshPreview()
	return cmd
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	m.list.SetSize(listW, m.height)
	m.preview.Width = m.width - listW - 4
	m.preview.Height = m.height - 2
	m.renderer = newRenderer(m.preview.Width)
	m.refreshPreview()
}

func (m *Model) refreshPreview() {
	item, ok := m.list.SelectedItem().(batchItem)
	if !ok {
		m.preview.SetContent(theme.Muted.Render("No batches yet."))
		return
	}
	md := DetailMarkdown(item.batch, m.names.kiln(item.batch.KilnID), m.names.biomass(item.batch.BiomassTypeID))
	if m.renderer == nil {
		m.preview.SetContent(md)
		return
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		m.preview.SetContent(md)
		return
	}
	m.preview.SetContent(out)
	m.preview.GotoTop()
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading batches…")
	}
	if m.err != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Fail.Render("history: "+m.err.Error()))
	}

	listW := m.width * 4 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.preview.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Active returns the in-progress batch among the loaded history, if any.
func (m Model) Active() (pyrolysisdto.BatchOutput, bool) {
	for _, b := range m.batches {
		if !b.Completed() {
			return b, true
		}
	}
	return pyrolysisdto.BatchOutput{}, false
}

// Filtering reports whether the list's search filter is active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// DetailMarkdown renders one batch as the markdown shown in the preview pane.
func DetailMarkdown(b pyrolysisdto.BatchOutput, kiln, biomass string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", kiln)
	fmt.Fprintf(&sb, "**Status:** %s\n\n", b.Status)
	sb.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Batch | `%s` |\n", b.ID)
	fmt.Fprintf(&sb, "| Biomass | %s |\n", biomass)
	fmt.Fprintf(&sb, "| Started | %s |\n", b.StartTime.Local().Format(time.DateTime))
	fmt.Fprintf(&sb, "| Input | %g kg |\n", b.InputQuantity)
	if b.Completed() {
		fmt.Fprintf(&sb, "| Ended | %s |\n", b.EndTime.Local().Format(time.DateTime))
		fmt.Fprintf(&sb, "| Duration | %s |\n", b.EndTime.Sub(b.StartTime).Round(time.Minute))
		fmt.Fprintf(&sb, "| Output | %g kg |\n", b.OutputQuantity)
		fmt.Fprintf(&sb, "| Yield | %.1f%% |\n", b.YieldPercent)
		fmt.Fprintf(&sb, "| Photo | `%s` |\n", b.PhotoRef)
	} else {
		sb.WriteString("\n_Pyrolysis in progress. End it with output and a photo._\n")
	}
	return sb.String()
}
