package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "biochar/internal/modules/catalog/dto"
	identitydto "biochar/internal/modules/identity/dto"
	pyrolysisdto "biochar/internal/modules/pyrolysis/dto"
	apperrors "biochar/internal/platform/errors"
	"biochar/internal/ui/components"
	"biochar/internal/ui/theme"
	batchesview "biochar/internal/ui/views/batches"
	catalogview "biochar/internal/ui/views/catalog"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type batchPort interface {
	Start(ctx context.Context, actor identitydto.Actor, kilnID, biomassTypeID string, inputKg float64) (pyrolysisdto.StartOutput, error)
	End(ctx context.Context, actor identitydto.Actor, batchID string, outputKg float64, photoName string, photo []byte) (pyrolysisdto.EndOutput, error)
	GetActive(ctx context.Context, actor identitydto.Actor) (pyrolysisdto.BatchOutput, error)
	History(ctx context.Context, actor identitydto.Actor, coordinatorID string) ([]pyrolysisdto.BatchOutput, error)
}

type catalogPort interface {
	ListKilns(ctx context.Context, coordinatorID string) ([]catalogdto.KilnOutput, error)
	ListBiomassTypes(ctx context.Context) ([]catalogdto.BiomassTypeOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabBatches tabID = iota
	tabKilns
	tabBiomass
	tabCount
)

var tabLabels = [tabCount]string{"Batches", "Kilns", "Biomass"}

const (
	kindKilns   = "kilns"
	kindBiomass = "biomass"
)

// ─── async messages ──────────────────────────────────────────────────────────

type activeLoadedMsg struct {
	active pyrolysisdto.BatchOutput
	err    error
}

type batchStartedMsg struct {
	out pyrolysisdto.StartOutput
	err error
}

type batchEndedMsg struct {
	out pyrolysisdto.EndOutput
	err error
}

// dataChangedMsg is sent when another process wrote to the database.
type dataChangedMsg struct{}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Start   key.Binding
	End     key.Binding
	Refresh key.Binding
}

func defaultKeys(operator bool) keyMap {
	k := keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start batch")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end batch")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
	k.Start.SetEnabled(operator)
	k.End.SetEnabled(operator)
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh},
		{k.Start, k.End},
		{k.Help, k.Palette, k.Quit},
	}
}

// paletteHints must stay in sync with executePalette.
func paletteHints(operator bool) []string {
	hints := []string{"batch:refresh"}
	if operator {
		hints = append([]string{
			"batch:start <input-kg>",
			"batch:start <kiln-id> <biomass-id> <input-kg>",
			"batch:end <output-kg> <photo-path>",
		}, hints...)
	}
	return hints
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the actor's
// active batch, the help overlay and the command palette. Lifecycle actions
// are only offered to actors that operate batches.
type Model struct {
	actor    identitydto.Actor
	operator bool
	changes  <-chan struct{}

	batches batchPort
	catalog catalogPort

	batchView   batchesview.Model
	kilnView    catalogview.Model
	biomassView catalogview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	active    pyrolysisdto.BatchOutput
	hasActive bool
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel builds the dashboard for actor. changes may be nil; when set,
// every receive triggers a full reload.
func NewModel(actor identitydto.Actor, batches batchPort, catalog catalogPort, changes <-chan struct{}) Model {
	operator := actor.OperatesBatches()
	m := Model{
		actor:     actor,
		operator:  operator,
		changes:   changes,
		batches:   batches,
		catalog:   catalog,
		activeTab: tabBatches,
		keys:      defaultKeys(operator),
		help:      help.New(),
		palette:   components.NewPalette(paletteHints(operator)...),
		status:    "ready",
	}
	m.batchView = batchesview.New(historyBridge{p: batches, actor: actor})
	m.kilnView = catalogview.New(kindKilns, "Kilns", m.loadKilns)
	m.biomassView = catalogview.New(kindBiomass, "Biomass types", m.loadBiomass)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.batchView.Init(),
		m.kilnView.Init(),
		m.biomassView.Init(),
		m.loadActiveCmd(),
		m.waitForChange(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case dataChangedMsg:
		m.status = "data changed, reloaded"
		return m, tea.Batch(m.reloadCmd(), m.waitForChange())

	case activeLoadedMsg:
		m.hasActive = false
		m.active = pyrolysisdto.BatchOutput{}
		switch {
		case msg.err == nil:
			m.hasActive = true
			m.active = msg.active
		case !errors.Is(msg.err, apperrors.ErrNoActiveBatch):
			m.status = describeError("active batch", msg.err)
		}
		return m, nil

	case batchStartedMsg:
		if msg.err != nil {
			m.status = describeError("start", msg.err)
			return m, nil
		}
		m.hasActive = true
		m.active = msg.out.Batch
		m.status = withWarnings(fmt.Sprintf("batch started on %s", m.kilnName(msg.out.Batch.KilnID)), msg.out.Warnings)
		m.activeTab = tabBatches
		return m, m.reloadCmd()

	case batchEndedMsg:
		if msg.err != nil {
			m.status = describeError("end", msg.err)
			return m, nil
		}
		m.hasActive = false
		m.active = pyrolysisdto.BatchOutput{}
		m.status = withWarnings(fmt.Sprintf("batch completed: %g kg (%.1f%%)", msg.out.Batch.OutputQuantity, msg.out.Batch.YieldPercent), msg.out.Warnings)
		m.activeTab = tabBatches
		return m, m.reloadCmd()

	case catalogview.LoadedMsg:
		var kCmd, bCmd tea.Cmd
		m.kilnView, kCmd = m.kilnView.Update(msg)
		m.biomassView, bCmd = m.biomassView.Update(msg)
		nCmd := m.batchView.SetNames(batchesview.Names{
			Kilns:   m.kilnView.Names(),
			Biomass: m.biomassView.Names(),
		})
		return m, tea.Batch(kCmd, bCmd, nCmd)

	case batchesview.HistoryLoadedMsg:
		var cmd tea.Cmd
		m.batchView, cmd = m.batchView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.subViewFiltering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case msg.String() == "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Refresh):
			m.status = "refreshing"
			return m, m.reloadCmd()
		case key.Matches(msg, m.keys.Start):
			return m, m.palette.OpenWith("batch:start ")
		case key.Matches(msg, m.keys.End):
			return m, m.palette.OpenWith("batch:end ")
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabBatches:
		m.batchView, tabCmd = m.batchView.Update(msg)
	case tabKilns:
		m.kilnView, tabCmd = m.kilnView.Update(msg)
	case tabBiomass:
		m.biomassView, tabCmd = m.biomassView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabBatches:
		return m.batchView.View()
	case tabKilns:
		return m.kilnView.View()
	case tabBiomass:
		return m.biomassView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	who := theme.Muted.Render(fmt.Sprintf("%s (%s)", m.actor.Name, m.actor.Role))
	bar := "biochar  " + strings.Join(parts, theme.Muted.Render(" │ ")) + "   " + who
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.hasActive {
		left = theme.Hot.Render(fmt.Sprintf("● %s %g kg", m.kilnName(m.active.KilnID), m.active.InputQuantity)) + "  " + left
	}
	right := "?:help  tab:switch  :::palette  q:quit"
	if m.operator {
		right = "s:start  e:end  " + right
	}
	right = theme.Muted.Render(right)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "batch:refresh":
		m.status = "refreshing"
		return m, m.reloadCmd()

	case "batch:start":
		if !m.operator {
			m.status = "only coordinators start batches"
			return m, nil
		}
		var kilnID, biomassID, qty string
		switch len(parts) {
		case 2:
			kiln, okK := m.kilnView.Selected()
			biomass, okB := m.biomassView.Selected()
			if !okK || !okB {
				m.status = "select a kiln and a biomass type first"
				return m, nil
			}
			kilnID, biomassID, qty = kiln.ID, biomass.ID, parts[1]
		case 4:
			kilnID, biomassID, qty = parts[1], parts[2], parts[3]
		default:
			m.status = "usage: batch:start [<kiln-id> <biomass-id>] <input-kg>"
			return m, nil
		}
		input, err := strconv.ParseFloat(qty, 64)
		if err != nil {
			m.status = "invalid input quantity"
			return m, nil
		}
		return m, m.startBatchCmd(kilnID, biomassID, input)

	case "batch:end":
		if !m.operator {
			m.status = "only coordinators end batches"
			return m, nil
		}
		if len(parts) < 3 {
			m.status = "usage: batch:end <output-kg> <photo-path>"
			return m, nil
		}
		output, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			m.status = "invalid output quantity"
			return m, nil
		}
		photoPath := strings.TrimSpace(strings.TrimPrefix(input, parts[0]+" "+parts[1]))
		return m, m.endBatchCmd(output, photoPath)

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabBatches:
		return m.batchView.Filtering()
	case tabKilns:
		return m.kilnView.Filtering()
	case tabBiomass:
		return m.biomassView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.batchView, _ = m.batchView.Update(sz)
	m.kilnView, _ = m.kilnView.Update(sz)
	m.biomassView, _ = m.biomassView.Update(sz)
}

func (m Model) kilnName(id string) string {
	if name, ok := m.kilnView.Names()[id]; ok {
		return name
	}
	return id
}

// describeError phrases a failed action for the status bar.
func describeError(action string, err error) string {
	var prefix string
	switch apperrors.Classify(err) {
	case apperrors.ErrValidation:
		prefix = action + " rejected"
	case apperrors.ErrInvalidState, apperrors.ErrNoActiveBatch:
		prefix = action + " not possible now"
	case apperrors.ErrForbidden:
		prefix = action + " not permitted"
	case apperrors.ErrUpload:
		prefix = action + ": photo upload failed"
	default:
		prefix = action + " failed"
	}
	return theme.Fail.Render(prefix + ": " + err.Error())
}

func withWarnings(status string, warnings []string) string {
	if len(warnings) == 0 {
		return status
	}
	return status + "  " + theme.Warn.Render(fmt.Sprintf("(%d warning(s): %s)", len(warnings), strings.Join(warnings, "; ")))
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) reloadCmd() tea.Cmd {
	return tea.Batch(
		m.batchView.Reload(),
		m.kilnView.Reload(),
		m.biomassView.Reload(),
		m.loadActiveCmd(),
	)
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return dataChangedMsg{}
	}
}

func (m Model) loadActiveCmd() tea.Cmd {
	if !m.operator {
		return nil
	}
	return func() tea.Msg {
		active, err := m.batches.GetActive(context.Background(), m.actor)
		return activeLoadedMsg{active: active, err: err}
	}
}

func (m Model) startBatchCmd(kilnID, biomassID string, inputKg float64) tea.Cmd {
	return func() tea.Msg {
		out, err := m.batches.Start(context.Background(), m.actor, kilnID, biomassID, inputKg)
		return batchStartedMsg{out: out, err: err}
	}
}

func (m Model) endBatchCmd(outputKg float64, photoPath string) tea.Cmd {
	batchID := ""
	if m.hasActive {
		batchID = m.active.ID
	}
	return func() tea.Msg {
		photo, err := os.ReadFile(photoPath)
		if err != nil {
			return batchEndedMsg{err: fmt.Errorf("%w: read photo: %w", apperrors.ErrValidation, err)}
		}
		out, err := m.batches.End(context.Background(), m.actor, batchID, outputKg, filepath.Base(photoPath), photo)
		return batchEndedMsg{out: out, err: err}
	}
}

func (m Model) loadKilns(ctx context.Context) ([]catalogview.Entry, error) {
	// Coordinators only see their own kilns; admins see every kiln.
	kilns, err := m.catalog.ListKilns(ctx, m.actor.CoordinatorID)
	if err != nil {
		return nil, err
	}
	out := make([]catalogview.Entry, 0, len(kilns))
	for _, k := range kilns {
		detail := "coordinator " + k.CoordinatorID
		if k.CapacityKg > 0 {
			detail = fmt.Sprintf("%s  capacity %g kg", detail, k.CapacityKg)
		}
		out = append(out, catalogview.Entry{ID: k.ID, Name: k.Name, Detail: detail})
	}
	return out, nil
}

func (m Model) loadBiomass(ctx context.Context) ([]catalogview.Entry, error) {
	types, err := m.catalog.ListBiomassTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalogview.Entry, 0, len(types))
	for _, b := range types {
		out = append(out, catalogview.Entry{ID: b.ID, Name: b.Name, Detail: b.Description})
	}
	return out, nil
}

// ─── port bridges ────────────────────────────────────────────────────────────

// historyBridge binds the actor so the batches view stays role-agnostic.
type historyBridge struct {
	p     batchPort
	actor identitydto.Actor
}

func (b historyBridge) History(ctx context.Context) ([]pyrolysisdto.BatchOutput, error) {
	return b.p.History(ctx, b.actor, b.actor.CoordinatorID)
}
