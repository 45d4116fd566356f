package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/epuerta/kori/internal/config"
	"github.com/epuerta/kori/internal/diffcache"
	"github.com/epuerta/kori/internal/linediff"
	"github.com/epuerta/kori/internal/logging"
	"github.com/epuerta/kori/internal/snapshot"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Background(lipgloss.Color("0")).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true).
			PaddingLeft(1)
)

// headerHeight and footerHeight are the lines taken by the title bar and help.
const (
	headerHeight = 2
	footerHeight = 2
)

type keyMap struct {
	Next        key.Binding
	Prev        key.Binding
	ToggleView  key.Binding
	ToggleLines key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.ToggleView, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.ToggleView, k.ToggleLines},
		{k.Help, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:        key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next version")),
		Prev:        key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous version")),
		ToggleView:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "side-by-side/unified")),
		ToggleLines: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "line numbers")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// diffReadyMsg carries a computed diff back into the update loop.
type diffReadyMsg struct {
	pair   int
	older  snapshot.Snapshot
	newer  snapshot.Snapshot
	result linediff.Result
	err    error
}

// ViewerModel is the Bubble Tea model that pages through adjacent snapshot pairs.
type ViewerModel struct {
	store  *snapshot.Store
	cache  *diffcache.Cache
	logger logging.Logger
	opts   RenderOptions

	ctx    context.Context
	cancel context.CancelFunc

	pair    int
	older   snapshot.Snapshot
	newer   snapshot.Snapshot
	result  linediff.Result
	loaded  bool
	loading bool
	err     error

	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	width    int
	height   int
}

// NewViewerModel creates a viewer over store. Diffs are computed through cache.
func NewViewerModel(store *snapshot.Store, cache *diffcache.Cache, opts RenderOptions, logger logging.Logger) ViewerModel {
	if logger == nil {
		logger = logging.NewNilLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return ViewerModel{
		store:  store,
		cache:  cache,
		logger: logger,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		help:   help.New(),
		keys:   defaultKeyMap(),
	}
}

// Init starts loading the first pair
func (m ViewerModel) Init() tea.Cmd {
	if m.store.Pairs() == 0 {
		return nil
	}
	return m.loadPair(0)
}

// loadPair returns a command computing the diff of pair i off the update loop.
func (m ViewerModel) loadPair(i int) tea.Cmd {
	store, cache, ctx := m.store, m.cache, m.ctx
	return func() tea.Msg {
		older, newer, err := store.Pair(i)
		if err != nil {
			return diffReadyMsg{pair: i, err: err}
		}
		res, err := cache.Diff(ctx, older.Content, newer.Content)
		return diffReadyMsg{pair: i, older: older, newer: newer, result: res, err: err}
	}
}

// Update handles key presses, resizes and finished diffs
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			if m.pair+1 < m.store.Pairs() {
				m.pair++
				m.loading = true
				m.logger.Log("viewer: moving to pair %d", m.pair)
				return m, m.loadPair(m.pair)
			}
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			if m.pair > 0 {
				m.pair--
				m.loading = true
				m.logger.Log("viewer: moving to pair %d", m.pair)
				return m, m.loadPair(m.pair)
			}
			return m, nil
		case key.Matches(msg, m.keys.ToggleView):
			if m.opts.Mode == config.Unified {
				m.opts.Mode = config.SideBySide
			} else {
				m.opts.Mode = config.Unified
			}
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.ToggleLines):
			m.opts.LineNumbers = !m.opts.LineNumbers
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.opts.Width = msg.Width
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-headerHeight-m.footerLines(), 1))
			m.viewport.YPosition = headerHeight
			m.ready = true
		}
		m.resize()
		m.refresh()

	case diffReadyMsg:
		if msg.pair != m.pair {
			// Superseded by a later navigation.
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.older, m.newer, m.result = msg.older, msg.newer, msg.result
			m.loaded = true
			m.logger.Log("viewer: pair %d ready (%s)", msg.pair, RenderSummary(msg.result.Stats()))
		} else {
			m.logger.Log("viewer: pair %d failed: %v", msg.pair, msg.err)
		}
		m.refresh()
		return m, nil
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m ViewerModel) footerLines() int {
	if m.help.ShowAll {
		return footerHeight + 2
	}
	return footerHeight
}

func (m *ViewerModel) resize() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-m.footerLines(), 1)
}

// refresh re-renders the current diff into the viewport.
func (m *ViewerModel) refresh() {
	if !m.ready || !m.loaded {
		return
	}
	opts := m.opts
	opts.OldLabel = snapshotLabel(m.older)
	opts.NewLabel = snapshotLabel(m.newer)
	m.viewport.SetContent(Render(m.result, opts))
}

func snapshotLabel(s snapshot.Snapshot) string {
	if s.CreatedAt.IsZero() {
		return s.Label
	}
	return fmt.Sprintf("%s (%s)", s.Label, s.CreatedAt.Format("Jan 2 15:04"))
}

// View renders the viewer
func (m ViewerModel) View() string {
	if m.store.Pairs() == 0 {
		return errorStyle.Render("Need at least two versions to compare.") + "\n"
	}
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	status := fmt.Sprintf("version %d → %d of %d", m.pair+1, m.pair+2, m.store.Len())
	switch {
	case m.err != nil:
		status = errorStyle.Render(m.err.Error())
	case m.loading || !m.loaded:
		status += " • computing…"
	default:
		status += " • " + RenderSummary(m.result.Stats())
	}
	sb.WriteString(titleStyle.Render("kori diff"))
	sb.WriteString(statusStyle.Render(status))
	sb.WriteString("\n\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// RunViewer opens the full-screen viewer and blocks until the user quits.
func RunViewer(store *snapshot.Store, cache *diffcache.Cache, opts RenderOptions, logger logging.Logger) error {
	m := NewViewerModel(store, cache, opts, logger)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running viewer: %w", err)
	}
	return nil
}
