// Package tui implements the interactive watch mode: a Bubbletea program
// that refreshes the status card on a timer and previews it with unicode
// half-blocks.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/status-pulse/config"
	"gitlab.com/tinyland/lab/status-pulse/display/term"
	"gitlab.com/tinyland/lab/status-pulse/status"
)

// defaultRefreshInterval is how often watch mode refetches the card.
const defaultRefreshInterval = 5 * time.Second

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	styleStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleHelp   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// keyMap defines the watch-mode key bindings.
type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Theme   key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
}

// tickMsg drives the periodic refresh.
type tickMsg time.Time

// refreshMsg carries the result of one fetch-and-preview pass.
type refreshMsg struct {
	preview string
	took    time.Duration
	err     error
}

// Model is the Bubbletea model for watch mode.
type Model struct {
	svc      *status.Service
	theme    config.Theme
	spin     spinner.Model
	interval time.Duration

	width     int
	height    int
	preview   string
	lastErr   error
	refreshed time.Time
	took      time.Duration
	loading   bool
}

// NewModel returns a watch model ready to hand to tea.NewProgram.
func NewModel(svc *status.Service) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return Model{
		svc:      svc,
		theme:    svc.Options().Theme,
		spin:     sp,
		interval: defaultRefreshInterval,
		loading:  true,
	}
}

// Init implements tea.Model. It starts the spinner and the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetch())
}

// fetch asynchronously renders the card and converts it to a unicode
// preview. Kitty escapes do not survive Bubbletea repaints, so watch
// mode always uses half-blocks.
func (m Model) fetch() tea.Cmd {
	svc := m.svc
	cols, rows := m.previewSize()
	return func() tea.Msg {
		start := time.Now()
		artifact, err := svc.Status(context.Background())
		if err != nil {
			return refreshMsg{err: err, took: time.Since(start)}
		}
		preview, err := term.Preview(artifact, term.PreviewConfig{
			Protocol: term.ProtocolUnicode,
			MaxCols:  cols,
			MaxRows:  rows,
		})
		return refreshMsg{preview: preview, err: err, took: time.Since(start)}
	}
}

func (m Model) previewSize() (cols, rows int) {
	cols, rows = 80, 24
	if m.width > 4 {
		cols = m.width - 2
	}
	if m.height > 8 {
		rows = m.height - 6
	}
	return cols, rows
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			m.svc.ClearCache()
			m.loading = true
			return m, m.fetch()
		case key.Matches(msg, keys.Theme):
			m.toggleTheme()
			m.loading = true
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case refreshMsg:
		m.loading = false
		m.lastErr = msg.err
		m.took = msg.took
		m.refreshed = time.Now()
		if msg.err == nil {
			m.preview = msg.preview
		}
		return m, m.tick()

	case tickMsg:
		m.loading = true
		return m, m.fetch()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// toggleTheme flips the light and dark palettes. The change goes through
// the service's locked options so an in-flight fetch on another goroutine
// never observes a torn write.
func (m *Model) toggleTheme() {
	if m.theme == config.ThemeDark {
		m.theme = config.ThemeLight
	} else {
		m.theme = config.ThemeDark
	}
	m.svc.SetTheme(m.theme)
}

// View implements tea.Model.
func (m Model) View() string {
	title := styleTitle.Render("status-pulse watch")

	var line string
	switch {
	case m.loading:
		line = m.spin.View() + " refreshing"
	case m.lastErr != nil:
		line = styleError.Render(fmt.Sprintf("error: %v", m.lastErr))
	default:
		line = styleStatus.Render(fmt.Sprintf(
			"refreshed %s in %dms · theme %s · %d cached",
			m.refreshed.Format("15:04:05"), m.took.Milliseconds(),
			m.theme, m.svc.CachedArtifacts()))
	}

	body := m.preview
	if body == "" && !m.loading {
		body = "(no status card yet)"
	}

	help := styleHelp.Render("q quit · r refresh · t theme")
	return lipgloss.JoinVertical(lipgloss.Left, title, line, body, help)
}

// Run starts the watch program on the current terminal.
func Run(svc *status.Service) error {
	p := tea.NewProgram(NewModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: watch mode: %w", err)
	}
	return nil
}
