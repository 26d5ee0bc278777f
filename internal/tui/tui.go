package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abcdlsj/blink/internal/config"
	"github.com/abcdlsj/blink/internal/launcher"
	"github.com/abcdlsj/blink/internal/logger"
)

// Model hosts a launcher.Controller in a terminal program. All controller
// calls happen in Update; only Sink.Pull runs inside commands.
type Model struct {
	ctx  context.Context
	ctrl *launcher.Controller

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	styles   styles

	modelName  string
	quitOnBlur bool

	width  int
	height int
	ready  bool
}

type Option func(*Model)

// WithQuitOnBlur closes the launcher when the terminal loses focus.
func WithQuitOnBlur(on bool) Option { return func(m *Model) { m.quitOnBlur = on } }

// WithModelName shows name in the status line.
func WithModelName(name string) Option { return func(m *Model) { m.modelName = name } }

func WithTheme(t config.ThemeConfig) Option { return func(m *Model) { m.styles = newStyles(t) } }

func New(ctx context.Context, ctrl *launcher.Controller, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#888A85"))

	h := help.New()
	h.ShortSeparator = "  "

	m := Model{
		ctx:        ctx,
		ctrl:       ctrl,
		viewport:   viewport.New(ctrl.Geometry().TextWidth(), ctrl.Geometry().ViewHeight()),
		spinner:    sp,
		help:       h,
		keys:       defaultKeyMap(),
		styles:     newStyles(config.ThemeConfig{}),
		quitOnBlur: true,
	}
	m.viewport.KeyMap = viewport.KeyMap{}
	m.viewport.MouseWheelEnabled = false
	for _, opt := range opts {
		opt(&m)
	}
	m.sync()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// deliveryMsg carries the result of one Pull back to the event loop.
type deliveryMsg struct {
	sink *launcher.Sink
	d    launcher.Delivery
}

func pump(ctx context.Context, s *launcher.Sink) tea.Cmd {
	return func() tea.Msg {
		return deliveryMsg{sink: s, d: s.Pull(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		out := m.ctrl.OnKey(m.keys.translate(msg))
		return m.apply(out)

	case tea.BlurMsg:
		if !m.quitOnBlur {
			return m, nil
		}
		logger.Debug("focus lost, closing")
		return m.apply(m.ctrl.OnFocusLost())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.ctrl.Resize(msg.Width)
		m.help.Width = m.ctrl.Geometry().Width()
		m.sync()
		return m, nil

	case deliveryMsg:
		msg.sink.Deliver(msg.d)
		m.sync()
		if msg.sink.Done() {
			logger.Debug("stream finished", "fragments", msg.sink.Received(), "state", m.ctrl.State())
			return m, nil
		}
		if m.ctrl.Stream() == msg.sink {
			return m, pump(m.ctx, msg.sink)
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State() != launcher.Streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) apply(out launcher.Outcome) (tea.Model, tea.Cmd) {
	m.sync()
	switch {
	case out.Quit:
		return m, tea.Quit
	case out.Stream != nil:
		return m, tea.Batch(m.spinner.Tick, pump(m.ctx, out.Stream))
	}
	return m, nil
}

// sync copies the controller's buffer and geometry into the viewport.
func (m *Model) sync() {
	geo := m.ctrl.Geometry()
	showCursor := m.ctrl.State() != launcher.Streaming
	content := renderBuffer(m.ctrl.Buffer(), m.styles, showCursor)

	m.viewport.Width = geo.TextWidth()
	m.viewport.Height = geo.ViewHeight()
	m.viewport.SetContent(launcher.Wrap(content, geo.TextWidth()))
	m.viewport.SetYOffset(geo.Offset())
}

func (m Model) statusLine() string {
	var parts []string
	if m.ctrl.State() == launcher.Streaming {
		parts = append(parts, m.spinner.View()+m.styles.status.Render("Thinking..."))
	} else {
		parts = append(parts, m.help.View(m.keys))
	}
	if m.modelName != "" {
		parts = append(parts, m.styles.model.Render(m.modelName))
	}
	return strings.Join(parts, m.styles.status.Render(" | "))
}

func (m Model) View() string {
	if !m.ready {
		return lipgloss.NewStyle().Foreground(fgMuted).Render("Loading...")
	}

	geo := m.ctrl.Geometry()
	box := m.styles.frame.
		Width(geo.TextWidth() + 2).
		Height(geo.ViewHeight()).
		Render(m.viewport.View())

	window := lipgloss.JoinVertical(lipgloss.Left, box, " "+m.statusLine())
	placed := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, window)

	return strings.Repeat("\n", topGap(m.height)) + placed
}

// topGap puts the window a quarter of the way down the terminal.
func topGap(height int) int {
	return max(height/4, 0)
}
