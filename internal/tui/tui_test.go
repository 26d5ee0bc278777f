package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcdlsj/blink/internal/config"
	"github.com/abcdlsj/blink/internal/launcher"
)

type scriptedSource struct {
	frags []string
	i     int
}

func (s *scriptedSource) Recv(context.Context) (string, error) {
	if s.i >= len(s.frags) {
		return "", io.EOF
	}
	s.i++
	return s.frags[s.i-1], nil
}

type scriptedBackend struct {
	frags []string
}

func (b scriptedBackend) Open(context.Context, string) (launcher.Source, error) {
	return &scriptedSource{frags: b.frags}, nil
}

type recordingLauncher struct {
	launched []launcher.Action
}

func (r *recordingLauncher) Launch(a launcher.Action) { r.launched = append(r.launched, a) }

func newModel(t *testing.T, frags ...string) (Model, *launcher.Controller, *recordingLauncher) {
	t.Helper()
	rl := &recordingLauncher{}
	ctrl := launcher.NewController(context.Background(), scriptedBackend{frags: frags}, launcher.WithLauncher(rl))
	m := New(context.Background(), ctrl, WithModelName("mock/test"))
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, ctrl, rl
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestStreamRoundTrip(t *testing.T) {
	m, ctrl, _ := newModel(t, "Hi", " there!")
	m = typeText(t, m, "hello")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.Equal(t, launcher.Streaming, ctrl.State())

	for ctrl.Stream() != nil {
		m = update(t, m, pump(context.Background(), ctrl.Stream())())
	}

	assert.Equal(t, launcher.Complete, ctrl.State())
	assert.Equal(t, "> hello\n\nHi there!\n\n> ", ctrl.Buffer().Text())
	assert.Contains(t, m.viewport.View(), "Hi there!")
}

func TestTypingAfterCompleteResets(t *testing.T) {
	m, ctrl, _ := newModel(t, "Paris")
	m = typeText(t, m, "capital of France?")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	for ctrl.Stream() != nil {
		m = update(t, m, pump(context.Background(), ctrl.Stream())())
	}

	m = typeText(t, m, "w")

	assert.Equal(t, launcher.AwaitingInput, ctrl.State())
	assert.Equal(t, "> w", ctrl.Buffer().Text())
	_ = m
}

func TestStaleDeliveryDropped(t *testing.T) {
	m, ctrl, _ := newModel(t, "late")
	m = typeText(t, m, "hello")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	stale := ctrl.Stream()
	require.NotNil(t, stale)

	ctrl.Reset("x")
	next, cmd := m.Update(pump(context.Background(), stale)())
	_ = next

	assert.Nil(t, cmd)
	assert.Equal(t, "> x", ctrl.Buffer().Text())
}

func TestCommandTokenLaunches(t *testing.T) {
	m, _, rl := newModel(t)
	m = typeText(t, m, "/t")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	require.Len(t, rl.launched, 1)
	assert.Equal(t, "/t", rl.launched[0].Token)
}

func TestEscapeQuits(t *testing.T) {
	m, _, _ := newModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBlur(t *testing.T) {
	m, _, _ := newModel(t)

	_, cmd := m.Update(tea.BlurMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.quitOnBlur = false
	_, cmd = m.Update(tea.BlurMsg{})
	assert.Nil(t, cmd)
}

func TestEditingKeysLockedWhileStreaming(t *testing.T) {
	m, ctrl, _ := newModel(t, "answer")
	m = typeText(t, m, "hi")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	before := ctrl.Buffer().Text()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = typeText(t, m, "z")

	assert.Equal(t, before, ctrl.Buffer().Text())
	assert.Equal(t, launcher.Streaming, ctrl.State())
}

func TestTranslate(t *testing.T) {
	k := defaultKeyMap()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want launcher.KeyKind
	}{
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, launcher.KeyEnter},
		{"ctrl+j", tea.KeyMsg{Type: tea.KeyCtrlJ}, launcher.KeyNewline},
		{"alt+enter", tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, launcher.KeyNewline},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, launcher.KeyEscape},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, launcher.KeyUp},
		{"home", tea.KeyMsg{Type: tea.KeyHome}, launcher.KeyHome},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, launcher.KeyBackspace},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, launcher.KeyRunes},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, launcher.KeyOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, k.translate(tt.msg).Kind)
		})
	}
}

func TestTranslatePaste(t *testing.T) {
	k := defaultKeyMap()
	got := k.translate(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\r\nb\tc"), Paste: true})
	assert.Equal(t, "a b c", string(got.Runes))
	assert.True(t, got.Printable())
}

func TestRenderBufferCursor(t *testing.T) {
	buf := launcher.NewBuffer()
	buf.InsertLocked("> ", launcher.StylePrompt)
	buf.InsertEditable("hello", launcher.StylePlain)

	s := newStyles(config.Default().Theme)
	out := renderBuffer(buf, s, true)
	assert.Contains(t, out, "hello")
	assert.Equal(t, 8, lipgloss.Width(out))

	out = renderBuffer(buf, s, false)
	assert.Equal(t, 7, lipgloss.Width(out))
}

func TestViewPlacement(t *testing.T) {
	m, ctrl, _ := newModel(t)

	view := m.View()
	assert.True(t, strings.HasPrefix(view, strings.Repeat("\n", 10)))
	assert.Contains(t, view, "╭")
	assert.Equal(t, ctrl.Geometry().ViewHeight(), strings.Count(view, "│")/2)
}
