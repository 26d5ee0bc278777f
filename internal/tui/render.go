package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abcdlsj/blink/internal/config"
	"github.com/abcdlsj/blink/internal/launcher"
)

var (
	primary   = lipgloss.Color("#729FCF")
	secondary = lipgloss.Color("#FCAF3E")
	errColor  = lipgloss.Color("#EF2929")
	fgBase    = lipgloss.Color("#D3D7CF")
	fgMuted   = lipgloss.Color("#BABDB6")
	fgSubtle  = lipgloss.Color("#555753")
	bgSubtle  = lipgloss.Color("#2E2E2E")
)

type styles struct {
	plain  lipgloss.Style
	prompt lipgloss.Style
	user   lipgloss.Style
	ai     lipgloss.Style
	err    lipgloss.Style
	cursor lipgloss.Style
	frame  lipgloss.Style
	status lipgloss.Style
	model  lipgloss.Style
}

func color(c string, fallback lipgloss.Color) lipgloss.TerminalColor {
	if c == "" {
		return fallback
	}
	return lipgloss.Color(c)
}

func newStyles(t config.ThemeConfig) styles {
	return styles{
		plain:  lipgloss.NewStyle().Foreground(fgBase),
		prompt: lipgloss.NewStyle().Foreground(color(t.Prompt, secondary)).Bold(true),
		user:   lipgloss.NewStyle().Foreground(color(t.User, fgBase)),
		ai:     lipgloss.NewStyle().Foreground(color(t.AI, primary)),
		err:    lipgloss.NewStyle().Foreground(color(t.Error, errColor)).Bold(true),
		cursor: lipgloss.NewStyle().Reverse(true),
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color(t.Border, fgSubtle)).
			Background(bgSubtle).
			Padding(0, 1),
		status: lipgloss.NewStyle().Foreground(fgMuted),
		model:  lipgloss.NewStyle().Foreground(secondary),
	}
}

func (s styles) run(st launcher.Style) lipgloss.Style {
	switch st {
	case launcher.StylePrompt:
		return s.prompt
	case launcher.StyleUser:
		return s.user
	case launcher.StyleAI:
		return s.ai
	case launcher.StyleError:
		return s.err
	default:
		return s.plain
	}
}

// renderBuffer styles every run of buf and draws the cursor cell when
// showCursor is set. Line breaks are kept outside the styled segments so the
// result wraps to the same rows as the plain text.
func renderBuffer(buf *launcher.Buffer, s styles, showCursor bool) string {
	var sb strings.Builder
	cursor := buf.Cursor()
	pos := 0
	for _, r := range buf.Runs() {
		style := s.run(r.Style)
		runes := []rune(r.Text)
		if showCursor && cursor >= pos && cursor < pos+len(runes) {
			i := cursor - pos
			sb.WriteString(renderLines(style, string(runes[:i])))
			if runes[i] == '\n' {
				sb.WriteString(s.cursor.Render(" "))
				sb.WriteString("\n")
			} else {
				sb.WriteString(s.cursor.Render(string(runes[i])))
			}
			sb.WriteString(renderLines(style, string(runes[i+1:])))
		} else {
			sb.WriteString(renderLines(style, r.Text))
		}
		pos += len(runes)
	}
	if showCursor && cursor >= pos {
		sb.WriteString(s.cursor.Render(" "))
	}
	return sb.String()
}

func renderLines(style lipgloss.Style, text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
