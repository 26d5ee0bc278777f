package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abcdlsj/blink/internal/launcher"
)

type keyMap struct {
	Submit     key.Binding
	Newline    key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Left       key.Binding
	Right      key.Binding
	Home       key.Binding
	End        key.Binding
	Backspace  key.Binding
	Delete     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		Newline: key.NewBinding(
			key.WithKeys("ctrl+j", "alt+enter"),
			key.WithHelp("ctrl+j", "newline"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "close"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/↓", "scroll"),
		),
		ScrollDown: key.NewBinding(key.WithKeys("down")),
		Left:       key.NewBinding(key.WithKeys("left", "ctrl+b")),
		Right:      key.NewBinding(key.WithKeys("right", "ctrl+f")),
		Home:       key.NewBinding(key.WithKeys("home", "ctrl+a")),
		End:        key.NewBinding(key.WithKeys("end", "ctrl+e")),
		Backspace:  key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
		Delete:     key.NewBinding(key.WithKeys("delete", "ctrl+d")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Newline, k.ScrollUp, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// translate maps a terminal key press to a launcher key.
func (k keyMap) translate(msg tea.KeyMsg) launcher.Key {
	switch {
	case key.Matches(msg, k.Quit):
		return launcher.Key{Kind: launcher.KeyEscape}
	case key.Matches(msg, k.Newline):
		return launcher.Key{Kind: launcher.KeyNewline}
	case key.Matches(msg, k.Submit):
		return launcher.Key{Kind: launcher.KeyEnter}
	case key.Matches(msg, k.ScrollUp):
		return launcher.Key{Kind: launcher.KeyUp}
	case key.Matches(msg, k.ScrollDown):
		return launcher.Key{Kind: launcher.KeyDown}
	case key.Matches(msg, k.Left):
		return launcher.Key{Kind: launcher.KeyLeft}
	case key.Matches(msg, k.Right):
		return launcher.Key{Kind: launcher.KeyRight}
	case key.Matches(msg, k.Home):
		return launcher.Key{Kind: launcher.KeyHome}
	case key.Matches(msg, k.End):
		return launcher.Key{Kind: launcher.KeyEnd}
	case key.Matches(msg, k.Backspace):
		return launcher.Key{Kind: launcher.KeyBackspace}
	case key.Matches(msg, k.Delete):
		return launcher.Key{Kind: launcher.KeyDelete}
	}

	switch msg.Type {
	case tea.KeySpace:
		return launcher.RuneKey(" ")
	case tea.KeyRunes:
		if msg.Paste {
			return launcher.RuneKey(flattenPaste(string(msg.Runes)))
		}
		return launcher.Key{Kind: launcher.KeyRunes, Runes: msg.Runes}
	}
	return launcher.Key{Kind: launcher.KeyOther}
}

// flattenPaste turns pasted line breaks and tabs into spaces so a paste is
// a single printable insertion.
func flattenPaste(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\r':
			return -1
		case '\n', '\t':
			return ' '
		}
		return r
	}, s)
}
