package launcher

import "unicode"

// State is the conversation state of the launcher.
type State int

const (
	AwaitingInput State = iota
	Streaming
	Complete
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Streaming:
		return "streaming"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// KeyKind classifies a key press independently of the terminal toolkit.
type KeyKind int

const (
	KeyOther KeyKind = iota
	KeyRunes
	KeyEnter
	KeyNewline
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyUp
	KeyDown
	KeyEscape
)

// Key is a single key press. Runes is set for KeyRunes.
type Key struct {
	Kind  KeyKind
	Runes []rune
}

func RuneKey(s string) Key {
	return Key{Kind: KeyRunes, Runes: []rune(s)}
}

// Printable reports whether the key produces printable characters.
func (k Key) Printable() bool {
	if k.Kind != KeyRunes || len(k.Runes) == 0 {
		return false
	}
	for _, r := range k.Runes {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Outcome tells the host what a controller call requires of it.
type Outcome struct {
	// Consumed is false when the key was not handled at all.
	Consumed bool
	// Quit asks the host to close the window and exit.
	Quit bool
	// Stream is set when a backend call was started and needs pumping.
	Stream *Sink
	// Err carries a rejected edit, e.g. ErrLocked.
	Err error
}
