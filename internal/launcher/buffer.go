package launcher

import (
	"errors"
	"strings"
)

// ErrLocked is returned for edits that target the locked prefix of a Buffer.
var ErrLocked = errors.New("edit targets locked region")

// Style tags a run of buffer text.
type Style int

const (
	StylePlain Style = iota
	StylePrompt
	StyleUser
	StyleAI
	StyleError
)

func (s Style) String() string {
	switch s {
	case StylePrompt:
		return "prompt"
	case StyleUser:
		return "user"
	case StyleAI:
		return "ai"
	case StyleError:
		return "error"
	default:
		return "plain"
	}
}

// Run is a span of text sharing one style.
type Run struct {
	Text  string
	Style Style
}

// Buffer is the launcher's text area: a locked prefix holding prompt markers
// and finished turns, followed by the editable span where the current turn is
// composed. Offsets are in runes.
type Buffer struct {
	runs       []Run
	length     int
	inputStart int
	cursor     int
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Runs() []Run {
	out := make([]Run, len(b.runs))
	copy(out, b.runs)
	return out
}

func (b *Buffer) Text() string {
	var sb strings.Builder
	for _, r := range b.runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func (b *Buffer) Len() int        { return b.length }
func (b *Buffer) InputStart() int { return b.inputStart }
func (b *Buffer) Cursor() int     { return b.cursor }

// TextBefore returns the buffer text in [0, offset).
func (b *Buffer) TextBefore(offset int) string {
	r := []rune(b.Text())
	offset = clamp(offset, 0, len(r))
	return string(r[:offset])
}

// InsertLocked appends text and moves the editable span past it.
func (b *Buffer) InsertLocked(text string, style Style) {
	b.appendRun(text, style, true)
	b.inputStart = b.length
	b.cursor = b.length
}

// InsertEditable appends text after the editable span start without locking
// it. The cursor follows the end of the buffer.
func (b *Buffer) InsertEditable(text string, style Style) {
	b.append(text, style)
	b.cursor = b.length
}

// EditableSpan returns the text from the input start to the end.
func (b *Buffer) EditableSpan() string {
	r := []rune(b.Text())
	return string(r[b.inputStart:])
}

// Restyle applies style to the whole editable span.
func (b *Buffer) Restyle(style Style) {
	if b.inputStart == b.length {
		return
	}
	span := b.EditableSpan()
	b.truncate(b.inputStart)
	b.append(span, style)
}

// Lock moves the input start to the end of the buffer.
func (b *Buffer) Lock() {
	b.inputStart = b.length
	b.cursor = b.length
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.runs = nil
	b.length = 0
	b.inputStart = 0
	b.cursor = 0
}

// InsertAt inserts plain text at offset inside the editable span.
func (b *Buffer) InsertAt(offset int, text string) error {
	if offset < b.inputStart || offset > b.length {
		return ErrLocked
	}
	if text == "" {
		return nil
	}
	cursor := b.cursor
	tail := b.splitOff(offset)
	b.append(text, StylePlain)
	for _, r := range tail {
		b.append(r.Text, r.Style)
	}
	if cursor >= offset {
		cursor += runeLen(text)
	}
	b.cursor = cursor
	return nil
}

// Delete removes the runes in [start, end).
func (b *Buffer) Delete(start, end int) error {
	if start < b.inputStart {
		return ErrLocked
	}
	end = min(end, b.length)
	if start >= end {
		return nil
	}
	cursor := b.cursor
	tail := b.splitOff(end)
	b.truncate(start)
	for _, r := range tail {
		b.append(r.Text, r.Style)
	}
	switch {
	case cursor >= end:
		cursor -= end - start
	case cursor > start:
		cursor = start
	}
	b.cursor = cursor
	return nil
}

func (b *Buffer) InsertAtCursor(text string) error {
	return b.InsertAt(b.cursor, text)
}

func (b *Buffer) DeleteBackward() error {
	if b.cursor <= b.inputStart {
		return ErrLocked
	}
	return b.Delete(b.cursor-1, b.cursor)
}

func (b *Buffer) DeleteForward() error {
	if b.cursor < b.inputStart {
		return ErrLocked
	}
	return b.Delete(b.cursor, b.cursor+1)
}

// MoveCursor shifts the cursor by delta runes. Moving into the locked prefix
// is rejected and leaves the cursor at the input start.
func (b *Buffer) MoveCursor(delta int) error {
	next := b.cursor + delta
	if next < b.inputStart {
		b.cursor = b.inputStart
		return ErrLocked
	}
	b.cursor = min(next, b.length)
	return nil
}

func (b *Buffer) CursorHome() { b.cursor = b.inputStart }
func (b *Buffer) CursorEnd()  { b.cursor = b.length }

func (b *Buffer) append(text string, style Style) {
	b.appendRun(text, style, false)
}

// appendRun adds text at the end, merging it into the last run when the
// styles match. Unlocked text never merges across the input start so that the
// input start stays on a run boundary.
func (b *Buffer) appendRun(text string, style Style, locking bool) {
	if text == "" {
		return
	}
	n := len(b.runs)
	merge := n > 0 && b.runs[n-1].Style == style && (locking || b.length != b.inputStart)
	if merge {
		b.runs[n-1].Text += text
	} else {
		b.runs = append(b.runs, Run{Text: text, Style: style})
	}
	b.length += runeLen(text)
}

// truncate drops everything from offset on.
func (b *Buffer) truncate(offset int) {
	b.splitOff(offset)
}

// splitOff cuts the buffer at offset and returns the runs that followed it.
func (b *Buffer) splitOff(offset int) []Run {
	var head, tail []Run
	pos := 0
	for _, r := range b.runs {
		n := runeLen(r.Text)
		switch {
		case pos+n <= offset:
			head = append(head, r)
		case pos >= offset:
			tail = append(tail, r)
		default:
			rs := []rune(r.Text)
			cut := offset - pos
			head = append(head, Run{Text: string(rs[:cut]), Style: r.Style})
			tail = append(tail, Run{Text: string(rs[cut:]), Style: r.Style})
		}
		pos += n
	}
	b.runs = head
	b.length = min(offset, b.length)
	return tail
}

func runeLen(s string) int {
	return len([]rune(s))
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(v, hi))
}
