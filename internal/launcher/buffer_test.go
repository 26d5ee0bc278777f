package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptBuffer(input string) *Buffer {
	b := NewBuffer()
	b.InsertLocked("> ", StylePrompt)
	b.InsertEditable(input, StylePlain)
	return b
}

func TestBufferInsertLocked(t *testing.T) {
	b := NewBuffer()
	b.InsertLocked("> ", StylePrompt)

	assert.Equal(t, "> ", b.Text())
	assert.Equal(t, 2, b.InputStart())
	assert.Equal(t, 2, b.Cursor())
	assert.Equal(t, "", b.EditableSpan())
}

func TestBufferEditableSpan(t *testing.T) {
	b := promptBuffer("hello")

	assert.Equal(t, "hello", b.EditableSpan())
	assert.Equal(t, 7, b.Len())
	assert.Equal(t, []Run{{"> ", StylePrompt}, {"hello", StylePlain}}, b.Runs())
}

func TestBufferInsertAt(t *testing.T) {
	b := promptBuffer("helo")

	require.NoError(t, b.InsertAt(5, "l"))
	assert.Equal(t, "> hello", b.Text())
	assert.Equal(t, 7, b.Cursor())

	assert.ErrorIs(t, b.InsertAt(1, "x"), ErrLocked)
	assert.Equal(t, "> hello", b.Text())
}

func TestBufferInsertAtKeepsCursorBefore(t *testing.T) {
	b := promptBuffer("ac")
	require.NoError(t, b.MoveCursor(-2))

	require.NoError(t, b.InsertAt(3, "b"))
	assert.Equal(t, "> abc", b.Text())
	assert.Equal(t, 2, b.Cursor())
}

func TestBufferDelete(t *testing.T) {
	b := promptBuffer("hello world")

	require.NoError(t, b.Delete(7, 13))
	assert.Equal(t, "> hello", b.Text())
	assert.Equal(t, 7, b.Cursor())

	assert.ErrorIs(t, b.Delete(0, 3), ErrLocked)
	assert.Equal(t, "> hello", b.Text())
}

func TestBufferDeleteBackwardStopsAtInputStart(t *testing.T) {
	b := promptBuffer("a")

	require.NoError(t, b.DeleteBackward())
	assert.Equal(t, "> ", b.Text())
	assert.ErrorIs(t, b.DeleteBackward(), ErrLocked)
	assert.Equal(t, "> ", b.Text())
}

func TestBufferDeleteForward(t *testing.T) {
	b := promptBuffer("abc")
	b.CursorHome()

	require.NoError(t, b.DeleteForward())
	assert.Equal(t, "> bc", b.Text())
	assert.Equal(t, 2, b.Cursor())

	b.CursorEnd()
	require.NoError(t, b.DeleteForward())
	assert.Equal(t, "> bc", b.Text())
}

func TestBufferMoveCursor(t *testing.T) {
	b := promptBuffer("ab")

	require.NoError(t, b.MoveCursor(-1))
	assert.Equal(t, 3, b.Cursor())
	assert.ErrorIs(t, b.MoveCursor(-5), ErrLocked)
	assert.Equal(t, 2, b.Cursor())
	require.NoError(t, b.MoveCursor(10))
	assert.Equal(t, 4, b.Cursor())
}

func TestBufferRestyleAndLock(t *testing.T) {
	b := promptBuffer("hello")

	b.Restyle(StyleUser)
	b.Lock()
	b.InsertLocked("\n\n", StyleUser)

	assert.Equal(t, []Run{{"> ", StylePrompt}, {"hello\n\n", StyleUser}}, b.Runs())
	assert.Equal(t, b.Len(), b.InputStart())
	assert.ErrorIs(t, b.InsertAt(3, "x"), ErrLocked)
}

func TestBufferEditableNeverMergesIntoLocked(t *testing.T) {
	b := NewBuffer()
	b.InsertLocked("x", StyleAI)
	b.InsertEditable("y", StyleAI)

	runs := b.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "y", runs[1].Text)
	assert.Equal(t, 1, b.InputStart())
}

func TestBufferRunes(t *testing.T) {
	b := promptBuffer("héllo")

	assert.Equal(t, 7, b.Len())
	require.NoError(t, b.DeleteBackward())
	assert.Equal(t, "> héll", b.Text())
	assert.Equal(t, "> h", b.TextBefore(3))
}

func TestBufferClear(t *testing.T) {
	b := promptBuffer("hello")
	b.Clear()

	assert.Equal(t, "", b.Text())
	assert.Zero(t, b.Len())
	assert.Zero(t, b.InputStart())
	assert.Zero(t, b.Cursor())
}

func TestStyleString(t *testing.T) {
	assert.Equal(t, "error", StyleError.String())
	assert.Equal(t, "plain", Style(99).String())
}
