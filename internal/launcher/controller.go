package launcher

import (
	"context"
	"errors"
	"strings"

	"github.com/abcdlsj/blink/internal/logger"
)

const (
	DefaultPrompt = "> "
	separator     = "\n\n"
)

// Controller is the conversation state machine behind the launcher window.
// It is not safe for concurrent use: every method must be called from the
// goroutine that runs the UI event loop.
type Controller struct {
	ctx      context.Context
	backend  Backend
	router   *Router
	launcher Launcher
	buf      *Buffer
	geo      *Geometry
	prompt   string

	state  State
	stream *Sink
	mark   int
	marked bool
}

type Option func(*Controller)

func WithRouter(r *Router) Option {
	return func(c *Controller) { c.router = r }
}

func WithLauncher(l Launcher) Option {
	return func(c *Controller) { c.launcher = l }
}

func WithGeometry(spec GeometrySpec) Option {
	return func(c *Controller) { c.geo = NewGeometry(spec) }
}

func WithPrompt(p string) Option {
	return func(c *Controller) {
		if p != "" {
			c.prompt = p
		}
	}
}

// NewController builds a controller with a fresh prompt in the buffer. ctx
// bounds every backend call it starts.
func NewController(ctx context.Context, backend Backend, opts ...Option) *Controller {
	c := &Controller{
		ctx:     ctx,
		backend: backend,
		router:  NewRouter(DefaultActions()),
		buf:     NewBuffer(),
		geo:     NewGeometry(DefaultGeometry()),
		prompt:  DefaultPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.buf.InsertLocked(c.prompt, StylePrompt)
	c.remeasure()
	return c
}

func (c *Controller) State() State        { return c.state }
func (c *Controller) Buffer() *Buffer     { return c.buf }
func (c *Controller) Geometry() *Geometry { return c.geo }
func (c *Controller) Stream() *Sink       { return c.stream }
func (c *Controller) Prompt() string      { return c.prompt }

// Submit sends text as the next turn. It only acts in AwaitingInput.
func (c *Controller) Submit(text string) Outcome {
	if c.state != AwaitingInput {
		return Outcome{Consumed: true}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Consumed: true}
	}

	if action, ok := c.router.Match(text); ok {
		logger.Info("launching action", "token", action.Token, "name", action.Name)
		if c.launcher != nil {
			c.launcher.Launch(action)
		}
		c.release()
		return Outcome{Consumed: true, Quit: true}
	}

	c.buf.Restyle(StyleUser)
	c.buf.Lock()
	c.buf.InsertLocked(separator, StyleUser)
	c.mark = c.buf.Len()
	c.marked = true
	c.state = Streaming
	c.remeasure()

	logger.Debug("submitting prompt", "chars", len(text))
	c.stream = Open(c.ctx, c, c.backend, text)
	return Outcome{Consumed: true, Stream: c.stream}
}

// OnFragment appends a piece of the response.
func (c *Controller) OnFragment(text string) {
	if c.state != Streaming {
		logger.Warn("fragment outside of streaming", "state", c.state)
		return
	}
	c.buf.InsertEditable(text, StyleAI)
	c.remeasure()
	c.scrollToMark()
}

// OnStreamEnd re-arms the prompt after a complete response.
func (c *Controller) OnStreamEnd() {
	if c.state != Streaming {
		return
	}
	c.finish()
}

// OnStreamError shows message and re-arms the prompt.
func (c *Controller) OnStreamError(message string) {
	if c.state != Streaming {
		return
	}
	logger.Warn("response failed", "message", message)
	c.buf.InsertEditable(message, StyleError)
	c.finish()
}

func (c *Controller) finish() {
	c.release()
	c.buf.InsertLocked(separator+c.prompt, StylePrompt)
	c.state = Complete
	c.remeasure()
}

// OnKey routes a key press according to the current state.
func (c *Controller) OnKey(k Key) Outcome {
	if k.Kind == KeyEscape {
		return c.Close()
	}

	if (k.Kind == KeyUp || k.Kind == KeyDown) && c.geo.Overflow() {
		delta := 1
		if k.Kind == KeyUp {
			delta = -1
		}
		c.geo.ScrollBy(delta)
		return Outcome{Consumed: true}
	}

	switch c.state {
	case Streaming:
		return Outcome{Consumed: true, Err: ErrLocked}
	case Complete:
		if k.Printable() {
			c.Reset(string(k.Runes))
			return Outcome{Consumed: true}
		}
		if k.Kind == KeyNewline {
			return Outcome{Consumed: true}
		}
	}

	if k.Kind == KeyEnter {
		return c.Submit(c.buf.EditableSpan())
	}
	return c.edit(k)
}

func (c *Controller) edit(k Key) Outcome {
	var err error
	switch k.Kind {
	case KeyRunes:
		if !k.Printable() {
			return Outcome{}
		}
		err = c.buf.InsertAtCursor(string(k.Runes))
	case KeyNewline:
		err = c.buf.InsertAtCursor("\n")
	case KeyBackspace:
		err = c.buf.DeleteBackward()
	case KeyDelete:
		err = c.buf.DeleteForward()
	case KeyLeft:
		err = c.buf.MoveCursor(-1)
	case KeyRight:
		err = c.buf.MoveCursor(1)
	case KeyHome:
		c.buf.CursorHome()
	case KeyEnd:
		c.buf.CursorEnd()
	default:
		return Outcome{}
	}
	if errors.Is(err, ErrLocked) {
		logger.Debug("rejected edit in locked region", "key", k.Kind)
		return Outcome{Consumed: true, Err: err}
	}
	c.remeasure()
	return Outcome{Consumed: true, Err: err}
}

// Resize caps the window width at cols and re-derives the height.
func (c *Controller) Resize(cols int) {
	c.geo.SetMaxWidth(cols)
	c.remeasure()
	if c.state == Streaming {
		c.scrollToMark()
	}
}

// OnFocusLost closes the launcher.
func (c *Controller) OnFocusLost() Outcome {
	return c.Close()
}

// Close releases any open stream and asks the host to exit.
func (c *Controller) Close() Outcome {
	c.release()
	return Outcome{Consumed: true, Quit: true}
}

// Reset clears the conversation and starts a new turn with initial as its
// first characters.
func (c *Controller) Reset(initial string) {
	c.release()
	c.buf.Clear()
	c.geo.ScrollTo(0)
	c.buf.InsertLocked(c.prompt, StylePrompt)
	c.buf.InsertEditable(initial, StylePlain)
	c.state = AwaitingInput
	c.remeasure()
}

func (c *Controller) release() {
	if c.stream != nil {
		c.stream.close()
	}
	c.stream = nil
	c.mark = 0
	c.marked = false
}

func (c *Controller) remeasure() {
	c.geo.Remeasure(c.geo.Measure(c.measureText()))
}

// measureText is the buffer text as rendered, including the cell taken by a
// cursor sitting at the end.
func (c *Controller) measureText() string {
	text := c.buf.Text()
	if c.state != Streaming && c.buf.Cursor() == c.buf.Len() {
		text += " "
	}
	return text
}

func (c *Controller) scrollToMark() {
	if !c.marked {
		return
	}
	before := c.buf.TextBefore(c.mark)
	c.geo.ScrollTo(c.geo.Measure(before) - 1)
}
