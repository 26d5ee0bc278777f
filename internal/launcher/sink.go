package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/abcdlsj/blink/internal/logger"
)

// Source is a lazy, finite, non-restartable sequence of response fragments.
// Recv blocks until the next fragment is available and returns io.EOF once
// the response is complete.
type Source interface {
	Recv(ctx context.Context) (string, error)
}

// Backend starts a response for prompt.
type Backend interface {
	Open(ctx context.Context, prompt string) (Source, error)
}

// CallError reports a backend call that failed before producing a response,
// e.g. a network, auth or quota failure.
type CallError struct {
	Err error
}

func (e *CallError) Error() string { return e.Err.Error() }
func (e *CallError) Unwrap() error { return e.Err }

// Delivery is the result of one Pull: a fragment, the end of the stream or an
// error.
type Delivery struct {
	sink     *Sink
	Fragment string
	End      bool
	Err      error
}

// Sink feeds the fragments of one backend call into a Controller. Pull may
// run on any goroutine; Deliver must run on the goroutine that owns the
// controller.
type Sink struct {
	ctrl     *Controller
	src      Source
	received int
	done     bool
}

// Open invokes the backend call for text. A call that fails to start yields
// a sink whose first delivery carries the failure.
func Open(ctx context.Context, ctrl *Controller, backend Backend, text string) *Sink {
	s := &Sink{ctrl: ctrl}
	src, err := backend.Open(ctx, text)
	if err != nil {
		s.src = failedSource{err: &CallError{Err: err}}
		return s
	}
	s.src = src
	return s
}

// Pull waits for the next fragment. Panics raised by the source are turned
// into stream errors.
func (s *Sink) Pull(ctx context.Context) (d Delivery) {
	d.sink = s
	defer func() {
		if r := recover(); r != nil {
			logger.Error("stream source panicked", "panic", r)
			d.Fragment = ""
			d.End = false
			d.Err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	text, err := s.src.Recv(ctx)
	switch {
	case errors.Is(err, io.EOF):
		d.End = true
	case err != nil:
		d.Err = err
	default:
		d.Fragment = text
	}
	return d
}

// Deliver hands d to the controller. Deliveries for a sink the controller
// no longer owns are dropped.
func (s *Sink) Deliver(d Delivery) {
	if s.done {
		return
	}
	if d.sink != nil && d.sink != s {
		return
	}
	if s.ctrl.stream != s {
		s.done = true
		logger.Debug("dropping delivery for released stream")
		return
	}
	switch {
	case d.Err != nil:
		s.done = true
		s.ctrl.OnStreamError(s.errorMessage(d.Err))
	case d.End:
		s.done = true
		s.ctrl.OnStreamEnd()
	case d.Fragment != "":
		s.received++
		s.ctrl.OnFragment(d.Fragment)
	}
}

// Pump pulls and delivers one step synchronously. It reports whether the
// stream is still open.
func (s *Sink) Pump(ctx context.Context) bool {
	if s.done {
		return false
	}
	s.Deliver(s.Pull(ctx))
	return !s.done
}

func (s *Sink) Done() bool { return s.done }

// close stops a source that can be stopped. The sink stays usable; later
// deliveries are dropped because the controller no longer owns it.
func (s *Sink) close() {
	if c, ok := s.src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Debug("closing stream source", "error", err)
		}
	}
}

// Received is the number of fragments delivered so far.
func (s *Sink) Received() int { return s.received }

// errorMessage formats err for the buffer. Failures after partial output
// start on a new line.
func (s *Sink) errorMessage(err error) string {
	var ce *CallError
	msg := "Streaming error: "
	if errors.As(err, &ce) || s.received == 0 {
		msg = "API Error: "
	}
	if s.received > 0 {
		msg = "\n" + msg
	}
	return msg + err.Error()
}

type failedSource struct {
	err error
}

func (f failedSource) Recv(context.Context) (string, error) {
	return "", f.err
}
