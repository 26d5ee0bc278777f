package agent

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/abcdlsj/blink/internal/event"
	"github.com/abcdlsj/blink/internal/launcher"
	"github.com/abcdlsj/blink/internal/llm"
	"github.com/abcdlsj/blink/internal/logger"
	"github.com/abcdlsj/blink/internal/session"
)

// Agent answers launcher prompts with one model call each. It implements
// launcher.Backend.
type Agent struct {
	llm     *llm.LLM
	session *session.Session
	system  string
	stream  bool
	lg      llm.Logger
}

type Option func(*Agent)

// WithSystemPrompt sets the system message sent ahead of the history.
func WithSystemPrompt(p string) Option { return func(a *Agent) { a.system = p } }

// WithStream selects streaming or single-shot calls. Streaming is the default.
func WithStream(on bool) Option { return func(a *Agent) { a.stream = on } }

// WithLogger sets where request dumps and provider logs go.
func WithLogger(lg llm.Logger) Option { return func(a *Agent) { a.lg = lg } }

func New(l *llm.LLM, s *session.Session, opts ...Option) *Agent {
	a := &Agent{
		llm:     l,
		session: s,
		stream:  true,
		lg:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open starts the model call for input and returns its reply.
func (a *Agent) Open(ctx context.Context, input string) (launcher.Source, error) {
	ctx, cancel := context.WithCancel(ctx)
	ch := a.Run(ctx, input)
	return &Reply{events: ch, cancel: cancel}, nil
}

// Run performs the call in the background. The channel closes after a Done
// or Error event.
func (a *Agent) Run(ctx context.Context, input string) <-chan event.Event {
	ch := make(chan event.Event, 64)

	go func() {
		defer close(ch)

		messages := a.buildMessages(input)
		if logger.DebugEnabled() {
			logger.Debug("calling model", "model", a.llm.Name(), "messages", len(messages),
				"prompt_tokens", llm.EstimateMessagesTokens(messages, a.model()))
		}

		var fullText strings.Builder
		resp, ok := a.chat(ctx, messages, ch, &fullText)
		if !ok {
			return
		}

		a.session.Record(input, fullText.String())

		done := event.DoneData{FullText: fullText.String()}
		if resp != nil {
			done.OutputTokens = resp.OutputTokens
		}
		send(ctx, ch, event.Event{Type: event.Done, Data: done})

		// The stream is already over for the caller; estimates only feed logs.
		if done.OutputTokens == 0 && logger.DebugEnabled() {
			done.OutputTokens = llm.EstimateTokens(done.FullText, a.model())
		}
		logger.Info("model call finished", "model", a.llm.Name(), "turns", a.session.Turns(), "output_tokens", done.OutputTokens)
	}()

	return ch
}

func (a *Agent) buildMessages(input string) []llm.Message {
	var messages []llm.Message

	if a.system != "" {
		messages = append(messages, llm.Message{
			Role:    "system",
			Content: a.system,
		})
	}

	messages = append(messages, llm.FromLangchainMessages(a.session.History())...)

	messages = append(messages, llm.Message{
		Role:    "user",
		Content: input,
	})

	return messages
}

func (a *Agent) chat(ctx context.Context, messages []llm.Message, ch chan event.Event, full *strings.Builder) (*llm.Response, bool) {
	if a.stream {
		chunkCh, respCh := a.llm.ChatStream(ctx, a.lg, messages)
		for chunk := range chunkCh {
			if chunk.Error != nil {
				logger.Warn("stream failed", "error", chunk.Error, "started", full.Len() > 0)
				send(ctx, ch, event.Fail(chunk.Error, full.Len() > 0))
				return nil, false
			}
			if chunk.Content != "" {
				full.WriteString(chunk.Content)
				if !send(ctx, ch, event.Delta(chunk.Content)) {
					go drain(chunkCh)
					return nil, false
				}
			}
		}
		return <-respCh, true
	}

	resp, err := a.llm.Chat(ctx, a.lg, messages)
	if err != nil {
		logger.Warn("chat failed", "error", err)
		send(ctx, ch, event.Fail(err, false))
		return nil, false
	}
	if resp != nil && resp.Content != "" {
		full.WriteString(resp.Content)
		if !send(ctx, ch, event.Delta(resp.Content)) {
			return nil, false
		}
	}
	return resp, true
}

func (a *Agent) model() string {
	name := a.llm.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func drain(ch <-chan llm.StreamChunk) {
	for range ch {
	}
}

func send(ctx context.Context, ch chan<- event.Event, ev event.Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Reply is the launcher.Source for one call.
type Reply struct {
	events <-chan event.Event
	cancel context.CancelFunc
	once   sync.Once
}

func (r *Reply) Recv(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, ok := <-r.events:
			if !ok {
				return "", io.EOF
			}
			switch ev.Type {
			case event.TextDelta:
				return ev.Data.(event.TextDeltaData).Text, nil
			case event.Done:
				return "", io.EOF
			case event.Error:
				data := ev.Data.(event.ErrorData)
				if !data.Started {
					return "", &launcher.CallError{Err: data.Err}
				}
				return "", data.Err
			}
		}
	}
}

// Close cancels the call if it is still running.
func (r *Reply) Close() error {
	r.once.Do(r.cancel)
	return nil
}
