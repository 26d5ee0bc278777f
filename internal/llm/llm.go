package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/abcdlsj/blink/internal/config"
	"github.com/abcdlsj/blink/internal/logger"
)

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content      string
	StopReason   string
	InputTokens  int64
	OutputTokens int64
}

type StreamChunk struct {
	Content string
	Error   error
}

// Provider is one chat backend. ChatStream closes the chunk channel when the
// call ends; the response channel then yields the full response, or nothing
// if the call failed.
type Provider interface {
	Chat(ctx context.Context, lg Logger, messages []Message) (*Response, error)
	ChatStream(ctx context.Context, lg Logger, messages []Message) (<-chan StreamChunk, <-chan *Response)
}

// Logger is the logging surface a provider receives for each call.
type Logger = logger.Logger

type LLM struct {
	provider Provider
	name     string
}

// New builds the client for the current provider of cfg.
func New(ctx context.Context, cfg *config.Config) (*LLM, error) {
	provider, err := CreateProviderFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &LLM{provider: provider, name: cfg.CurrentProviderName() + "/" + cfg.CurrentModelName()}, nil
}

// NewWithProvider wraps an existing provider.
func NewWithProvider(p Provider, name string) *LLM {
	return &LLM{provider: p, name: name}
}

func CreateProviderFromConfig(ctx context.Context, cfg *config.Config) (Provider, error) {
	p := cfg.CurrentProvider()
	if p == nil {
		return nil, fmt.Errorf("no provider configured")
	}

	m := cfg.CurrentModel()
	if m == nil {
		return nil, fmt.Errorf("no model configured for provider %s", p.Name)
	}

	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}

	switch p.Kind() {
	case "anthropic", "claude":
		return NewAnthropicProvider(apiKey, m.Name, p.BaseURL)
	case "openai":
		return NewOpenAIProvider(apiKey, m.Name, p.BaseURL, p.Headers)
	case "gemini", "google":
		return NewGeminiProvider(ctx, apiKey, m.Name, p.BaseURL)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", p.Kind())
	}
}

func (l *LLM) Name() string { return l.name }

func (l *LLM) Chat(ctx context.Context, lg Logger, messages []Message) (*Response, error) {
	return l.provider.Chat(ctx, lg, messages)
}

func (l *LLM) ChatStream(ctx context.Context, lg Logger, messages []Message) (<-chan StreamChunk, <-chan *Response) {
	return l.provider.ChatStream(ctx, lg, messages)
}

func FromLangchainMessages(msgs []llms.MessageContent) []Message {
	var messages []Message
	for _, m := range msgs {
		msg := Message{
			Role: convertRole(m.Role),
		}
		for _, part := range m.Parts {
			if p, ok := part.(llms.TextContent); ok {
				msg.Content += p.Text
			}
		}
		messages = append(messages, msg)
	}
	return messages
}

func convertRole(role llms.ChatMessageType) string {
	switch role {
	case llms.ChatMessageTypeHuman:
		return "user"
	case llms.ChatMessageTypeAI:
		return "assistant"
	case llms.ChatMessageTypeSystem:
		return "system"
	default:
		return "user"
	}
}
