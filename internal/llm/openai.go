package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to OpenAI and OpenAI-compatible endpoints such as Groq.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

type headerRoundTripper struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

func NewOpenAIProvider(apiKey, model, baseURL string, headers map[string]string) (*OpenAIProvider, error) {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if len(headers) > 0 {
		config.HTTPClient = &http.Client{
			Transport: &headerRoundTripper{
				headers: headers,
				base:    http.DefaultTransport,
			},
		}
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, lg Logger, messages []Message) (*Response, error) {
	req := p.buildChatRequest(messages, false)
	lg.Debug("openai request", "model", p.model, "messages", len(messages))

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		lg.Error("openai request failed", "error", err)
		return nil, apiError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	choice := resp.Choices[0]
	lg.Info("openai response", "finish_reason", choice.FinishReason,
		"usage_input", resp.Usage.PromptTokens, "usage_output", resp.Usage.CompletionTokens)

	return &Response{
		Content:      choice.Message.Content,
		StopReason:   string(choice.FinishReason),
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}, nil
}

func (p *OpenAIProvider) ChatStream(ctx context.Context, lg Logger, messages []Message) (<-chan StreamChunk, <-chan *Response) {
	chunkCh := make(chan StreamChunk, 16)
	respCh := make(chan *Response, 1)

	go func() {
		defer close(respCh)
		defer close(chunkCh)

		req := p.buildChatRequest(messages, true)
		lg.Debug("openai stream request", "model", p.model, "messages", len(messages))

		stream, err := p.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			lg.Error("openai stream failed", "error", err)
			chunkCh <- StreamChunk{Error: apiError(err)}
			return
		}
		defer stream.Close()

		var full strings.Builder
		var stop string
		var usage openai.Usage
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				lg.Error("openai stream interrupted", "error", err)
				chunkCh <- StreamChunk{Error: apiError(err)}
				return
			}
			if chunk.Usage != nil {
				usage = *chunk.Usage
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			if choice.FinishReason != "" {
				stop = string(choice.FinishReason)
			}
			if choice.Delta.Content != "" {
				full.WriteString(choice.Delta.Content)
				chunkCh <- StreamChunk{Content: choice.Delta.Content}
			}
		}

		respCh <- &Response{
			Content:      full.String(),
			StopReason:   stop,
			InputTokens:  int64(usage.PromptTokens),
			OutputTokens: int64(usage.CompletionTokens),
		}
	}()

	return chunkCh, respCh
}

func (p *OpenAIProvider) buildChatRequest(messages []Message, stream bool) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		msgs = append(msgs, p.toOpenAIMessage(msg))
	}
	req := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: msgs,
		Stream:   stream,
	}
	if stream {
		req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}
	return req
}

func (p *OpenAIProvider) toOpenAIMessage(msg Message) openai.ChatCompletionMessage {
	role := msg.Role
	switch role {
	case "user", "assistant", "system":
	default:
		role = openai.ChatMessageRoleUser
	}
	return openai.ChatCompletionMessage{
		Role:    role,
		Content: msg.Content,
	}
}

// apiError reduces SDK errors to the message the API returned.
func apiError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s (status %d)", apiErr.Message, apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("request failed with status %d: %w", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return err
}
