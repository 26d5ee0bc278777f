package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicProvider answers each call with one complete body; ChatStream
// delivers it as a single chunk.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model, baseURL string) (*AnthropicProvider, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		client: &client,
		model:  model,
	}, nil
}

func (p *AnthropicProvider) buildParams(messages []Message) anthropic.MessageNewParams {
	var apiMessages []anthropic.MessageParam
	var systemContent string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemContent = msg.Content
		case "assistant":
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			apiMessages = append(apiMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		Messages:  apiMessages,
	}
	if systemContent != "" {
		params.System = []anthropic.TextBlockParam{{
			Type: "text",
			Text: systemContent,
		}}
	}
	return params
}

func (p *AnthropicProvider) Chat(ctx context.Context, lg Logger, messages []Message) (*Response, error) {
	params := p.buildParams(messages)

	if debug, _ := json.MarshalIndent(params, "", "  "); debug != nil {
		lg.WriteJSON(fmt.Sprintf("request_%s_anthropic.json", time.Now().Format("150405")), debug)
	}
	lg.Debug("llm request", "model", p.model, "messages", len(messages))

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		lg.Error("llm request failed", "error", err)
		return nil, anthropicError(err)
	}

	lg.Info("llm response", "stop_reason", resp.StopReason, "usage_input", resp.Usage.InputTokens, "usage_output", resp.Usage.OutputTokens)
	return parseAnthropicResponse(resp), nil
}

func (p *AnthropicProvider) ChatStream(ctx context.Context, lg Logger, messages []Message) (<-chan StreamChunk, <-chan *Response) {
	chunkCh := make(chan StreamChunk, 1)
	respCh := make(chan *Response, 1)

	go func() {
		defer close(respCh)
		defer close(chunkCh)

		resp, err := p.Chat(ctx, lg, messages)
		if err != nil {
			chunkCh <- StreamChunk{Error: err}
			return
		}
		if resp.Content != "" {
			chunkCh <- StreamChunk{Content: resp.Content}
		}
		respCh <- resp
	}()

	return chunkCh, respCh
}

func parseAnthropicResponse(resp *anthropic.Message) *Response {
	var content string
	for _, block := range resp.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += b.Text
		}
	}

	// Missing usage stays zero; token estimates need a network fetch.
	response := &Response{
		Content:      content,
		StopReason:   string(resp.StopReason),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	return response
}

func anthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("status %d: %w", apiErr.StatusCode, err)
	}
	return err
}
