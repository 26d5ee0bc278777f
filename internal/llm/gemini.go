package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model, baseURL string) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// buildContents splits messages into the system instruction and the turn
// history Gemini expects.
func buildContents(messages []Message) ([]*genai.Content, *genai.GenerateContentConfig) {
	var contents []*genai.Content
	var cfg *genai.GenerateContentConfig
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			cfg = &genai.GenerateContentConfig{
				SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: msg.Content}}},
			}
		case "assistant":
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	return contents, cfg
}

func (p *GeminiProvider) Chat(ctx context.Context, lg Logger, messages []Message) (*Response, error) {
	contents, cfg := buildContents(messages)
	lg.Debug("gemini request", "model", p.model, "messages", len(messages))

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		lg.Error("gemini request failed", "error", err)
		return nil, err
	}

	out := &Response{Content: resp.Text()}
	if len(resp.Candidates) > 0 {
		out.StopReason = string(resp.Candidates[0].FinishReason)
	}
	if u := resp.UsageMetadata; u != nil {
		out.InputTokens = int64(u.PromptTokenCount)
		out.OutputTokens = int64(u.CandidatesTokenCount)
	}
	lg.Info("gemini response", "stop_reason", out.StopReason, "usage_input", out.InputTokens, "usage_output", out.OutputTokens)
	return out, nil
}

func (p *GeminiProvider) ChatStream(ctx context.Context, lg Logger, messages []Message) (<-chan StreamChunk, <-chan *Response) {
	chunkCh := make(chan StreamChunk, 16)
	respCh := make(chan *Response, 1)

	go func() {
		defer close(respCh)
		defer close(chunkCh)

		contents, cfg := buildContents(messages)
		lg.Debug("gemini stream request", "model", p.model, "messages", len(messages))

		var full strings.Builder
		out := &Response{}
		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, cfg) {
			if err != nil {
				lg.Error("gemini stream failed", "error", err)
				chunkCh <- StreamChunk{Error: err}
				return
			}
			if text := resp.Text(); text != "" {
				full.WriteString(text)
				chunkCh <- StreamChunk{Content: text}
			}
			if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
				out.StopReason = string(resp.Candidates[0].FinishReason)
			}
			if u := resp.UsageMetadata; u != nil {
				out.InputTokens = int64(u.PromptTokenCount)
				out.OutputTokens = int64(u.CandidatesTokenCount)
			}
		}

		out.Content = full.String()
		respCh <- out
	}()

	return chunkCh, respCh
}
