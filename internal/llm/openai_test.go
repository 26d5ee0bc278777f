package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/abcdlsj/blink/internal/logger"
)

func TestToOpenAIMessage(t *testing.T) {
	p := &OpenAIProvider{}

	tests := []struct {
		name string
		msg  Message
		want openai.ChatCompletionMessage
	}{
		{
			name: "user message",
			msg:  Message{Role: "user", Content: "hello"},
			want: openai.ChatCompletionMessage{Role: "user", Content: "hello"},
		},
		{
			name: "assistant message",
			msg:  Message{Role: "assistant", Content: "hi there"},
			want: openai.ChatCompletionMessage{Role: "assistant", Content: "hi there"},
		},
		{
			name: "system message",
			msg:  Message{Role: "system", Content: "be brief"},
			want: openai.ChatCompletionMessage{Role: "system", Content: "be brief"},
		},
		{
			name: "unknown role falls back to user",
			msg:  Message{Role: "tool", Content: "output"},
			want: openai.ChatCompletionMessage{Role: "user", Content: "output"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.toOpenAIMessage(tt.msg)
			if got.Role != tt.want.Role {
				t.Errorf("Role = %q, want %q", got.Role, tt.want.Role)
			}
			if got.Content != tt.want.Content {
				t.Errorf("Content = %q, want %q", got.Content, tt.want.Content)
			}
		})
	}
}

func TestBuildChatRequest(t *testing.T) {
	p := &OpenAIProvider{model: "llama-3.3-70b-versatile"}

	msgs := []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "again"},
	}

	req := p.buildChatRequest(msgs, true)

	if req.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %q, want llama-3.3-70b-versatile", req.Model)
	}
	if len(req.Messages) != 4 {
		t.Fatalf("Messages len = %d, want 4", len(req.Messages))
	}
	if !req.Stream {
		t.Error("Stream = false, want true")
	}
	if req.Messages[3].Content != "again" {
		t.Errorf("last message = %q, want again", req.Messages[3].Content)
	}
	if req.StreamOptions == nil || !req.StreamOptions.IncludeUsage {
		t.Error("streamed request does not ask for usage")
	}

	if single := p.buildChatRequest(msgs, false); single.StreamOptions != nil {
		t.Error("single-shot request carries stream options")
	}
}

func TestChatStreamReadsUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, data := range []string{
			`{"id":"1","choices":[{"index":0,"delta":{"content":"Hi"}}]}`,
			`{"id":"1","choices":[{"index":0,"delta":{"content":" there"},"finish_reason":"stop"}]}`,
			`{"id":"1","choices":[],"usage":{"prompt_tokens":7,"completion_tokens":2,"total_tokens":9}}`,
			`[DONE]`,
		} {
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("key", "llama", srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	chunkCh, respCh := p.ChatStream(context.Background(), logger.Nop(), []Message{{Role: "user", Content: "hello"}})
	var text string
	for c := range chunkCh {
		if c.Error != nil {
			t.Fatalf("chunk error: %v", c.Error)
		}
		text += c.Content
	}
	resp := <-respCh
	if resp == nil {
		t.Fatal("no response")
	}
	if text != "Hi there" || resp.Content != "Hi there" {
		t.Errorf("content = %q / %q", text, resp.Content)
	}
	if resp.StopReason != "stop" || resp.InputTokens != 7 || resp.OutputTokens != 2 {
		t.Errorf("resp = %+v", resp)
	}
}
