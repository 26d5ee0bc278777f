package llm

import (
	"testing"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"github.com/abcdlsj/blink/internal/config"
)

func TestFromLangchainMessages(t *testing.T) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "be brief"),
		llms.TextParts(llms.ChatMessageTypeHuman, "hel", "lo"),
		llms.TextParts(llms.ChatMessageTypeAI, "hi"),
	}

	got := FromLangchainMessages(msgs)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildContents(t *testing.T) {
	contents, cfg := buildContents([]Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "again"},
	})

	if cfg == nil || cfg.SystemInstruction == nil {
		t.Fatal("system instruction missing")
	}
	if got := cfg.SystemInstruction.Parts[0].Text; got != "be brief" {
		t.Errorf("system instruction = %q", got)
	}
	if len(contents) != 3 {
		t.Fatalf("contents len = %d, want 3", len(contents))
	}
	if contents[1].Role != string(genai.RoleModel) {
		t.Errorf("contents[1].Role = %q, want model", contents[1].Role)
	}
	if contents[2].Parts[0].Text != "again" {
		t.Errorf("last part = %q, want again", contents[2].Parts[0].Text)
	}
}

func TestBuildContentsWithoutSystem(t *testing.T) {
	contents, cfg := buildContents([]Message{{Role: "user", Content: "hello"}})
	if cfg != nil {
		t.Errorf("cfg = %+v, want nil", cfg)
	}
	if len(contents) != 1 || contents[0].Role != string(genai.RoleUser) {
		t.Errorf("contents = %+v", contents)
	}
}

func TestAnthropicBuildParams(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-5"}
	params := p.buildParams([]Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	})

	if len(params.Messages) != 2 {
		t.Fatalf("Messages len = %d, want 2", len(params.Messages))
	}
	if len(params.System) != 1 || params.System[0].Text != "be brief" {
		t.Errorf("System = %+v", params.System)
	}
	if params.MaxTokens != anthropicMaxTokens {
		t.Errorf("MaxTokens = %d", params.MaxTokens)
	}
}

func TestCreateProviderFromConfig(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")

	cfg := config.Default()
	if !cfg.SelectProvider("groq") {
		t.Fatal("groq provider missing from defaults")
	}

	p, err := CreateProviderFromConfig(t.Context(), cfg)
	if err != nil {
		t.Fatalf("CreateProviderFromConfig: %v", err)
	}
	op, ok := p.(*OpenAIProvider)
	if !ok {
		t.Fatalf("provider = %T, want *OpenAIProvider", p)
	}
	if op.model != "llama-3.3-70b-versatile" {
		t.Errorf("model = %q", op.model)
	}
}

func TestCreateProviderMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.Default()
	cfg.SelectProvider("openai")

	_, err := CreateProviderFromConfig(t.Context(), cfg)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if _, ok := err.(*config.ConfigurationError); !ok {
		t.Errorf("err = %T, want *config.ConfigurationError", err)
	}
}
