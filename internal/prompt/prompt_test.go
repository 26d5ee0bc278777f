package prompt

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestLoadDefault(t *testing.T) {
	l := NewLoader("", "gemini", "gemini-2.5-flash")
	l.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

	got, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(got, "Date: 2025-03-14") {
		t.Errorf("prompt missing date:\n%s", got)
	}
	if !strings.Contains(got, "OS: "+runtime.GOOS) {
		t.Errorf("prompt missing OS:\n%s", got)
	}
}

func TestLoadCustom(t *testing.T) {
	l := NewLoader("Answer via {{.Provider}}/{{.Model | upper}}.", "groq", "llama")

	got, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "Answer via groq/LLAMA." {
		t.Errorf("Load = %q", got)
	}
}

func TestLoadInvalidTemplate(t *testing.T) {
	l := NewLoader("{{.Missing", "", "")
	if _, err := l.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
