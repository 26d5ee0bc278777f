package prompt

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"
	"text/template"
	"time"
)

// TemplateData holds the data available for prompt templates
type TemplateData struct {
	WorkingDir string
	OS         string
	Date       string
	Provider   string
	Model      string
}

// Loader renders the system prompt sent ahead of every question.
type Loader struct {
	tpl      string
	provider string
	model    string
	now      func() time.Time
}

// NewLoader creates a loader for tpl. An empty tpl selects the built-in prompt.
func NewLoader(tpl, provider, model string) *Loader {
	if strings.TrimSpace(tpl) == "" {
		tpl = defaultSystemPromptTemplate
	}
	return &Loader{
		tpl:      tpl,
		provider: provider,
		model:    model,
		now:      time.Now,
	}
}

// Load renders the system prompt.
func (l *Loader) Load() (string, error) {
	return l.render(l.tpl)
}

func (l *Loader) render(tpl string) (string, error) {
	funcMap := template.FuncMap{
		"join":  strings.Join,
		"upper": strings.ToUpper,
	}

	t, err := template.New("prompt").Funcs(funcMap).Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, l.buildData()); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func (l *Loader) buildData() TemplateData {
	wd, _ := os.Getwd()

	return TemplateData{
		WorkingDir: wd,
		OS:         runtime.GOOS,
		Date:       l.now().Format("2006-01-02"),
		Provider:   l.provider,
		Model:      l.model,
	}
}

// defaultSystemPromptTemplate is the built-in default prompt
const defaultSystemPromptTemplate = `You are a quick-answer assistant living in a small popup launcher on the user's desktop.

## Environment

- OS: {{.OS}}
- Date: {{.Date}}
- Working directory: {{.WorkingDir}}

## Response Style

- The window is narrow and shows plain text only. Do not use markdown tables, headings or code fences.
- Answer in a few short lines. Lead with the answer, skip preamble.
- Answer in the user's language.
- If the question is ambiguous, give the most likely answer and say what you assumed.`
