package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	HistorySession = "session"
	HistoryNone    = "none"
)

type ModelConfig struct {
	Name    string `toml:"name"`
	Alias   string `toml:"alias,omitempty"`
	Default bool   `toml:"default,omitempty"`
}

type ProviderConfig struct {
	Name string `toml:"name"`
	// Type selects the client: openai, anthropic or gemini. Defaults to Name.
	Type      string            `toml:"type,omitempty"`
	BaseURL   string            `toml:"base_url,omitempty"`
	APIKey    string            `toml:"api_key,omitempty"`
	APIKeyEnv string            `toml:"api_key_env,omitempty"`
	Headers   map[string]string `toml:"headers,omitempty"`
	Models    []ModelConfig     `toml:"models"`
	Default   bool              `toml:"default,omitempty"`
}

func (p *ProviderConfig) Kind() string {
	if p.Type != "" {
		return p.Type
	}
	return p.Name
}

type WindowConfig struct {
	Width     int `toml:"width"`
	MinHeight int `toml:"min_height"`
	MaxHeight int `toml:"max_height"`
}

type ThemeConfig struct {
	Prompt string `toml:"prompt"`
	User   string `toml:"user"`
	AI     string `toml:"ai"`
	Error  string `toml:"error"`
	Border string `toml:"border"`
}

// CommandConfig binds a reserved token to an external program.
type CommandConfig struct {
	Token string   `toml:"token"`
	Name  string   `toml:"name"`
	Exec  []string `toml:"exec"`
}

type Config struct {
	Providers    []ProviderConfig `toml:"providers"`
	Stream       bool             `toml:"stream"`
	History      string           `toml:"history"`
	QuitOnBlur   bool             `toml:"quit_on_blur"`
	Prompt       string           `toml:"prompt"`
	SystemPrompt string           `toml:"system_prompt,omitempty"`
	Window       WindowConfig     `toml:"window"`
	Theme        ThemeConfig      `toml:"theme"`
	Commands     []CommandConfig  `toml:"commands"`

	path               string
	currentProviderIdx int
	currentModelIdx    int
}

// ConfigurationError reports a missing credential. It is fatal at startup.
type ConfigurationError struct {
	Provider string
	Env      string
}

func (e *ConfigurationError) Error() string {
	if e.Env == "" {
		return fmt.Sprintf("no API key configured for provider %q", e.Provider)
	}
	return fmt.Sprintf("%s not found for provider %q: set it in the environment or a .env file", e.Env, e.Provider)
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{
		Providers: []ProviderConfig{
			{
				Name:      "gemini",
				APIKeyEnv: "GEMINI_API_KEY",
				Models:    []ModelConfig{{Name: "gemini-2.5-flash", Default: true}},
				Default:   true,
			},
			{
				Name:      "groq",
				Type:      "openai",
				BaseURL:   "https://api.groq.com/openai/v1",
				APIKeyEnv: "GROQ_API_KEY",
				Models:    []ModelConfig{{Name: "llama-3.3-70b-versatile", Alias: "llama", Default: true}},
			},
			{
				Name:      "openai",
				APIKeyEnv: "OPENAI_API_KEY",
				Models:    []ModelConfig{{Name: "gpt-4o-mini", Default: true}},
			},
			{
				Name:      "anthropic",
				APIKeyEnv: "ANTHROPIC_API_KEY",
				Models:    []ModelConfig{{Name: "claude-sonnet-4-5", Alias: "sonnet", Default: true}},
			},
		},
		Stream:     true,
		History:    HistorySession,
		QuitOnBlur: true,
		Prompt:     "> ",
		Window:     WindowConfig{Width: 72, MinHeight: 3, MaxHeight: 20},
		Theme: ThemeConfig{
			Prompt: "#729FCF",
			User:   "#FFFFFF",
			AI:     "#D3D7CF",
			Error:  "#FF4444",
			Border: "#555753",
		},
		Commands: []CommandConfig{
			{Token: "/b", Name: "open-browser", Exec: []string{"x-www-browser"}},
			{Token: "/f", Name: "open-file-manager", Exec: []string{"thunar"}},
			{Token: "/t", Name: "open-terminal", Exec: []string{"xfce4-terminal"}},
		},
	}
	c.initCurrentSelection()
	return c
}

// Load reads the TOML file at path, or Home()/config.toml when path is empty.
// A missing file yields the defaults; unset keys keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(Home(), "config.toml")
	}

	def := Default()
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if errors.Is(err, os.ErrNotExist) {
		def.path = path
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	c.path = path
	if len(c.Providers) == 0 {
		c.Providers = def.Providers
	}
	if !md.IsDefined("stream") {
		c.Stream = def.Stream
	}
	if !md.IsDefined("quit_on_blur") {
		c.QuitOnBlur = def.QuitOnBlur
	}
	if c.History == "" {
		c.History = def.History
	}
	if c.Prompt == "" {
		c.Prompt = def.Prompt
	}
	if c.Window.Width <= 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.MinHeight <= 0 {
		c.Window.MinHeight = def.Window.MinHeight
	}
	if c.Window.MaxHeight <= 0 {
		c.Window.MaxHeight = def.Window.MaxHeight
	}
	fillTheme(&c.Theme, def.Theme)
	if !md.IsDefined("commands") {
		c.Commands = def.Commands
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.initCurrentSelection()
	return &c, nil
}

func fillTheme(t *ThemeConfig, def ThemeConfig) {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&t.Prompt, def.Prompt},
		{&t.User, def.User},
		{&t.AI, def.AI},
		{&t.Error, def.Error},
		{&t.Border, def.Border},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}
}

func (c *Config) Validate() error {
	switch c.History {
	case HistorySession, HistoryNone:
	default:
		return fmt.Errorf("history must be %q or %q, got %q", HistorySession, HistoryNone, c.History)
	}
	if c.Window.MaxHeight < c.Window.MinHeight {
		return fmt.Errorf("window max_height %d is below min_height %d", c.Window.MaxHeight, c.Window.MinHeight)
	}
	for _, cmd := range c.Commands {
		if cmd.Token == "" || len(cmd.Exec) == 0 {
			return fmt.Errorf("command %q needs a token and exec", cmd.Name)
		}
	}
	return nil
}

// LoadEnv loads .env files into the environment. Files that do not exist
// are skipped; variables already set win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", filepath.Join(Home(), ".env")}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// APIKey resolves the credential of the current provider.
func (c *Config) APIKey() (string, error) {
	p := c.CurrentProvider()
	if p == nil {
		return "", errors.New("no provider configured")
	}
	if p.APIKey != "" {
		return p.APIKey, nil
	}
	if p.APIKeyEnv != "" {
		if v := os.Getenv(p.APIKeyEnv); v != "" {
			return v, nil
		}
	}
	return "", &ConfigurationError{Provider: p.Name, Env: p.APIKeyEnv}
}

func (c *Config) RetainHistory() bool {
	return c.History != HistoryNone
}

func (c *Config) initCurrentSelection() {
	for i, p := range c.Providers {
		if p.Default {
			c.currentProviderIdx = i
			c.currentModelIdx = defaultModelIdx(p.Models)
			return
		}
	}
	c.currentProviderIdx = 0
	if len(c.Providers) > 0 {
		c.currentModelIdx = defaultModelIdx(c.Providers[0].Models)
	}
}

func defaultModelIdx(models []ModelConfig) int {
	for i, m := range models {
		if m.Default {
			return i
		}
	}
	return 0
}

func (c *Config) CurrentProvider() *ProviderConfig {
	if c.currentProviderIdx >= len(c.Providers) {
		return nil
	}
	return &c.Providers[c.currentProviderIdx]
}

func (c *Config) CurrentModel() *ModelConfig {
	p := c.CurrentProvider()
	if p == nil || c.currentModelIdx >= len(p.Models) {
		return nil
	}
	return &p.Models[c.currentModelIdx]
}

func (c *Config) CurrentModelName() string {
	m := c.CurrentModel()
	if m == nil {
		return "unknown"
	}
	if m.Alias != "" {
		return m.Alias
	}
	return m.Name
}

func (c *Config) CurrentProviderName() string {
	p := c.CurrentProvider()
	if p == nil {
		return "unknown"
	}
	return p.Name
}

// SelectProvider makes the named provider current with its default model.
func (c *Config) SelectProvider(name string) bool {
	for i, p := range c.Providers {
		if p.Name == name {
			c.currentProviderIdx = i
			c.currentModelIdx = defaultModelIdx(p.Models)
			return true
		}
	}
	return false
}

// SelectModel picks a model of the current provider by name or alias. An
// unknown name is added to the provider's model list.
func (c *Config) SelectModel(name string) {
	p := c.CurrentProvider()
	if p == nil {
		return
	}
	for i, m := range p.Models {
		if m.Name == name || m.Alias == name {
			c.currentModelIdx = i
			return
		}
	}
	p.Models = append(p.Models, ModelConfig{Name: name})
	c.currentModelIdx = len(p.Models) - 1
}

// SetModel marks providerName/modelName as the persisted default.
func (c *Config) SetModel(providerName, modelName string) bool {
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Name != providerName {
			continue
		}
		for j := range p.Models {
			m := &p.Models[j]
			if m.Name != modelName && m.Alias != modelName {
				continue
			}
			for k := range c.Providers {
				c.Providers[k].Default = false
			}
			for k := range p.Models {
				p.Models[k].Default = false
			}
			p.Default = true
			m.Default = true
			c.currentProviderIdx = i
			c.currentModelIdx = j
			return true
		}
	}
	return false
}

func (c *Config) ListModels() []string {
	var result []string
	for _, p := range c.Providers {
		for _, m := range p.Models {
			display := m.Name
			if m.Alias != "" {
				display = m.Alias
			}
			result = append(result, p.Name+"/"+display)
		}
	}
	return result
}

func (c *Config) Path() string {
	if c.path != "" {
		return c.path
	}
	return filepath.Join(Home(), "config.toml")
}

// Save writes the configuration to its file.
func (c *Config) Save() error {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

func Home() string {
	if h := os.Getenv("BLINK_HOME"); h != "" {
		return h
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "blink")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "blink")
}
