package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abcdlsj/blink/internal/agent"
	"github.com/abcdlsj/blink/internal/config"
	"github.com/abcdlsj/blink/internal/launcher"
	"github.com/abcdlsj/blink/internal/llm"
	"github.com/abcdlsj/blink/internal/logger"
	"github.com/abcdlsj/blink/internal/prompt"
	"github.com/abcdlsj/blink/internal/session"
	"github.com/abcdlsj/blink/internal/tui"
)

var rootFlags struct {
	config   string
	provider string
	model    string
	history  string
	verbose  bool
	noStream bool
}

var rootCmd = &cobra.Command{
	Use:   "blink",
	Short: "Popup launcher that answers questions with an LLM",
	Long: `blink opens a small prompt window. Type a question and press enter to
stream the answer from the configured model, or type a reserved token such as
/b, /f or /t to start the matching program.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLauncher,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.config, "config", "c", "", "Config file (default: $BLINK_HOME/config.toml)")
	rootCmd.Flags().StringVarP(&rootFlags.provider, "provider", "p", "", "Provider to use (e.g. gemini, groq, openai, anthropic)")
	rootCmd.Flags().StringVarP(&rootFlags.model, "model", "m", "", "Model name or alias of the provider")
	rootCmd.Flags().StringVar(&rootFlags.history, "history", "", "History retention: session or none")
	rootCmd.Flags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Debug logging and request dumps")
	rootCmd.Flags().BoolVar(&rootFlags.noStream, "no-stream", false, "Wait for the whole answer instead of streaming")

	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(useCmd)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the exit code. The log file is
// closed before the process exits.
func run(args []string) int {
	defer func() { _ = logger.Close() }()

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(rootFlags.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config) error {
	if rootFlags.provider != "" && !cfg.SelectProvider(rootFlags.provider) {
		return fmt.Errorf("unknown provider %q", rootFlags.provider)
	}
	if rootFlags.model != "" {
		cfg.SelectModel(rootFlags.model)
	}
	if rootFlags.history != "" {
		cfg.History = rootFlags.history
	}
	if rootFlags.noStream {
		cfg.Stream = false
	}
	return cfg.Validate()
}

func runLauncher(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cfg); err != nil {
		return err
	}

	// A missing credential is fatal before the window opens.
	if _, err := cfg.APIKey(); err != nil {
		var ce *config.ConfigurationError
		if errors.As(err, &ce) {
			return ce
		}
		return err
	}

	logger.Init(config.Home(), rootFlags.verbose)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client, err := llm.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	sess := session.New(cfg.RetainHistory())
	logger.Info("starting", "session", sess.ID, "model", client.Name(), "stream", cfg.Stream, "retain_history", sess.Retains())

	system, err := prompt.NewLoader(cfg.SystemPrompt, cfg.CurrentProviderName(), cfg.CurrentModelName()).Load()
	if err != nil {
		return fmt.Errorf("failed to render system prompt: %w", err)
	}

	ag := agent.New(client, sess,
		agent.WithSystemPrompt(system),
		agent.WithStream(cfg.Stream),
		agent.WithLogger(logger.NewFileLogger(logger.DumpDir(config.Home(), sess.ID), rootFlags.verbose)),
	)

	ctrl := launcher.NewController(ctx, ag,
		launcher.WithRouter(launcher.NewRouter(actions(cfg.Commands))),
		launcher.WithLauncher(launcher.NewProcessLauncher()),
		launcher.WithGeometry(launcher.GeometrySpec{
			Width:     cfg.Window.Width,
			MinHeight: cfg.Window.MinHeight,
			MaxHeight: cfg.Window.MaxHeight,
			Margins:   launcher.DefaultGeometry().Margins,
		}),
		launcher.WithPrompt(cfg.Prompt),
	)

	model := tui.New(ctx, ctrl,
		tui.WithTheme(cfg.Theme),
		tui.WithQuitOnBlur(cfg.QuitOnBlur),
		tui.WithModelName(client.Name()),
	)
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	_, err = program.Run()
	logger.Info("closing", "session", sess.ID, "turns", sess.Turns())
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func actions(cmds []config.CommandConfig) []launcher.Action {
	out := make([]launcher.Action, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, launcher.Action{Token: c.Token, Name: c.Name, Command: c.Exec})
	}
	return out
}
