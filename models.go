package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		current := cfg.CurrentProviderName() + "/" + cfg.CurrentModelName()
		for _, m := range cfg.ListModels() {
			marker := "  "
			if m == current {
				marker = "* "
			}
			fmt.Fprintln(cmd.OutOrStdout(), marker+m)
		}
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <provider>/<model>",
	Short: "Set and save the default model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		providerName, modelName, ok := strings.Cut(args[0], "/")
		if !ok {
			return fmt.Errorf("expected <provider>/<model>, got %q", args[0])
		}
		if !cfg.SetModel(providerName, modelName) {
			return fmt.Errorf("model %q not found, run blink models to list them", args[0])
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Default model: %s/%s (%s)\n", providerName, cfg.CurrentModelName(), cfg.Path())
		return nil
	},
}
