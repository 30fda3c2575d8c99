package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pf/internal/config"
	"github.com/tormodhaugland/pf/internal/debug"
	"github.com/tormodhaugland/pf/internal/fs"
	"github.com/tormodhaugland/pf/internal/tokens"
)

var (
	cfgFile  string
	jsonOut  bool
	debugOut bool
)

var rootCmd = &cobra.Command{
	Use:   "pf",
	Short: "Prompt Forge - fill prompt templates with files and text",
	Long: `pf turns prompt templates into ready-to-paste prompts. A template marks
places for file contents with {{FILE}} and places for free text with {{INPUT}};
pf binds files and text to those slots, re-reads them on refresh and copies
the composed prompt to the clipboard.

Running 'pf' without arguments launches the TUI.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugOut || os.Getenv("PF_DEBUG") != "" {
			debug.SetDebug(true)
		}
		if os.Getenv("NO_COLOR") != "" {
			debug.SetNoColor(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return tuiCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/pf/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debugOut, "debug", false, "print debug lines to stderr (or set PF_DEBUG)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug.DebugValue("config", cfg.Path())
	return cfg, nil
}

func excludesFor(cfg *config.Config) *fs.ExcludeList {
	return fs.BuildExcludeList(fs.ExcludeOptions{
		Additional: cfg.Excludes,
		NoBuiltin:  cfg.NoBuiltinExcludes,
	})
}

func counterFor(cfg *config.Config) tokens.Counter {
	return tokens.New(cfg.TokenModel, cfg.BytesPerToken)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
