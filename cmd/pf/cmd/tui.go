package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pf/internal/clipboard"
	"github.com/tormodhaugland/pf/internal/prompt"
	"github.com/tormodhaugland/pf/internal/tui"
)

var tuiRoot string

var tuiCmd = &cobra.Command{
	Use:   "tui [template]",
	Short: "Launch the interactive TUI",
	Long: `Launches the session screen. Pick files for each {{FILE}} slot, type text
for each {{INPUT}} slot, refresh from disk and copy the result.

The optional argument is a template file or the name of a library template.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		session := prompt.NewSession()
		if len(args) == 1 {
			if err := loadTemplate(ctx, session, cfg, args[0]); err != nil {
				return err
			}
		}

		root := tuiRoot
		if root == "" {
			root = cfg.Root()
		}

		return tui.Run(ctx, tui.Options{
			Session:    session,
			Root:       root,
			Excludes:   excludesFor(cfg),
			Clipboard:  clipboard.System{},
			Counter:    counterFor(cfg),
			LibraryDir: cfg.LibraryDir,
		})
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiRoot, "root", "", "directory files are picked from (default: config default_root or cwd)")
	rootCmd.AddCommand(tuiCmd)
}
