package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pf/internal/clipboard"
	"github.com/tormodhaugland/pf/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the pf environment",
	Long: `Checks the config file, the template library and each template in it,
the clipboard and the tokenizer. Exits non-zero if any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report := doctor.Run(cmd.Context(), doctor.Options{
			Config:    cfg,
			Clipboard: clipboard.System{},
			Counter:   counterFor(cfg),
		})

		if jsonOut {
			if err := printJSON(report); err != nil {
				return err
			}
		} else {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, c := range report.Checks {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Severity, c.Name, c.Detail)
			}
			w.Flush()
		}

		if report.Worst() == doctor.SeverityError {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
