package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tormodhaugland/pf/internal/changes"
	"github.com/tormodhaugland/pf/internal/clipboard"
	"github.com/tormodhaugland/pf/internal/tui"
)

var (
	applyDir       string
	applyClipboard bool
	applyDryRun    bool
	applyYes       bool
)

type applyOutput struct {
	*changes.ApplyResult
	Invalid []string `json:"invalid,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

var applyCmd = &cobra.Command{
	Use:   "apply [changes.xml|-]",
	Short: "Apply an XML change list to a directory",
	Long: `Reads a <changed_files> document, typically pasted back from a model, and
creates, updates or deletes the listed files below --dir.

Each <file> entry needs <file_operation> (CREATE, UPDATE or DELETE) and a
relative <file_path>; CREATE and UPDATE also need <file_code>. Invalid
entries are reported and skipped. Paths that leave --dir are refused.

When a terminal is attached pf asks before writing; --yes skips the question.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readChangeList(args)
		if err != nil {
			return err
		}

		list, err := changes.Parse(text)
		if err != nil {
			return err
		}

		dir := applyDir
		if dir == "" {
			dir = "."
		}
		if !applyDryRun && !applyYes && len(list.Changes) > 0 && interactive() {
			ok, err := confirmApply(list, dir)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(os.Stderr, "Cancelled")
				return nil
			}
		}

		result, err := changes.Apply(dir, list.Changes, changes.ApplyOptions{DryRun: applyDryRun})
		if err != nil {
			return err
		}

		out := applyOutput{ApplyResult: result}
		for _, v := range list.Invalid {
			out.Invalid = append(out.Invalid, v.Error())
		}
		for _, f := range result.Failed {
			out.Errors = append(out.Errors, f.Error())
		}

		if jsonOut {
			if err := printJSON(out); err != nil {
				return err
			}
		} else {
			printApplyResult(out)
		}

		if result.HasFailures() {
			return fmt.Errorf("%d changes failed", len(result.Failed))
		}
		return nil
	},
}

func readChangeList(args []string) (string, error) {
	switch {
	case applyClipboard:
		if len(args) > 0 {
			return "", fmt.Errorf("--clipboard cannot be combined with a file argument")
		}
		return clipboard.System{}.ReadText()
	case len(args) == 0 || args[0] == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading change list: %w", err)
		}
		return string(data), nil
	}
}

// interactive reports whether dialogs can be shown. They draw on stderr so
// stdout stays clean.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

func confirmApply(list *changes.ChangeList, dir string) (bool, error) {
	counts := map[changes.Operation]int{}
	for _, c := range list.Changes {
		counts[c.Operation]++
	}
	detail := fmt.Sprintf("%d create, %d update, %d delete", counts[changes.OpCreate], counts[changes.OpUpdate], counts[changes.OpDelete])

	tui.UseStderr()
	res, err := tui.RunConfirm(fmt.Sprintf("Apply %d changes to %s?", len(list.Changes), dir), detail)
	if err != nil {
		return false, err
	}
	return res.Confirmed && !res.Aborted, nil
}

func printApplyResult(out applyOutput) {
	prefix := ""
	if out.DryRun {
		prefix = "would be "
	}
	section := func(label string, paths []string) {
		if len(paths) == 0 {
			return
		}
		fmt.Printf("%s%s (%d):\n", prefix, label, len(paths))
		for _, p := range paths {
			fmt.Printf("  %s\n", p)
		}
	}
	fmt.Printf("Target: %s\n", out.Root)
	section("created", out.Created)
	section("updated", out.Updated)
	section("deleted", out.Deleted)
	if len(out.Skipped) > 0 {
		fmt.Printf("skipped (%d):\n", len(out.Skipped))
		for _, p := range out.Skipped {
			fmt.Printf("  %s\n", p)
		}
	}
	for _, w := range out.Warnings {
		warnf("%s", w)
	}
	for _, v := range out.Invalid {
		warnf("ignored %s", v)
	}
	for _, e := range out.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
}

func init() {
	applyCmd.Flags().StringVar(&applyDir, "dir", "", "directory the change list applies to (default: cwd)")
	applyCmd.Flags().BoolVar(&applyClipboard, "clipboard", false, "read the change list from the clipboard")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "show what would change without writing")
	applyCmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "apply without asking")
	rootCmd.AddCommand(applyCmd)
}
