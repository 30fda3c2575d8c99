package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pf/internal/prompt"
)

var scanCheck bool

type scanResult struct {
	Segments    []prompt.Segment         `json:"segments"`
	FileSlots   int                      `json:"file_slots"`
	InputSlots  int                      `json:"input_slots"`
	Diagnostics *prompt.DiagnosticReport `json:"diagnostics,omitempty"`
}

var scanCmd = &cobra.Command{
	Use:   "scan <template>",
	Short: "Show the segments of a template",
	Long: `Splits a template into text and slot segments and prints them in order.

With --check, also reports where each tag sits and fails if any tag is inside
a fenced or indented code block. Those tags are still replaced, which is
rarely what an example snippet wants.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		text, err := readTemplateText(cmd.Context(), cfg, args[0])
		if err != nil {
			return err
		}

		segs := prompt.Scan(text)
		files, inputs := prompt.Counts(segs)
		result := scanResult{Segments: segs, FileSlots: files, InputSlots: inputs}
		if scanCheck {
			result.Diagnostics = prompt.Diagnose(text)
		}

		if jsonOut {
			if err := printJSON(result); err != nil {
				return err
			}
		} else {
			printSegments(result)
		}

		if result.Diagnostics != nil && result.Diagnostics.HasTagsInCode() {
			return fmt.Errorf("%d tags inside code blocks", len(result.Diagnostics.TagsInCode()))
		}
		return nil
	},
}

func printSegments(r scanResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tID\tCONTENT")
	for i, seg := range r.Segments {
		content := ""
		if seg.Kind == prompt.KindText {
			content = fmt.Sprintf("%q", seg.Content)
			if len(content) > 60 {
				content = content[:57] + "..."
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, seg.Kind, seg.ID, content)
	}
	w.Flush()
	fmt.Printf("\n%d file slots, %d input slots\n", r.FileSlots, r.InputSlots)

	if r.Diagnostics == nil || len(r.Diagnostics.Tags) == 0 {
		return
	}
	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LINE:COL\tSLOT\tIN CODE\tCONTEXT")
	for _, tag := range r.Diagnostics.Tags {
		inCode := ""
		if tag.InCode {
			inCode = "yes"
		}
		fmt.Fprintf(w, "%d:%d\t%s\t%s\t%s\n", tag.Line, tag.Column, tag.SlotID, inCode, tag.Context)
	}
	w.Flush()
}

func init() {
	scanCmd.Flags().BoolVar(&scanCheck, "check", false, "report tag positions and fail on tags inside code blocks")
	rootCmd.AddCommand(scanCmd)
}
