package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pf/internal/prompt"
	"github.com/tormodhaugland/pf/internal/template"
)

type templateInfo struct {
	*template.Template
	FileSlots  int `json:"file_slots"`
	InputSlots int `json:"input_slots"`
}

func infoFor(t *template.Template) templateInfo {
	files, inputs := prompt.Counts(prompt.Scan(t.Body))
	return templateInfo{Template: t, FileSlots: files, InputSlots: inputs}
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Browse prompt templates",
	Long:  `List and show the built-in starters and the templates in the library directory.`,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		templates, err := template.List(cfg.LibraryDir)
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}

		if jsonOut {
			infos := make([]templateInfo, len(templates))
			for i := range templates {
				infos[i] = infoFor(&templates[i])
			}
			return printJSON(infos)
		}

		if len(templates) == 0 {
			fmt.Println("No templates found")
			fmt.Printf("\nLibrary directory: %s\n", cfg.LibraryDir)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tORIGIN\tDESCRIPTION\tFILES\tINPUTS")
		for i := range templates {
			info := infoFor(&templates[i])
			desc := info.Description
			if len(desc) > 50 {
				desc = desc[:47] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				info.Name, info.Origin, desc, info.FileSlots, info.InputSlots)
		}
		w.Flush()

		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a template",
	Long:  `Prints a template's metadata and body. The name may be a prefix or a fuzzy match.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		templates, err := template.List(cfg.LibraryDir)
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}
		tmpl, ambiguous, err := template.Find(templates, args[0])
		if err != nil {
			return err
		}
		if ambiguous {
			warnf("%q matches several templates, showing %s", args[0], tmpl.Name)
		}

		info := infoFor(tmpl)
		if jsonOut {
			return printJSON(struct {
				templateInfo
				Body string `json:"body"`
			}{info, tmpl.Body})
		}

		fmt.Printf("Template: %s\n", tmpl.Name)
		if tmpl.Description != "" {
			fmt.Printf("Description: %s\n", tmpl.Description)
		}
		fmt.Printf("Origin: %s\n", tmpl.Origin)
		if tmpl.Path != "" {
			fmt.Printf("Path: %s\n", tmpl.Path)
		}
		if len(tmpl.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(tmpl.Tags, ", "))
		}
		fmt.Printf("Slots: %d file, %d input\n\n", info.FileSlots, info.InputSlots)
		fmt.Print(tmpl.Body)
		if !strings.HasSuffix(tmpl.Body, "\n") {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	rootCmd.AddCommand(templateCmd)
}
