package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type tokenCount struct {
	Path   string `json:"path"`
	Chars  int    `json:"chars"`
	Tokens int    `json:"tokens"`
}

type tokensResult struct {
	Counter string       `json:"counter"`
	Files   []tokenCount `json:"files"`
	Total   int          `json:"total"`
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>...",
	Short: "Count tokens in files",
	Long: `Counts model tokens with the encoding for the configured token_model.
When no encoding is known the count is estimated from bytes_per_token.
Use - to read stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		counter := counterFor(cfg)

		result := tokensResult{Counter: counter.Name()}
		for _, path := range args {
			var data []byte
			if path == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			n := counter.Count(string(data))
			result.Files = append(result.Files, tokenCount{Path: path, Chars: len(data), Tokens: n})
			result.Total += n
		}

		if jsonOut {
			return printJSON(result)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tCHARS\tTOKENS")
		for _, f := range result.Files {
			fmt.Fprintf(w, "%s\t%d\t%d\n", f.Path, f.Chars, f.Tokens)
		}
		if len(result.Files) > 1 {
			fmt.Fprintf(w, "total\t\t%d\n", result.Total)
		}
		w.Flush()
		fmt.Printf("\n(%s)\n", result.Counter)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}
