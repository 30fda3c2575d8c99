package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/pf/internal/clipboard"
	"github.com/tormodhaugland/pf/internal/fs"
	"github.com/tormodhaugland/pf/internal/prompt"
	"github.com/tormodhaugland/pf/internal/tui"
)

var (
	composeRoot      string
	composeFiles     []string
	composeDirs      []string
	composeInputs    []string
	composeYes       bool
	composeSkipLarge bool
	composeCopy      bool
	composeOutput    string
)

type composeResult struct {
	SessionID string         `json:"session_id"`
	Template  string         `json:"template"`
	Tokens    int            `json:"tokens"`
	Chars     int            `json:"chars"`
	Copied    bool           `json:"copied"`
	Output    string         `json:"output,omitempty"`
	File      string         `json:"file,omitempty"`
	Skipped   []string       `json:"skipped,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
	Slots     map[string]int `json:"slots"`
}

var composeCmd = &cobra.Command{
	Use:   "compose <template>",
	Short: "Fill a template from the command line",
	Long: `Binds files and text to a template's slots and prints the composed prompt.

Slots are numbered from zero in template order: file-0, file-1, ... and
input-0, input-1, ... A bare number means the slot of the flag's kind, so
--file 0=main.go binds file-0. pf scan lists a template's slots. Paths are relative
to --root. --input takes literal text, or @FILE to read the text from a file.

Files over 10 MiB need confirmation: --yes accepts them, --skip-large skips
them, and otherwise a dialog asks when a terminal is attached.

Examples:
  pf compose code-review --file 0=main.go --input 0="focus on errors"
  pf compose ./prompt.md --dir file-1=internal/prompt --copy -o prompt.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if composeYes && composeSkipLarge {
			return fmt.Errorf("--yes and --skip-large are mutually exclusive")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		session := prompt.NewSession()
		if err := loadTemplate(ctx, session, cfg, args[0]); err != nil {
			return err
		}
		snap := session.Snapshot()

		root := composeRoot
		if root == "" {
			root = cfg.Root()
		}
		root, err = filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolving root: %w", err)
		}

		b := &binder{
			ctx:      ctx,
			root:     root,
			excludes: excludesFor(cfg),
			gate:     composeGate(ctx),
			files:    prompt.SlotIDs(snap.Segments, prompt.KindFileSlot),
			inputs:   prompt.SlotIDs(snap.Segments, prompt.KindInputSlot),
			store:    prompt.NewStore(),
		}
		if err := b.bindFiles(composeFiles); err != nil {
			return err
		}
		if err := b.bindDirs(composeDirs); err != nil {
			return err
		}
		if err := b.bindInputs(composeInputs); err != nil {
			return err
		}

		result := composeResult{SessionID: snap.ID, Template: snap.Name, Slots: map[string]int{}}
		session.Update(func(store *prompt.Store) {
			for _, id := range b.files {
				if recs := b.store.Files(id); len(recs) > 0 {
					store.SetFileSlot(id, recs)
					result.Slots[id] = len(recs)
				}
			}
			for _, id := range b.inputs {
				if b.store.HasInput(id) {
					store.SetInputSlot(id, b.store.Input(id))
					result.Slots[id] = 1
				}
			}
		})
		result.Skipped = b.skipped
		result.Errors = b.errors

		out, copied, err := deliver(session, clipboard.System{}, composeCopy, composeOutput, os.Stdout)
		if err != nil {
			return err
		}
		result.Copied = copied
		result.File = composeOutput
		result.Chars = len(out)
		result.Tokens = counterFor(cfg).Count(out)

		if jsonOut {
			if !composeCopy && composeOutput == "" {
				result.Output = out
			}
			return printJSON(result)
		}

		for _, s := range b.skipped {
			warnf("skipped large file %s", s)
		}
		for _, e := range b.errors {
			warnf("%s", e)
		}
		if !composeCopy && composeOutput == "" {
			fmt.Print(out)
			return nil
		}
		dest := composeOutput
		if composeCopy {
			dest = "clipboard"
			if composeOutput != "" {
				dest += " and " + composeOutput
			}
		}
		fmt.Fprintf(os.Stderr, "Wrote %d characters (~%d tokens) to %s\n", result.Chars, result.Tokens, dest)
		return nil
	},
}

// composeGate picks how oversized files are handled. Dialogs draw on stderr so
// stdout stays clean for the composed output.
func composeGate(ctx context.Context) prompt.Gate {
	switch {
	case composeYes:
		return prompt.AcceptLarge
	case composeSkipLarge:
		return prompt.RejectLarge
	case interactive():
		tui.UseStderr()
		return tui.ConfirmGate(ctx)
	default:
		return prompt.GateFunc(func(ctx context.Context, c prompt.Candidate) (bool, error) {
			warnf("%s is over the size limit; pass --yes to include it", c.Name)
			return false, nil
		})
	}
}

// binder resolves compose flags into a store.
type binder struct {
	ctx      context.Context
	root     string
	excludes *fs.ExcludeList
	gate     prompt.Gate
	files    []string
	inputs   []string
	store    *prompt.Store
	skipped  []string
	errors   []string
}

// deliver composes the session and writes the result to path, then to w when
// copying. A clipboard failure leaves the text in path, or on stdout when no
// path was given.
func deliver(session *prompt.Session, w prompt.TextWriter, copyOut bool, path string, stdout io.Writer) (string, bool, error) {
	out := session.Compose()
	if path != "" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return out, false, fmt.Errorf("writing output: %w", err)
		}
	}
	if !copyOut {
		return out, false, nil
	}
	if _, err := session.Copy(w); err != nil {
		if path == "" {
			fmt.Fprint(stdout, out)
		} else {
			warnf("output kept in %s", path)
		}
		return out, false, err
	}
	return out, true, nil
}

// splitAssignment parses SLOT=VALUE, expanding a bare slot number N to
// prefix-N and checking the slot exists. Slot numbers start at zero.
func splitAssignment(flag, arg, prefix string, known []string) (string, string, error) {
	slot, value, ok := strings.Cut(arg, "=")
	if !ok || slot == "" {
		return "", "", fmt.Errorf("--%s %q: expected SLOT=VALUE", flag, arg)
	}
	if !strings.HasPrefix(slot, prefix+"-") {
		slot = prefix + "-" + slot
	}
	for _, id := range known {
		if id == slot {
			return slot, value, nil
		}
	}
	return "", "", fmt.Errorf("--%s %q: template has no slot %s (has %s)", flag, arg, slot, describeSlots(known))
}

func describeSlots(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

// relPath returns p as an absolute path and as the path shown in file
// headers. Paths outside the root are shown absolute.
func (b *binder) relPath(p string) (abs, rel string) {
	abs = p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(b.root, p)
	}
	rel, err := filepath.Rel(b.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = abs
	}
	return abs, filepath.ToSlash(rel)
}

func (b *binder) bindFiles(args []string) error {
	picks := make(map[string][]prompt.Pick)
	var order []string
	for _, arg := range args {
		slot, p, err := splitAssignment("file", arg, "file", b.files)
		if err != nil {
			return err
		}
		abs, rel := b.relPath(p)
		h, err := fs.OpenFile(abs)
		if err != nil {
			return err
		}
		if _, seen := picks[slot]; !seen {
			order = append(order, slot)
		}
		picks[slot] = append(picks[slot], prompt.Pick{Handle: h, Path: rel})
	}

	for _, slot := range order {
		res := prompt.LoadFiles(b.ctx, picks[slot], b.gate)
		for _, rec := range res.Records {
			if !b.store.HasPath(slot, rec.Path) {
				b.store.AddFile(slot, rec)
			}
		}
		b.note(slot, res.Skipped, res.Errors)
	}
	return nil
}

func (b *binder) bindDirs(args []string) error {
	for _, arg := range args {
		slot, p, err := splitAssignment("dir", arg, "file", b.files)
		if err != nil {
			return err
		}
		abs, rel := b.relPath(p)
		dir, err := fs.OpenDir(abs)
		if err != nil {
			return err
		}
		if rel == "." {
			rel = ""
		}
		res := prompt.AddDirectory(b.ctx, b.store, slot, dir, rel, b.excludes, b.gate)
		b.note(slot, res.Skipped, res.Errors)
	}
	return nil
}

func (b *binder) bindInputs(args []string) error {
	for _, arg := range args {
		slot, value, err := splitAssignment("input", arg, "input", b.inputs)
		if err != nil {
			return err
		}
		if strings.HasPrefix(value, "@") {
			data, err := os.ReadFile(value[1:])
			if err != nil {
				return fmt.Errorf("--input %s: %w", slot, err)
			}
			value = string(data)
		}
		b.store.SetInputSlot(slot, value)
	}
	return nil
}

func (b *binder) note(slot string, skipped []string, errs []fs.ItemError) {
	for _, s := range skipped {
		b.skipped = append(b.skipped, slot+": "+s)
	}
	for _, e := range errs {
		b.errors = append(b.errors, slot+": "+e.Error())
	}
}

func init() {
	composeCmd.Flags().StringVar(&composeRoot, "root", "", "directory paths are relative to (default: config default_root or cwd)")
	composeCmd.Flags().StringArrayVar(&composeFiles, "file", nil, "bind a file to a slot (SLOT=PATH, repeatable)")
	composeCmd.Flags().StringArrayVar(&composeDirs, "dir", nil, "bind every file under a directory to a slot (SLOT=DIR, repeatable)")
	composeCmd.Flags().StringArrayVar(&composeInputs, "input", nil, "set an input slot (SLOT=TEXT or SLOT=@FILE, repeatable)")
	composeCmd.Flags().BoolVarP(&composeYes, "yes", "y", false, "include files over the size limit without asking")
	composeCmd.Flags().BoolVar(&composeSkipLarge, "skip-large", false, "skip files over the size limit without asking")
	composeCmd.Flags().BoolVar(&composeCopy, "copy", false, "copy the result to the clipboard instead of printing it")
	composeCmd.Flags().StringVarP(&composeOutput, "output", "o", "", "write the result to a file")
	rootCmd.AddCommand(composeCmd)
}
