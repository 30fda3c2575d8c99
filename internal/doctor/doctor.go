package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/pf/internal/config"
	"github.com/tormodhaugland/pf/internal/prompt"
	"github.com/tormodhaugland/pf/internal/template"
	"github.com/tormodhaugland/pf/internal/tokens"
)

type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "ok"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Check struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

// Worst returns the highest severity in the report.
func (r *Report) Worst() Severity {
	worst := SeverityOK
	for _, c := range r.Checks {
		if c.Severity > worst {
			worst = c.Severity
		}
	}
	return worst
}

func (r *Report) add(name string, sev Severity, format string, args ...interface{}) {
	r.Checks = append(r.Checks, Check{Name: name, Severity: sev, Detail: fmt.Sprintf(format, args...)})
}

// ClipboardProbe reports whether a clipboard backend exists.
type ClipboardProbe interface {
	Available() bool
}

type Options struct {
	Config    *config.Config
	Clipboard ClipboardProbe
	Counter   tokens.Counter
}

// Run checks the environment pf depends on: the config file, the template
// library and each template in it, the clipboard and the tokenizer.
func Run(ctx context.Context, opts Options) Report {
	var r Report
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if p := cfg.Path(); p != "" {
		r.add("config", SeverityOK, "loaded %s", p)
	} else {
		r.add("config", SeverityOK, "no config file, using defaults")
	}

	checkRoot(&r, cfg)
	checkLibrary(ctx, &r, cfg.LibraryDir)

	switch {
	case opts.Clipboard == nil:
	case opts.Clipboard.Available():
		r.add("clipboard", SeverityOK, "system clipboard available")
	default:
		r.add("clipboard", SeverityWarn, "no clipboard utility found; compose to stdout or --output instead")
	}

	if opts.Counter != nil {
		name := opts.Counter.Name()
		if strings.HasPrefix(name, "tiktoken:") {
			r.add("tokens", SeverityOK, "counting with %s", name)
		} else {
			r.add("tokens", SeverityWarn, "no encoding for model %q; counts are estimates", cfg.TokenModel)
		}
	}

	return r
}

func checkRoot(r *Report, cfg *config.Config) {
	if cfg.DefaultRoot == "" {
		return
	}
	info, err := os.Stat(cfg.DefaultRoot)
	switch {
	case err != nil:
		r.add("root", SeverityError, "default_root: %v", err)
	case !info.IsDir():
		r.add("root", SeverityError, "default_root %s is not a directory", cfg.DefaultRoot)
	default:
		r.add("root", SeverityOK, "default_root %s", cfg.DefaultRoot)
	}
}

// checkLibrary loads each library file itself rather than through
// template.ListLibrary, which skips broken files silently.
func checkLibrary(ctx context.Context, r *Report, dir string) {
	if dir == "" {
		r.add("library", SeverityWarn, "no library_dir configured; only starters are available")
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.add("library", SeverityWarn, "%s does not exist; only starters are available", dir)
			return
		}
		r.add("library", SeverityError, "%v", err)
		return
	}

	count := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			r.add("library", SeverityError, "%v", ctx.Err())
			return
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), template.LibraryExtension) {
			continue
		}
		count++
		checkTemplate(r, filepath.Join(dir, name))
	}
	r.add("library", SeverityOK, "%s: %d templates", dir, count)
}

func checkTemplate(r *Report, path string) {
	check := "template " + filepath.Base(path)
	tmpl, err := template.LoadFile(path)
	if err != nil {
		r.add(check, SeverityError, "%v", err)
		return
	}

	report := prompt.Diagnose(tmpl.Body)
	if report.FileSlots == 0 && report.InputSlots == 0 {
		r.add(check, SeverityWarn, "no %s or %s tags", prompt.FileTag, prompt.InputTag)
		return
	}
	if in := report.TagsInCode(); len(in) > 0 {
		first := in[0]
		r.add(check, SeverityWarn, "%d tags inside code blocks (first at line %d); they are still replaced", len(in), first.Line)
		return
	}
	r.add(check, SeverityOK, "%d file slots, %d input slots", report.FileSlots, report.InputSlots)
}
