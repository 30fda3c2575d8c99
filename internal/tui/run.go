package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/pf/internal/clipboard"
	"github.com/tormodhaugland/pf/internal/debug"
	"github.com/tormodhaugland/pf/internal/fs"
	"github.com/tormodhaugland/pf/internal/prompt"
	"github.com/tormodhaugland/pf/internal/template"
	"github.com/tormodhaugland/pf/internal/tokens"
)

// Options configures Run.
type Options struct {
	Session    *prompt.Session
	Root       string
	Excludes   *fs.ExcludeList
	Clipboard  prompt.TextWriter
	Counter    prompt.TokenCounter
	LibraryDir string
	// Gate decides on oversized files; nil asks with a dialog.
	Gate prompt.Gate
}

// app is the state shared by the screens of one Run.
type app struct {
	ctx        context.Context
	session    *prompt.Session
	root       string
	excludes   *fs.ExcludeList
	clipboard  prompt.TextWriter
	counter    prompt.TokenCounter
	libraryDir string
	gate       prompt.Gate
}

// Run shows the session screen and the dialogs it opens until the user quits.
func Run(ctx context.Context, opts Options) error {
	a := &app{
		ctx:        ctx,
		session:    opts.Session,
		root:       opts.Root,
		excludes:   opts.Excludes,
		clipboard:  opts.Clipboard,
		counter:    opts.Counter,
		libraryDir: opts.LibraryDir,
		gate:       opts.Gate,
	}
	if a.session == nil {
		a.session = prompt.NewSession()
	}
	if a.gate == nil {
		a.gate = ConfirmGate(ctx)
	}
	if a.counter == nil {
		a.counter = tokens.Estimate{}
	}
	if a.clipboard == nil {
		a.clipboard = clipboard.System{}
	}
	if a.root == "" {
		a.root, _ = os.Getwd()
	}

	cursor := 0
	var status statusLine
	if a.session.Loaded() {
		status = templateStatus(a.session.Snapshot())
	}

	for {
		m, err := runSessionScreen(ctx, a, cursor, status)
		if err != nil {
			return err
		}
		cursor = m.cursor
		status = statusLine{}

		switch m.action {
		case actionQuit:
			return nil
		case actionEditSlot:
			status = a.editSlot(m.actionSlot)
		case actionSelectTemplate:
			status = a.selectTemplate()
			cursor = 0
		case actionOpenTemplate:
			status = a.openTemplate()
			cursor = 0
		case actionChangeRoot:
			status = a.changeRoot()
		}
	}
}

func errorStatus(err error) statusLine {
	return statusLine{kind: statusError, text: err.Error()}
}

// templateStatus reports a freshly loaded template, warning about tags that
// sit inside code blocks.
func templateStatus(snap prompt.Snapshot) statusLine {
	report := prompt.Diagnose(prompt.Join(snap.Segments))
	if n := len(report.TagsInCode()); n > 0 {
		return statusLine{kind: statusWarn, text: fmt.Sprintf("Loaded %s; %d tags inside code blocks will still be replaced", snap.Name, n)}
	}
	return statusLine{kind: statusSuccess, text: fmt.Sprintf("Loaded %s (%d file slots, %d input slots)", snap.Name, report.FileSlots, report.InputSlots)}
}

func (a *app) editSlot(row slotRow) statusLine {
	var status statusLine
	err := a.session.WithSlot(row.id, func() error {
		if row.kind == prompt.KindInputSlot {
			status = a.editInput(row)
		} else {
			status = a.editFiles(row)
		}
		return nil
	})
	var busy *prompt.SlotBusyError
	if errors.As(err, &busy) {
		return statusLine{kind: statusWarn, text: row.id + " is busy"}
	}
	return status
}

func (a *app) editInput(row slotRow) statusLine {
	current := a.session.Snapshot().Store.Input(row.id)
	title := "Edit " + row.id
	if row.context != "" {
		title += ": " + truncate(row.context, 50)
	}

	res, err := RunInputEditor(title, current)
	if err != nil {
		return errorStatus(err)
	}
	if res.Abort {
		return statusLine{}
	}
	a.session.SetInputSlot(row.id, res.Value)
	return statusLine{kind: statusSuccess, text: fmt.Sprintf("Updated %s", row.id)}
}

func (a *app) editFiles(row slotRow) statusLine {
	dir, err := fs.OpenDir(a.root)
	if err != nil {
		return errorStatus(err)
	}

	bound := make([]string, 0)
	for _, r := range a.session.Snapshot().Store.Files(row.id) {
		bound = append(bound, r.Path)
	}

	res, err := RunFilePicker(a.ctx, row.id, dir, a.excludes, bound)
	if err != nil {
		return errorStatus(err)
	}
	if res.Aborted {
		return statusLine{}
	}

	// Oversized files are confirmed one dialog at a time before reading.
	loaded := prompt.LoadFiles(a.ctx, res.Added, a.gate)

	a.session.Update(func(store *prompt.Store) {
		for _, p := range res.Removed {
			store.RemovePath(row.id, p)
		}
		if len(loaded.Records) > 0 {
			store.SetFileSlot(row.id, append(store.Files(row.id), loaded.Records...))
		}
	})

	return selectionStatus(row.id, len(loaded.Records), len(res.Removed), loaded)
}

func selectionStatus(slot string, added, removed int, loaded prompt.LoadResult) statusLine {
	parts := []string{fmt.Sprintf("%s: %d added, %d removed", slot, added, removed)}
	kind := statusSuccess
	if n := len(loaded.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d large files skipped", n))
	}
	if n := len(loaded.Errors); n > 0 {
		kind = statusWarn
		first := loaded.Errors[0].Error()
		parts = append(parts, fmt.Sprintf("%d failed (%s)", n, first))
		debug.DebugValue("selection errors", loaded.Errors)
	}
	return statusLine{kind: kind, text: strings.Join(parts, "; ")}
}

func (a *app) selectTemplate() statusLine {
	templates, err := template.List(a.libraryDir)
	if err != nil {
		return errorStatus(err)
	}
	res, err := RunTemplateSelect(templates)
	if err != nil {
		return errorStatus(err)
	}
	if res.Abort || res.Template == nil {
		return statusLine{}
	}

	t := res.Template
	a.session.Replace(t.Name, t.Body, t.Source())
	return templateStatus(a.session.Snapshot())
}

func (a *app) openTemplate() statusLine {
	res, err := RunPathPrompt("Template file:", "", func(path string) error {
		if err := prompt.ValidateTemplateName(path); err != nil {
			return err
		}
		info, err := os.Stat(expandPath(path))
		if err != nil {
			return err
		}
		if info.IsDir() {
			return errors.New("is a directory")
		}
		return nil
	})
	if err != nil {
		return errorStatus(err)
	}
	if res.Abort {
		return statusLine{}
	}

	h, err := template.OpenSource(expandPath(res.Path))
	if err != nil {
		return errorStatus(err)
	}
	if err := a.session.LoadTemplate(a.ctx, h); err != nil {
		return errorStatus(err)
	}
	return templateStatus(a.session.Snapshot())
}

func (a *app) changeRoot() statusLine {
	res, err := RunPathPrompt("Root directory:", a.root, func(path string) error {
		_, err := fs.OpenDir(expandPath(path))
		return err
	})
	if err != nil {
		return errorStatus(err)
	}
	if res.Abort {
		return statusLine{}
	}

	abs, err := filepath.Abs(expandPath(res.Path))
	if err != nil {
		return errorStatus(err)
	}
	a.root = abs
	return statusLine{kind: statusInfo, text: "Root: " + abs}
}

func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
