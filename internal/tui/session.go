package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tormodhaugland/pf/internal/prompt"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Edit     key.Binding
	Copy     key.Binding
	Refresh  key.Binding
	Preview  key.Binding
	Clear    key.Binding
	Template key.Binding
	Open     key.Binding
	Root     key.Binding
	Remove   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	Edit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit slot")),
	Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Preview:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
	Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
	Template: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "templates")),
	Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
	Root:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "root dir")),
	Remove:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "remove template")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// screenAction is what the session screen asks the driver to do after it
// exits. Actions that open another program cannot run inside this one.
type screenAction int

const (
	actionQuit screenAction = iota
	actionEditSlot
	actionSelectTemplate
	actionOpenTemplate
	actionChangeRoot
)

type slotRow struct {
	id      string
	kind    prompt.SegmentKind
	context string // template text just before the slot
}

type copiedMsg struct {
	chars int
	err   error
}

type refreshedMsg struct {
	report prompt.RefreshReport
}

// sessionModel is the main screen: the loaded template's slots and what is
// bound to them.
type sessionModel struct {
	app     *app
	snap    prompt.Snapshot
	rows    []slotRow
	cursor  int
	tokens  int
	status  statusLine
	busy    bool
	preview bool
	view    viewport.Model
	width   int
	height  int

	action     screenAction
	actionSlot slotRow
}

func newSessionModel(a *app, cursor int, status statusLine) sessionModel {
	m := sessionModel{
		app:    a,
		cursor: cursor,
		status: status,
		width:  80,
		height: 24,
		view:   viewport.New(80, 20),
	}
	m.reload()
	return m
}

// reload re-reads the session state after a mutation.
func (m *sessionModel) reload() {
	m.snap = m.app.session.Snapshot()
	m.rows = slotRows(m.snap.Segments)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.tokens = m.app.counter.Count(prompt.Compose(m.snap.Segments, m.snap.Store))
}

func slotRows(segments []prompt.Segment) []slotRow {
	var rows []slotRow
	before := ""
	for _, seg := range segments {
		if !seg.IsSlot() {
			before = seg.Content
			continue
		}
		ctx := before
		if i := strings.LastIndex(strings.TrimRight(ctx, "\n"), "\n"); i >= 0 {
			ctx = ctx[i+1:]
		}
		rows = append(rows, slotRow{id: seg.ID, kind: seg.Kind, context: oneLine(ctx)})
		before = ""
	}
	return rows
}

func (m sessionModel) Init() tea.Cmd {
	return nil
}

// copyCmd composes and copies, or re-sends the last output after a failed
// copy.
func (m sessionModel) copyCmd(retry bool) tea.Cmd {
	s, w := m.app.session, m.app.clipboard
	return func() tea.Msg {
		if retry {
			out, _ := s.LastOutput()
			return copiedMsg{chars: len(out), err: s.Retry(w)}
		}
		out, err := s.Copy(w)
		return copiedMsg{chars: len(out), err: err}
	}
}

func (m sessionModel) refreshCmd() tea.Cmd {
	s, ctx := m.app.session, m.app.ctx
	return func() tea.Msg {
		return refreshedMsg{report: s.Refresh(ctx)}
	}
}

func (m sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = msg.Width - 4
		m.view.Height = msg.Height - 6
		if m.preview {
			m.view.SetContent(renderMarkdown(prompt.Compose(m.snap.Segments, m.snap.Store), m.view.Width))
		}
		return m, nil

	case copiedMsg:
		m.busy = false
		m.reload()
		if msg.err != nil {
			m.status = statusLine{kind: statusError, text: fmt.Sprintf("%v (press c to retry)", msg.err), retry: true}
		} else {
			m.status = statusLine{kind: statusSuccess, text: fmt.Sprintf("Copied %d characters, ~%d tokens", msg.chars, m.tokens)}
		}
		return m, nil

	case refreshedMsg:
		m.busy = false
		m.reload()
		m.status = refreshStatus(msg.report)
		return m, nil

	case tea.KeyMsg:
		if m.preview {
			switch {
			case key.Matches(msg, keys.Preview), msg.String() == "esc":
				m.preview = false
				return m, nil
			case key.Matches(msg, keys.Quit):
				m.action = actionQuit
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}
		if m.busy {
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Quit):
			m.action = actionQuit
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}

		case key.Matches(msg, keys.Edit):
			if len(m.rows) == 0 {
				return m, nil
			}
			row := m.rows[m.cursor]
			if m.app.session.SlotBusy(row.id) {
				m.status = statusLine{kind: statusWarn, text: row.id + " is busy"}
				return m, nil
			}
			m.action = actionEditSlot
			m.actionSlot = row
			return m, tea.Quit

		case key.Matches(msg, keys.Copy):
			if !m.snap.Loaded {
				m.status = statusLine{kind: statusWarn, text: "No template loaded"}
				return m, nil
			}
			m.busy = true
			_, hasLast := m.app.session.LastOutput()
			retry := hasLast && m.status.kind == statusError && m.status.retry
			if retry {
				m.status = statusLine{kind: statusInfo, text: "Retrying copy..."}
			}
			return m, m.copyCmd(retry)

		case key.Matches(msg, keys.Refresh):
			m.busy = true
			m.status = statusLine{kind: statusInfo, text: "Refreshing..."}
			return m, m.refreshCmd()

		case key.Matches(msg, keys.Preview):
			if !m.snap.Loaded {
				return m, nil
			}
			m.preview = true
			m.view.SetContent(renderMarkdown(prompt.Compose(m.snap.Segments, m.snap.Store), m.view.Width))
			m.view.GotoTop()

		case key.Matches(msg, keys.Clear):
			m.app.session.ClearAll()
			m.reload()
			m.status = statusLine{kind: statusInfo, text: "Cleared all selections"}

		case key.Matches(msg, keys.Remove):
			m.app.session.Remove()
			m.reload()
			m.status = statusLine{kind: statusInfo, text: "Template removed"}

		case key.Matches(msg, keys.Template):
			m.action = actionSelectTemplate
			return m, tea.Quit

		case key.Matches(msg, keys.Open):
			m.action = actionOpenTemplate
			return m, tea.Quit

		case key.Matches(msg, keys.Root):
			m.action = actionChangeRoot
			return m, tea.Quit
		}
	}

	return m, nil
}

func refreshStatus(r prompt.RefreshReport) statusLine {
	var parts []string
	kind := statusSuccess
	if r.RefreshedTemplate {
		parts = append(parts, "template reloaded")
	}
	if r.RefreshedAnyFile {
		parts = append(parts, "files reloaded")
	}
	if r.TemplateErr != nil {
		kind = statusError
		parts = append(parts, fmt.Sprintf("template: %v", r.TemplateErr))
	}
	if n := len(r.FileErrors); n > 0 {
		if kind != statusError {
			kind = statusWarn
		}
		parts = append(parts, fmt.Sprintf("%d files could not be read (kept previous contents)", n))
	}
	if len(parts) == 0 {
		return statusLine{kind: statusInfo, text: "Nothing to refresh"}
	}
	return statusLine{kind: kind, text: "Refresh: " + strings.Join(parts, "; ")}
}

func (m sessionModel) View() string {
	if m.preview {
		title := titleStyle.Render("Preview") + "  " + dimStyle.Render(fmt.Sprintf("~%d tokens", m.tokens))
		help := helpStyle.Render("↑/↓: scroll • p/esc: back • q: quit")
		return lipgloss.JoinVertical(lipgloss.Left, title, paneStyle.Render(m.view.View()), help)
	}

	var sb strings.Builder
	if !m.snap.Loaded {
		sb.WriteString(titleStyle.Render("pf") + "\n\n")
		sb.WriteString("No template loaded.\n\n")
		sb.WriteString(helpStyle.Render("t: pick a starter or library template • o: open a template file • q: quit"))
		if s := m.status.render(); s != "" {
			sb.WriteString("\n\n" + s)
		}
		return sb.String()
	}

	files, inputs := prompt.Counts(m.snap.Segments)
	sb.WriteString(titleStyle.Render(m.snap.Name))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d file slots • %d input slots • ~%d tokens", files, inputs, m.tokens)))
	if m.snap.Refreshable {
		sb.WriteString(dimStyle.Render(" • live"))
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("root: "+m.app.root) + "\n\n")

	if len(m.rows) == 0 {
		sb.WriteString(itemStyle.Render("This template has no slots; copy sends it unchanged.") + "\n")
	}
	for i, row := range m.rows {
		line := m.renderRow(row)
		if i == m.cursor {
			line = selectedItemStyle.Render("> " + line)
		} else {
			line = itemStyle.Render("  " + line)
		}
		// Rows carry styled fragments, so clip by display width.
		sb.WriteString(ansi.Truncate(line, m.width, "…") + "\n")
	}

	sb.WriteString("\n")
	if s := m.status.render(); s != "" {
		sb.WriteString(s + "\n")
	}
	sb.WriteString(helpStyle.Render("j/k: move • enter: edit • c: copy • r: refresh • p: preview • x: clear • t/o: template • d: root • q: quit"))
	return sb.String()
}

func (m sessionModel) renderRow(row slotRow) string {
	label := row.id
	width := m.width - 8
	ctx := ""
	if row.context != "" {
		ctx = dimStyle.Render(truncate(row.context, 30)) + " "
	}

	switch row.kind {
	case prompt.KindFileSlot:
		recs := m.snap.Store.Files(row.id)
		if len(recs) == 0 {
			return label + " " + ctx + dimStyle.Render("(no files)")
		}
		names := make([]string, 0, len(recs))
		for _, r := range recs {
			names = append(names, r.Path)
		}
		summary := fmt.Sprintf("%d files, %s: %s", len(recs), formatBytes(m.snap.Store.TotalSize(row.id)), strings.Join(names, ", "))
		return label + " " + ctx + truncate(summary, width-len(label)-32)

	default:
		value := m.snap.Store.Input(row.id)
		if value == "" {
			return label + " " + ctx + dimStyle.Render("(empty)")
		}
		return label + " " + ctx + truncate(fmt.Sprintf("%q", oneLine(value)), width-len(label)-32)
	}
}

// runSessionScreen shows the session screen until the user picks an action.
func runSessionScreen(ctx context.Context, a *app, cursor int, status statusLine) (sessionModel, error) {
	p := tea.NewProgram(newSessionModel(a, cursor, status), tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(output))
	finalModel, err := p.Run()
	if err != nil {
		return sessionModel{action: actionQuit}, err
	}
	return finalModel.(sessionModel), nil
}
