package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tormodhaugland/pf/internal/prompt"
)

var (
	confirmLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	confirmHintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	confirmButtonStyle = lipgloss.NewStyle().Padding(0, 2)
	confirmActiveStyle = confirmButtonStyle.Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
)

var confirmKeys = struct {
	Yes    key.Binding
	No     key.Binding
	Switch key.Binding
	Accept key.Binding
	Cancel key.Binding
}{
	Yes:    key.NewBinding(key.WithKeys("y", "Y")),
	No:     key.NewBinding(key.WithKeys("n", "N")),
	Switch: key.NewBinding(key.WithKeys("left", "right", "tab", "h", "l")),
	Accept: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c")),
}

// ConfirmResult is the answer to a yes/no dialog. Aborted means the dialog
// was dismissed without an answer.
type ConfirmResult struct {
	Confirmed bool
	Aborted   bool
}

type confirmModel struct {
	message  string
	detail   string
	selected bool // true = Yes
	result   ConfirmResult
}

func newConfirmModel(message, detail string, defaultYes bool) confirmModel {
	return confirmModel{message: message, detail: detail, selected: defaultYes}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, confirmKeys.Cancel):
		m.result = ConfirmResult{Aborted: true}
	case key.Matches(km, confirmKeys.Yes):
		m.selected = true
		m.result = ConfirmResult{Confirmed: true}
	case key.Matches(km, confirmKeys.No):
		m.selected = false
		m.result = ConfirmResult{}
	case key.Matches(km, confirmKeys.Accept):
		m.result = ConfirmResult{Confirmed: m.selected}
	case key.Matches(km, confirmKeys.Switch):
		m.selected = !m.selected
		return m, nil
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m confirmModel) View() string {
	yes, no := confirmButtonStyle, confirmActiveStyle
	if m.selected {
		yes, no = confirmActiveStyle, confirmButtonStyle
	}

	var sb strings.Builder
	sb.WriteString(confirmLabelStyle.Render(m.message) + "\n")
	if m.detail != "" {
		sb.WriteString(confirmHintStyle.Render(m.detail) + "\n")
	}
	sb.WriteString("\n  " + lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Yes"), "  ", no.Render("No")) + "\n")
	sb.WriteString("\n" + confirmHintStyle.Render("←/→: select • enter: confirm • y/n: quick select • esc: cancel"))
	return sb.String()
}

// RunConfirm asks a yes/no question, defaulting to Yes.
func RunConfirm(message, detail string) (ConfirmResult, error) {
	return runConfirm(newConfirmModel(message, detail, true))
}

func runConfirm(m confirmModel) (ConfirmResult, error) {
	finalModel, err := tea.NewProgram(m, tea.WithOutput(output)).Run()
	if err != nil {
		return ConfirmResult{Aborted: true}, err
	}
	return finalModel.(confirmModel).result, nil
}

// largeFileQuestion builds the dialog shown for an oversized file. It
// defaults to No.
func largeFileQuestion(c prompt.Candidate) confirmModel {
	return newConfirmModel(
		fmt.Sprintf("%s is %s. Add it anyway?", c.Name, formatBytes(c.Size)),
		fmt.Sprintf("Files over %s can make the prompt very large.", formatBytes(prompt.LargeFileThreshold)),
		false,
	)
}

// ConfirmGate serves large-file confirmations from a queue, one dialog per
// request, until ctx is done. Cancelling a dialog counts as No.
func ConfirmGate(ctx context.Context) prompt.Gate {
	gate := prompt.NewQueueGate()
	go serveConfirmations(ctx, gate, func(c prompt.Candidate) bool {
		res, err := runConfirm(largeFileQuestion(c))
		return err == nil && res.Confirmed && !res.Aborted
	})
	return gate
}

func serveConfirmations(ctx context.Context, gate *prompt.QueueGate, ask func(prompt.Candidate) bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-gate.Requests():
			req.Resolve(ask(req.Candidate))
		}
	}
}
