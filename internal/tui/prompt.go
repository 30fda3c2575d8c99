package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	promptHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// InputEditorResult holds the text entered for an input slot.
type InputEditorResult struct {
	Value string
	Abort bool
}

type inputEditorModel struct {
	title  string
	area   textarea.Model
	done   bool
	result InputEditorResult
}

func newInputEditorModel(title, initial string) inputEditorModel {
	ta := textarea.New()
	ta.Placeholder = "Type the text for this slot..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(72)
	ta.SetHeight(10)
	ta.SetValue(initial)
	ta.Focus()

	return inputEditorModel{title: title, area: ta}
}

func (m inputEditorModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m inputEditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 100 {
			width = 100
		}
		if width > 20 {
			m.area.SetWidth(width)
		}
		if msg.Height > 12 {
			m.area.SetHeight(msg.Height - 8)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result.Abort = true
			m.done = true
			return m, tea.Quit

		case "ctrl+s", "ctrl+d":
			m.result.Value = m.area.Value()
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

func (m inputEditorModel) View() string {
	var sb strings.Builder
	sb.WriteString(promptLabelStyle.Render(m.title) + "\n\n")
	sb.WriteString(m.area.View() + "\n")
	sb.WriteString(fmt.Sprintf("\n%s", promptHintStyle.Render(fmt.Sprintf("%d chars • ctrl+s: save • esc: cancel", len(m.area.Value())))))
	return sb.String()
}

// RunInputEditor edits the value of an input slot.
func RunInputEditor(title, initial string) (InputEditorResult, error) {
	p := tea.NewProgram(newInputEditorModel(title, initial), tea.WithOutput(output))

	finalModel, err := p.Run()
	if err != nil {
		return InputEditorResult{Abort: true}, err
	}

	return finalModel.(inputEditorModel).result, nil
}

// PathPromptResult holds a path typed by the user.
type PathPromptResult struct {
	Path  string
	Abort bool
}

type pathPromptModel struct {
	label    string
	input    textinput.Model
	validate func(string) error
	err      string
	done     bool
	result   PathPromptResult
}

func newPathPromptModel(label, initial string, validate func(string) error) pathPromptModel {
	ti := textinput.New()
	ti.Placeholder = "path"
	ti.CharLimit = 4096
	ti.Width = 60
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Focus()

	return pathPromptModel{label: label, input: ti, validate: validate}
}

func (m pathPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pathPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result.Abort = true
			m.done = true
			return m, tea.Quit

		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				m.err = "path is required"
				return m, nil
			}
			if m.validate != nil {
				if err := m.validate(path); err != nil {
					m.err = err.Error()
					return m, nil
				}
			}
			m.result.Path = path
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pathPromptModel) View() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", promptLabelStyle.Render(m.label), m.input.View()))
	if m.err != "" {
		sb.WriteString("\n" + promptErrorStyle.Render("Error: "+m.err) + "\n")
	}
	sb.WriteString("\n" + promptHintStyle.Render("enter: confirm • esc: cancel"))
	return sb.String()
}

// RunPathPrompt asks for a path, re-prompting until validate accepts it.
func RunPathPrompt(label, initial string, validate func(string) error) (PathPromptResult, error) {
	p := tea.NewProgram(newPathPromptModel(label, initial, validate), tea.WithOutput(output))

	finalModel, err := p.Run()
	if err != nil {
		return PathPromptResult{Abort: true}, err
	}

	return finalModel.(pathPromptModel).result, nil
}
