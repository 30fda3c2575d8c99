package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tormodhaugland/pf/internal/prompt"
	"github.com/tormodhaugland/pf/internal/template"
)

// TemplateSelectResult holds the chosen template.
type TemplateSelectResult struct {
	Template *template.Template
	Abort    bool
}

type templateItem struct {
	tmpl   template.Template
	files  int
	inputs int
}

func (i templateItem) Title() string { return i.tmpl.Name }

func (i templateItem) Description() string {
	parts := []string{string(i.tmpl.Origin), fmt.Sprintf("%d files, %d inputs", i.files, i.inputs)}
	if i.tmpl.Description != "" {
		parts = append([]string{i.tmpl.Description}, parts...)
	}
	return strings.Join(parts, " • ")
}

// FilterValue lets the list filter match on tags as well as the name.
func (i templateItem) FilterValue() string {
	return strings.Join(append([]string{i.tmpl.Name, i.tmpl.Description}, i.tmpl.Tags...), " ")
}

type templateSelectModel struct {
	list    list.Model
	preview bool
	width   int
	height  int
	result  TemplateSelectResult
}

func newTemplateSelectModel(templates []template.Template) templateSelectModel {
	items := make([]list.Item, len(templates))
	for i, t := range templates {
		files, inputs := prompt.Counts(prompt.Scan(t.Body))
		items[i] = templateItem{tmpl: t, files: files, inputs: inputs}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("212"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("241"))

	l := list.New(items, delegate, 60, 15)
	l.Title = "Select Template"
	l.Styles.Title = headerStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	return templateSelectModel{list: l, width: 80, height: 24}
}

func (m templateSelectModel) Init() tea.Cmd {
	return nil
}

func (m *templateSelectModel) resize() {
	w := m.width - 4
	if m.preview {
		w = w / 2
	}
	m.list.SetSize(w, m.height-4)
}

func (m templateSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result = TemplateSelectResult{Abort: true}
			return m, tea.Quit
		case "tab":
			m.preview = !m.preview
			m.resize()
			return m, nil
		case "enter":
			if item, ok := m.list.SelectedItem().(templateItem); ok {
				tmpl := item.tmpl
				m.result = TemplateSelectResult{Template: &tmpl}
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m templateSelectModel) View() string {
	body := m.list.View()
	if m.preview {
		if item, ok := m.list.SelectedItem().(templateItem); ok {
			w := (m.width - 4) / 2
			text := renderMarkdown(item.tmpl.Body, w-4)
			if lines := strings.Split(text, "\n"); len(lines) > m.height-6 && m.height > 6 {
				text = strings.Join(lines[:m.height-6], "\n")
			}
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, paneStyle.Width(w).Render(text))
		}
	}
	return body + "\n" + promptHintStyle.Render("enter: select • /: search • tab: preview • esc: cancel")
}

// RunTemplateSelect lets the user pick a starter or library template.
func RunTemplateSelect(templates []template.Template) (TemplateSelectResult, error) {
	if len(templates) == 0 {
		return TemplateSelectResult{Abort: true}, fmt.Errorf("no templates available")
	}

	p := tea.NewProgram(newTemplateSelectModel(templates), tea.WithAltScreen(), tea.WithOutput(output))
	finalModel, err := p.Run()
	if err != nil {
		return TemplateSelectResult{Abort: true}, err
	}
	return finalModel.(templateSelectModel).result, nil
}
