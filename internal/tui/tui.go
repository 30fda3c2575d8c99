// Package tui is the interactive front end: a session screen plus the
// pickers, editors and dialogs it launches.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// output is where every program draws.
var output io.Writer = os.Stdout

// UseStderr draws all programs on stderr so stdout stays clean for piped
// output. Colors are detected from stderr too.
func UseStderr() {
	output = os.Stderr
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))
}

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("212"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	paneStyle         = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(0, 1)

	statusInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	statusSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	statusWarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarn
	statusError
)

type statusLine struct {
	kind  statusKind
	text  string
	retry bool // a failed copy that c re-sends
}

func (s statusLine) render() string {
	if s.text == "" {
		return ""
	}
	switch s.kind {
	case statusSuccess:
		return statusSuccessStyle.Render(s.text)
	case statusWarn:
		return statusWarnStyle.Render(s.text)
	case statusError:
		return statusErrorStyle.Render(s.text)
	default:
		return statusInfoStyle.Render(s.text)
	}
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// truncate cuts s to at most width terminal columns.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// oneLine collapses whitespace so a snippet fits on a single row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// renderMarkdown renders text for the preview pane, falling back to the raw
// text when rendering fails.
func renderMarkdown(text string, width int) string {
	if text == "" {
		return ""
	}
	if width < 20 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
