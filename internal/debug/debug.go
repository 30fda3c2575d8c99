// Package debug prints timestamped diagnostic lines to stderr when enabled.
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	mu      sync.RWMutex
	enabled bool
	noColor bool
	out     io.Writer = os.Stderr
)

var (
	tagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

// SetDebug enables or disables debug output.
func SetDebug(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
}

// IsEnabled reports whether debug output is on.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetNoColor disables styling of debug lines.
func SetNoColor(disable bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disable
}

// SetOutput redirects debug lines. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
}

func emit(body string) {
	mu.RLock()
	w, plain := out, noColor
	mu.RUnlock()

	ts := time.Now().Format("15:04:05.000")
	if plain {
		fmt.Fprintf(w, "[DEBUG] %s %s\n", ts, body)
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", tagStyle.Render("[DEBUG]"), timeStyle.Render(ts), body)
}

// Debug prints a formatted debug message.
func Debug(format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	emit(fmt.Sprintf(format, args...))
}

// DebugSection prints a section header.
func DebugSection(section string) {
	if !IsEnabled() {
		return
	}
	emit("=== " + section + " ===")
}

// DebugValue prints a key = value line.
func DebugValue(key string, value interface{}) {
	if !IsEnabled() {
		return
	}
	mu.RLock()
	plain := noColor
	mu.RUnlock()
	if !plain {
		key = keyStyle.Render(key)
	}
	emit(fmt.Sprintf("%s = %v", key, value))
}

// DebugJSON prints v as indented JSON.
func DebugJSON(key string, v interface{}) {
	if !IsEnabled() {
		return
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Debug("failed to marshal %s: %v", key, err)
		return
	}
	emit(key + ":\n" + string(b))
}
