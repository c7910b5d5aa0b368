package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	cyan    = lipgloss.Color("#00FFFF")
	yellow  = lipgloss.Color("#FFFF00")
	red     = lipgloss.Color("#FF5555")
	green   = lipgloss.Color("#39FF14")
	magenta = lipgloss.Color("#FF00FF")

	labelStyle     = lipgloss.NewStyle().Foreground(cyan).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(yellow)
	errorStyle     = lipgloss.NewStyle().Foreground(red).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(green)
	warningStyle   = lipgloss.NewStyle().Foreground(yellow)
	highlightStyle = lipgloss.NewStyle().Foreground(magenta).Bold(true)
)

var (
	mu    sync.Mutex
	out   io.Writer = os.Stderr
	quiet bool
	plain bool
)

// SetOutput redirects messages, e.g. to a buffer in tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

// SetNoColor disables styling
func SetNoColor(noColor bool) {
	mu.Lock()
	defer mu.Unlock()
	plain = noColor
}

func render(style lipgloss.Style, s string) string {
	mu.Lock()
	noColor := plain
	mu.Unlock()
	if noColor {
		return s
	}
	return style.Render(s)
}

func emit(isError bool, line string) {
	mu.Lock()
	defer mu.Unlock()
	if quiet && !isError {
		return
	}
	fmt.Fprintln(out, line)
}

func withDetail(msg string, args []interface{}) string {
	if len(args) > 0 {
		return msg + ": " + fmt.Sprintf("%v", args[0])
	}
	return msg
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	emit(true, render(errorStyle, withDetail(msg, args)))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	emit(false, render(successStyle, msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	emit(false, render(labelStyle, label)+": "+render(valueStyle, value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	emit(false, render(warningStyle, withDetail(msg, args)))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	emit(false, render(highlightStyle, msg))
}
