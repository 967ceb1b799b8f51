package errors

import (
	"fmt"
	"io"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// Format returns the error formatted for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString(color(colorRed+colorBold, "ERROR "))
	if e.Code != "" {
		b.WriteString(color(colorBold, e.Code+": "))
	}
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Detail != "" {
		b.WriteString("  ")
		b.WriteString(e.Detail)
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		b.WriteString("  caused by: ")
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(color(colorCyan, "Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *Error) FormatCompact() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// Print writes err to w, using Format for *Error values.
func Print(w io.Writer, err error) {
	if e, ok := err.(*Error); ok {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "%s %s\n", color(colorRed+colorBold, "ERROR"), err.Error())
}
