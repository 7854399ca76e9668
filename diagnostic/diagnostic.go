// Package diagnostic defines compiler diagnostics and a span highlighter
// used to render them against source text.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/edilson258/bug/span"
)

// Kind classifies a diagnostic per the checker's error taxonomy.
type Kind int

const (
	Syntax Kind = iota
	Type
	Name
	Argument
	IllegalDeclaration
	Runtime
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "Syntax Error"
	case Type:
		return "Type Error"
	case Name:
		return "Name Error"
	case Argument:
		return "Argument Error"
	case IllegalDeclaration:
		return "Illegal Declaration"
	case Runtime:
		return "Runtime Error"
	default:
		return "Error"
	}
}

// Diagnostic is a single compile-time or run-time problem report.
type Diagnostic struct {
	Kind    Kind
	Message string
	Span    span.Span
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
	underlineStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#FF5F87"))
)

// Render renders a single diagnostic against src: a header
// "<path>:<line>:<column> ERROR" per spec.md §6, the message (prefixed
// with the diagnostic's kind the way original_source/bugc/analysis/
// errorhandler.rs's AnalyserError::fmt does, "[Kind Error]: msg"), a
// blank line, then the offending source lines with the diagnostic's
// span underlined. The source-snippet walk is grounded on
// original_source/bugc/highlighter.rs, restyled with lipgloss instead
// of raw ANSI escape sequences.
func Render(path string, d Diagnostic, src string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headingStyle.Render(fmt.Sprintf("%s:%d:%d ERROR", path, d.Span.Line, d.Span.Column)))
	fmt.Fprintf(&b, "[%s]: %s\n\n", d.Kind, d.Message)
	b.WriteString(highlight(src, d.Span))
	return b.String()
}

// RenderAll renders every diagnostic in order, separated by a blank line.
func RenderAll(path string, diags []Diagnostic, src string) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = Render(path, d, src)
	}
	return strings.Join(parts, "\n")
}

// highlight prints the source lines spanned by sp, underlining the exact
// byte range, the way original_source/bugc/highlighter.rs does for its
// terminal printer.
func highlight(src string, sp span.Span) string {
	start, end := sp.Start, sp.End
	if end > len(src) {
		end = len(src)
	}
	if start > end {
		start = end
	}

	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	lineEnd := len(src)
	if idx := strings.IndexByte(src[end:], '\n'); idx >= 0 {
		lineEnd = end + idx
	}

	line := src[lineStart:lineEnd]
	var b strings.Builder
	b.WriteString(gutterStyle.Render("    |") + "\n")
	fmt.Fprintf(&b, "%s %s\n", gutterStyle.Render(fmt.Sprintf("%4d |", sp.Line)), decorate(line, lineStart, start, end))
	b.WriteString(gutterStyle.Render("    |") + "\n")
	return b.String()
}

func decorate(line string, lineStart, start, end int) string {
	relStart, relEnd := start-lineStart, end-lineStart
	if relStart < 0 {
		relStart = 0
	}
	if relEnd > len(line) {
		relEnd = len(line)
	}
	if relStart >= relEnd {
		return line
	}
	return line[:relStart] + underlineStyle.Render(line[relStart:relEnd]) + line[relEnd:]
}
