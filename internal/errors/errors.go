// Package errors formats runtime diagnostics with source context: a
// line/column header and a caret pointing at the offending position,
// applied to uncaught throw-completions and step-budget aborts (parsing
// itself is out of scope for this module, so there are no parse errors).
package errors

import (
	"fmt"
	"strings"

	"github.com/esvm-go/esvm/ast"
)

// Diagnostic represents a single host-facing diagnostic: an uncaught
// exception, a runtime abortion, or a plugin-construction failure.
type Diagnostic struct {
	Message string
	Source  string
	File    string
	Pos     ast.Position
}

// NewDiagnostic creates a diagnostic at the given position.
func NewDiagnostic(pos ast.Position, message, source, file string) *Diagnostic {
	return &Diagnostic{Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic with source context. If color is true, ANSI
// escapes highlight the message and caret for terminal output.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", d.File, d.Pos.Line, d.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", d.Pos.Line, d.Pos.Column)
	}

	if line := d.sourceLine(d.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+d.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (d *Diagnostic) sourceLine(line int) string {
	if d.Source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
