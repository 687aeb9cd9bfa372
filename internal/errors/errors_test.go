package errors

import (
	"strings"
	"testing"

	"github.com/esvm-go/esvm/ast"
)

func TestDiagnosticFormat(t *testing.T) {
	tests := []struct {
		name        string
		pos         ast.Position
		message     string
		source      string
		file        string
		wantContain []string
	}{
		{
			name:    "simple error with file",
			pos:     ast.Position{Line: 1, Column: 10},
			message: "x is not defined",
			source:  "var y = x + 5;",
			file:    "test.js",
			wantContain: []string{
				"Error in test.js:1:10",
				"   1 | var y = x + 5;",
				"^",
				"x is not defined",
			},
		},
		{
			name:    "error without file",
			pos:     ast.Position{Line: 5, Column: 15},
			message: "type mismatch",
			source:  "line1\nline2\nline3\nline4\nline5 with error here\nline6",
			file:    "",
			wantContain: []string{
				"Error at line 5:15",
				"   5 | line5 with error here",
				"^",
				"type mismatch",
			},
		},
		{
			name:    "multi-line source",
			pos:     ast.Position{Line: 2, Column: 3},
			message: "unexpected token",
			source:  "{\n  x: 1,\n  y: 2,\n}",
			file:    "obj.js",
			wantContain: []string{
				"Error in obj.js:2:3",
				"   2 |   x: 1,",
				"^",
				"unexpected token",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDiagnostic(tt.pos, tt.message, tt.source, tt.file)
			got := d.Format(false)

			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("Format() output missing expected string\nwant substring: %q\ngot:\n%s", want, got)
				}
			}
		})
	}
}

func TestDiagnosticFormatColor(t *testing.T) {
	d := NewDiagnostic(ast.Position{Line: 1, Column: 1}, "boom", "x", "f.js")
	got := d.Format(true)
	if !strings.Contains(got, "\033[1;31m") {
		t.Error("Format(true) should include the caret color escape")
	}
	if !strings.Contains(got, "\033[1m") {
		t.Error("Format(true) should include the message color escape")
	}
}

func TestDiagnosticErrorMatchesUncoloredFormat(t *testing.T) {
	d := NewDiagnostic(ast.Position{Line: 1, Column: 1}, "boom", "x", "f.js")
	if d.Error() != d.Format(false) {
		t.Error("Error() should equal Format(false)")
	}
}

func TestDiagnosticFormatOutOfRangeLine(t *testing.T) {
	d := NewDiagnostic(ast.Position{Line: 99, Column: 1}, "boom", "only one line", "f.js")
	got := d.Format(false)
	if strings.Contains(got, "99 |") {
		t.Error("Format() should not render a source line that doesn't exist")
	}
	if !strings.Contains(got, "boom") {
		t.Error("Format() should still render the message")
	}
}
