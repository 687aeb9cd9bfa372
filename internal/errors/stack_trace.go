package errors

import (
	"fmt"
	"strings"

	"github.com/esvm-go/esvm/ast"
)

// StackFrame captures one call-stack frame: the running function and the
// position of the call that entered it.
type StackFrame struct {
	Position     *ast.Position
	FunctionName string
	FileName     string
}

// String renders "functionName [line: N, column: M]", or just the function
// name when no position is known (native/host frames).
func (sf StackFrame) String() string {
	if sf.Position == nil {
		return sf.FunctionName
	}
	return fmt.Sprintf("%s [line: %d, column: %d]", sf.FunctionName, sf.Position.Line, sf.Position.Column)
}

// StackTrace is a full call stack, ordered oldest (bottom) to newest (top).
type StackTrace []StackFrame

// String renders the trace most-recent-first, one frame per line.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Top returns the most recent frame, or nil if the trace is empty.
func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// Depth returns the number of frames captured.
func (st StackTrace) Depth() int { return len(st) }

// NewStackFrame builds a frame for the given function and call-site position.
func NewStackFrame(functionName, fileName string, position *ast.Position) StackFrame {
	return StackFrame{FunctionName: functionName, FileName: fileName, Position: position}
}
