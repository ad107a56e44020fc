package interpreter

import (
	"errors"
	"fmt"

	"github.com/zurustar/like/pkg/compiler/ast"
)

// ErrorType categorizes runtime errors.
type ErrorType string

const (
	ErrorUnresolvedIdentifier ErrorType = "UNRESOLVED_IDENTIFIER"
	ErrorNotCallable          ErrorType = "NOT_CALLABLE"
	ErrorArityMismatch        ErrorType = "ARITY_MISMATCH"
	ErrorUnknownOperator      ErrorType = "UNKNOWN_OPERATOR"
	ErrorMalformedExpression  ErrorType = "MALFORMED_EXPRESSION"
	ErrorInvalidPattern       ErrorType = "INVALID_COLLECT_PATTERN"
	ErrorCollectResolution    ErrorType = "COLLECT_RESOLUTION_FAILURE"
	ErrorTypeMismatch         ErrorType = "TYPE_MISMATCH"
	ErrorInvalidNode          ErrorType = "INVALID_NODE"
	ErrorInterrupted          ErrorType = "INTERRUPTED"
	ErrorBuiltin              ErrorType = "BUILTIN_FAILURE"
)

// RuntimeError is the single error category raised while evaluating.
// Every RuntimeError aborts the evaluation that raised it.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Line    int // 0 when the node carries no position
	Column  int
	Err     error // underlying cause, e.g. context.Canceled
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %s at line %d, column %d", e.Type, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a RuntimeError without position.
func NewRuntimeError(errType ErrorType, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// newNodeError creates a RuntimeError positioned at node.
func newNodeError(node ast.Node, errType ErrorType, format string, args ...any) *RuntimeError {
	err := NewRuntimeError(errType, format, args...)
	if node != nil {
		tok := node.Token()
		err.Line, err.Column = tok.Line, tok.Column
	}
	return err
}

// IsType reports whether err is, or wraps, a RuntimeError of type t.
func IsType(err error, t ErrorType) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Type == t
}

func newInterruptedError(node ast.Node, cause error) *RuntimeError {
	err := newNodeError(node, ErrorInterrupted, "evaluation interrupted: %v", cause)
	err.Err = cause
	return err
}

// builtinError attaches the call site to a failure returned by a built-in.
// Errors that are not RuntimeErrors are wrapped as BUILTIN_FAILURE.
func builtinError(node ast.Node, name string, err error) *RuntimeError {
	var re *RuntimeError
	if !errors.As(err, &re) {
		re = newNodeError(node, ErrorBuiltin, "%s: %v", name, err)
		re.Err = err
		return re
	}
	if re.Line == 0 && node != nil {
		tok := node.Token()
		re.Line, re.Column = tok.Line, tok.Column
	}
	return re
}

func newArityError(node ast.Node, fn *Function, got int) *RuntimeError {
	return newNodeError(node, ErrorArityMismatch,
		"function %s expects %d arguments, got %d", fn.Name, len(fn.Params), got)
}

func newTypeMismatchError(node ast.Node, op string, left, right Value) *RuntimeError {
	return newNodeError(node, ErrorTypeMismatch,
		"unsupported operand types for %s: %s and %s", op, left.Kind(), right.Kind())
}
