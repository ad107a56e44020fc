package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/zurustar/like/pkg/compiler"
	"github.com/zurustar/like/pkg/interpreter"
)

// reporter prints user-facing diagnostics.
type reporter struct {
	w      io.Writer
	syntax *color.Color
	fault  *color.Color
	faint  *color.Color
}

func newReporter(w io.Writer, noColor bool) *reporter {
	r := &reporter{
		w:      w,
		syntax: color.New(color.FgYellow, color.Bold),
		fault:  color.New(color.FgRed, color.Bold),
		faint:  color.New(color.Faint),
	}
	if noColor {
		r.syntax.DisableColor()
		r.fault.DisableColor()
		r.faint.DisableColor()
	}
	return r
}

// syntaxErrors prints each front-end error with its source context.
func (r *reporter) syntaxErrors(errs []error) {
	for _, err := range errs {
		var ce *compiler.CompileError
		if !errors.As(err, &ce) {
			r.fault.Fprint(r.w, "error")
			fmt.Fprintf(r.w, ": %v\n", err)
			continue
		}

		r.syntax.Fprint(r.w, "syntax error")
		fmt.Fprintf(r.w, ": %s (line %d, column %d)\n", ce.Message, ce.Line, ce.Column)
		if ce.Context != "" {
			r.faint.Fprintln(r.w, ce.Context)
		}
	}
}

// runtimeError prints an evaluation failure. source is the text the failing
// tree was parsed from and may be empty.
func (r *reporter) runtimeError(err error, source string) {
	var re *interpreter.RuntimeError
	if !errors.As(err, &re) {
		r.fault.Fprint(r.w, "runtime error")
		fmt.Fprintf(r.w, ": %v\n", err)
		return
	}

	r.fault.Fprintf(r.w, "runtime error [%s]", re.Type)
	fmt.Fprintf(r.w, ": %s", re.Message)
	if re.Line > 0 {
		fmt.Fprintf(r.w, " (line %d, column %d)", re.Line, re.Column)
	}
	fmt.Fprintln(r.w)

	if context := compiler.GenerateErrorContext(source, re.Line, re.Column); context != "" {
		r.faint.Fprintln(r.w, context)
	}
}
