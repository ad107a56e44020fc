package interpreter

import (
	"fmt"
	"strings"
)

func (in *Interpreter) registerDefaultBuiltins() {
	// print: writes its arguments separated by spaces and a newline.
	in.RegisterBuiltinFunction("print", func(in *Interpreter, args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = arg.String()
		}
		if _, err := fmt.Fprintln(in.out, strings.Join(parts, " ")); err != nil {
			rerr := NewRuntimeError(ErrorBuiltin, "print: %v", err)
			rerr.Err = err
			return nil, rerr
		}
		return Unit{}, nil
	})
}
