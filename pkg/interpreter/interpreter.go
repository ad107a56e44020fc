// Package interpreter evaluates like syntax trees.
//
// Evaluation is a recursive walk over ast.Node values. Function definitions
// capture their body node unevaluated; every call walks that body again in
// a fresh frame holding the call's arguments. All mutable state lives in an
// Env, so one Interpreter can serve many independent evaluations.
package interpreter

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/zurustar/like/pkg/compiler/ast"
	"github.com/zurustar/like/pkg/logger"
)

// BuiltinFunc is the signature for built-in functions. Arguments arrive
// evaluated and unwrapped.
type BuiltinFunc func(in *Interpreter, args []Value) (Value, error)

// Interpreter holds configuration shared by evaluations.
type Interpreter struct {
	builtins map[string]BuiltinFunc
	out      io.Writer
	log      *slog.Logger
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(in *Interpreter) {
		in.log = log
	}
}

// WithOutput sets where print writes. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		in.out = w
	}
}

// New creates an Interpreter with the default built-ins registered.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		builtins: make(map[string]BuiltinFunc),
		out:      os.Stdout,
		log:      logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(in)
	}

	in.registerDefaultBuiltins()
	return in
}

// RegisterBuiltinFunction registers fn under name. Built-in names are
// resolved before the scope stack, so they cannot be shadowed.
func (in *Interpreter) RegisterBuiltinFunction(name string, fn BuiltinFunc) {
	in.builtins[name] = fn
}

// Env is the mutable state of one evaluation: its scope stack.
type Env struct {
	stack *Stack
}

// NewEnv creates an Env with an empty global frame.
func (in *Interpreter) NewEnv() *Env {
	return &Env{stack: NewStack()}
}

// Stack exposes the scope stack, e.g. for listing globals.
func (e *Env) Stack() *Stack {
	return e.stack
}

// Run evaluates root in a fresh Env and returns its final value.
func (in *Interpreter) Run(ctx context.Context, root ast.Node) (Value, error) {
	return in.Eval(ctx, in.NewEnv(), root)
}

// Eval evaluates node against env. Bindings made at the top level persist
// in env for later calls.
func (in *Interpreter) Eval(ctx context.Context, env *Env, node ast.Node) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, newInterruptedError(node, err)
	}
	return in.eval(ctx, env, node)
}
