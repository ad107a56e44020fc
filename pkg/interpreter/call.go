package interpreter

import (
	"context"

	"github.com/zurustar/like/pkg/compiler/ast"
)

// evalCall handles `name(args)`. Built-ins take precedence over bindings.
func (in *Interpreter) evalCall(ctx context.Context, env *Env, node ast.Node) (Value, error) {
	children := node.Children()
	if len(children) != 2 {
		return nil, newNodeError(node, ErrorInvalidNode, "call needs a name and arguments, got %d children", len(children))
	}
	name := children[0].TokenLiteral()

	if builtin, ok := in.builtins[name]; ok {
		args, err := in.evalArgs(ctx, env, children[1])
		if err != nil {
			return nil, err
		}
		v, err := builtin(in, args)
		if err != nil {
			return nil, builtinError(node, name, err)
		}
		return v, nil
	}

	binding, ok := env.stack.Lookup(name)
	if !ok {
		return nil, newNodeError(node, ErrorUnresolvedIdentifier, "function not found: %s", name)
	}

	fn, err := callable(node, name, binding)
	if err != nil {
		return nil, err
	}

	args, err := in.evalArgs(ctx, env, children[1])
	if err != nil {
		return nil, err
	}
	return in.callFunction(ctx, env, node, fn, args)
}

// callable resolves a binding to the function a direct call invokes.
// A collect is directly callable only when it holds a single entry whose
// key is empty, i.e. a function named exactly like the pattern literal.
func callable(node ast.Node, name string, binding Value) (*Function, error) {
	switch b := binding.(type) {
	case *Function:
		return b, nil
	case *Variable:
		return nil, newNodeError(node, ErrorNotCallable, "tried to call variable %s", name)
	case *Collect:
		if len(b.Entries) == 1 && b.Entries[0].Key == "" {
			return b.Entries[0].Function, nil
		}
		return nil, newNodeError(node, ErrorNotCallable,
			"collect %s cannot be called directly, call one of its entries with %s", name, collectCallHint(b))
	}
	return nil, newNodeError(node, ErrorNotCallable, "%s is a %s, not a function", name, binding.Kind())
}

func collectCallHint(c *Collect) string {
	if c.Form == Postfix {
		return "key." + c.Name + "()"
	}
	return c.Name + ".key()"
}

// callFunction binds args in a new frame and walks fn's body. The frame is
// popped whether or not the body fails.
func (in *Interpreter) callFunction(ctx context.Context, env *Env, node ast.Node, fn *Function, args []Value) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, newInterruptedError(node, err)
	}

	if len(args) != len(fn.Params) {
		return nil, newArityError(node, fn, len(args))
	}

	frame := env.stack.Push(fn.Name)
	for i, param := range fn.Params {
		frame.Set(param, &Variable{Name: param, Value: Unwrap(args[i])})
	}
	in.log.Debug("Stack frame pushed", "function", fn.Name, "depth", env.stack.Depth())

	defer func() {
		if _, err := env.stack.Pop(); err == nil {
			in.log.Debug("Stack frame popped", "function", fn.Name, "depth", env.stack.Depth())
		}
	}()

	return in.eval(ctx, env, fn.Body)
}
