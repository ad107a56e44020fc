package interpreter

import (
	"context"

	"github.com/zurustar/like/pkg/compiler/ast"
)

// eval reduces node to a Value. Function definitions are not entered: their
// body is stored as-is and only walked by callFunction.
func (in *Interpreter) eval(ctx context.Context, env *Env, node ast.Node) (Value, error) {
	if node == nil {
		return nil, NewRuntimeError(ErrorInvalidNode, "cannot evaluate a nil node")
	}

	switch node.Kind() {
	case ast.KindStart, ast.KindBlock:
		return in.evalBlock(ctx, env, node)
	case ast.KindNumber:
		return evalNumber(node)
	case ast.KindString:
		return String(node.TokenLiteral()), nil
	case ast.KindExistingIdent, ast.KindIdentifier:
		return evalIdentifier(env, node)
	case ast.KindExpression:
		return in.evalExpression(ctx, env, node)
	case ast.KindAssignment:
		return in.evalAssignment(ctx, env, node)
	case ast.KindFunction:
		return in.evalFunctionDef(env, node)
	case ast.KindFuncCall:
		return in.evalCall(ctx, env, node)
	case ast.KindCollect:
		return in.evalCollectDecl(env, node)
	case ast.KindCollectCall:
		return in.evalCollectCall(ctx, env, node)
	case ast.KindStartFn, ast.KindEndFn:
		return Unit{}, nil
	}

	return nil, newNodeError(node, ErrorInvalidNode, "cannot evaluate %s node", node.Kind())
}

// evalBlock evaluates statements in order and yields the last one's value.
func (in *Interpreter) evalBlock(ctx context.Context, env *Env, node ast.Node) (Value, error) {
	var result Value = Unit{}
	for _, stmt := range node.Children() {
		if isMarker(stmt) {
			continue
		}
		v, err := in.eval(ctx, env, stmt)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func evalNumber(node ast.Node) (Value, error) {
	f, err := ast.ParseNumber(node.TokenLiteral())
	if err != nil {
		return nil, newNodeError(node, ErrorInvalidNode, "%v", err)
	}
	return Number(f), nil
}

func evalIdentifier(env *Env, node ast.Node) (Value, error) {
	name := node.TokenLiteral()
	v, ok := env.stack.Lookup(name)
	if !ok {
		return nil, newNodeError(node, ErrorUnresolvedIdentifier, "undefined identifier: %s", name)
	}
	return v, nil
}

// evalExpression handles the grouped form (one child) and the binary form
// (operand, operator, operand).
func (in *Interpreter) evalExpression(ctx context.Context, env *Env, node ast.Node) (Value, error) {
	children := node.Children()

	switch len(children) {
	case 1:
		return in.eval(ctx, env, children[0])
	case 3:
		left, err := in.eval(ctx, env, children[0])
		if err != nil {
			return nil, err
		}
		right, err := in.eval(ctx, env, children[2])
		if err != nil {
			return nil, err
		}
		return applyOperator(node, children[1], Unwrap(left), Unwrap(right))
	}

	return nil, newNodeError(node, ErrorMalformedExpression,
		"expression has %d operands, want 1 or 3", len(children))
}

// applyOperator computes left op right. Numbers follow IEEE-754, so
// division by zero yields an infinity or NaN. Strings support + only.
func applyOperator(node, op ast.Node, left, right Value) (Value, error) {
	symbol, known := operatorSymbols[op.Kind()]
	if !known {
		return nil, newNodeError(op, ErrorUnknownOperator, "unknown operator %s", op.Kind())
	}

	l, lok := left.(Number)
	r, rok := right.(Number)
	if !lok || !rok {
		ls, lsok := left.(String)
		rs, rsok := right.(String)
		if lsok && rsok && op.Kind() == ast.KindAdd {
			return ls + rs, nil
		}
		return nil, newTypeMismatchError(node, symbol, left, right)
	}

	switch op.Kind() {
	case ast.KindAdd:
		return l + r, nil
	case ast.KindSub:
		return l - r, nil
	case ast.KindMul:
		return l * r, nil
	default:
		return l / r, nil
	}
}

var operatorSymbols = map[ast.Kind]string{
	ast.KindAdd: "+",
	ast.KindSub: "-",
	ast.KindMul: "*",
	ast.KindDiv: "/",
}

// evalAssignment binds the unwrapped right-hand value in the innermost
// frame and yields the new Variable.
func (in *Interpreter) evalAssignment(ctx context.Context, env *Env, node ast.Node) (Value, error) {
	children := node.Children()
	if len(children) != 2 {
		return nil, newNodeError(node, ErrorInvalidNode, "assignment needs a name and a value, got %d children", len(children))
	}

	v, err := in.eval(ctx, env, children[1])
	if err != nil {
		return nil, err
	}

	variable := &Variable{Name: children[0].TokenLiteral(), Value: Unwrap(v)}
	env.stack.Define(variable.Name, variable)
	return variable, nil
}

// evalFunctionDef captures the function without visiting its body.
func (in *Interpreter) evalFunctionDef(env *Env, node ast.Node) (Value, error) {
	var parts []ast.Node
	for _, c := range node.Children() {
		if !isMarker(c) {
			parts = append(parts, c)
		}
	}
	if len(parts) != 3 || parts[1].Kind() != ast.KindParams {
		return nil, newNodeError(node, ErrorInvalidNode, "function definition needs a name, parameters and a body")
	}

	params := make([]string, 0, len(parts[1].Children()))
	for _, p := range parts[1].Children() {
		params = append(params, p.TokenLiteral())
	}

	fn := &Function{
		Name:   parts[0].TokenLiteral(),
		Params: params,
		Body:   parts[2],
	}
	env.stack.Define(fn.Name, fn)

	in.log.Debug("Function defined", "function", fn.Name, "params", len(fn.Params), "frame", env.stack.Current().Name())
	return fn, nil
}

// evalArgs evaluates call arguments left to right in the caller's scope.
func (in *Interpreter) evalArgs(ctx context.Context, env *Env, node ast.Node) ([]Value, error) {
	if node.Kind() != ast.KindArgs {
		return nil, newNodeError(node, ErrorInvalidNode, "expected args, got %s", node.Kind())
	}

	args := make([]Value, 0, len(node.Children()))
	for _, a := range node.Children() {
		v, err := in.eval(ctx, env, a)
		if err != nil {
			return nil, err
		}
		args = append(args, Unwrap(v))
	}
	return args, nil
}

func isMarker(n ast.Node) bool {
	return n.Kind() == ast.KindStartFn || n.Kind() == ast.KindEndFn
}
