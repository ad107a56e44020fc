package interpreter

import (
	"context"
	"strings"

	"github.com/zurustar/like/pkg/compiler/ast"
)

// ParsePattern splits a collect pattern into its literal and wildcard
// position. Valid patterns hold exactly one '*', at the start or the end,
// next to a non-empty literal: "area_*" or "*_handler".
func ParsePattern(pattern string) (string, PatternKind, bool) {
	if strings.Count(pattern, "*") != 1 || len(pattern) < 2 {
		return "", Prefix, false
	}
	if literal, ok := strings.CutSuffix(pattern, "*"); ok {
		return literal, Prefix, true
	}
	if literal, ok := strings.CutPrefix(pattern, "*"); ok {
		return literal, Postfix, true
	}
	return "", Prefix, false
}

// buildEntries enumerates every Function bound in any frame, outermost
// frame first and in definition order, keeping those whose name matches.
// Entries are not de-duplicated.
func buildEntries(stack *Stack, literal string, kind PatternKind) []CollectEntry {
	var entries []CollectEntry
	for _, frame := range stack.Frames() {
		for _, name := range frame.Keys() {
			v, _ := frame.Get(name)
			fn, ok := v.(*Function)
			if !ok {
				continue
			}

			var key string
			var matched bool
			if kind == Prefix {
				key, matched = strings.CutPrefix(name, literal)
			} else {
				key, matched = strings.CutSuffix(name, literal)
			}
			if matched {
				entries = append(entries, CollectEntry{Key: key, Function: fn})
			}
		}
	}
	return entries
}

// evalCollectDecl builds a Collect from the functions visible now. Later
// definitions do not join it.
func (in *Interpreter) evalCollectDecl(env *Env, node ast.Node) (Value, error) {
	children := node.Children()
	if len(children) != 2 {
		return nil, newNodeError(node, ErrorInvalidNode, "collect needs a name and a pattern, got %d children", len(children))
	}

	name := children[0].TokenLiteral()
	pattern := children[1].TokenLiteral()

	literal, kind, ok := ParsePattern(pattern)
	if !ok {
		return nil, newNodeError(children[1], ErrorInvalidPattern,
			"invalid collect pattern /%s/: want one leading or trailing * next to a name part", pattern)
	}

	c := &Collect{
		Name:    name,
		Pattern: pattern,
		Form:    kind,
		Entries: buildEntries(env.stack, literal, kind),
	}
	env.stack.Define(name, c)

	in.log.Debug("Collect built", "collect", name, "pattern", pattern, "kind", kind.String(), "entries", len(c.Entries))
	return c, nil
}

// lookupCollect returns the Collect bound to name, if any.
func lookupCollect(env *Env, name string) (*Collect, bool) {
	v, ok := env.stack.Lookup(name)
	if !ok {
		return nil, false
	}
	c, ok := Unwrap(v).(*Collect)
	return c, ok
}

// evalCollectCall handles `a.b(args)`. Exactly one of a and b must name a
// Collect; the other half's literal text is the key.
func (in *Interpreter) evalCollectCall(ctx context.Context, env *Env, node ast.Node) (Value, error) {
	children := node.Children()
	if len(children) != 3 {
		return nil, newNodeError(node, ErrorInvalidNode, "collect call needs two names and arguments, got %d children", len(children))
	}
	first := children[0].TokenLiteral()
	second := children[1].TokenLiteral()

	fn, err := resolveCollectCall(env, node, first, second)
	if err != nil {
		return nil, err
	}

	args, err := in.evalArgs(ctx, env, children[2])
	if err != nil {
		return nil, err
	}
	return in.callFunction(ctx, env, node, fn, args)
}

func resolveCollectCall(env *Env, node ast.Node, first, second string) (*Function, error) {
	firstCollect, firstOK := lookupCollect(env, first)
	secondCollect, secondOK := lookupCollect(env, second)

	var c *Collect
	var key string
	switch {
	case firstOK && secondOK:
		return nil, newNodeError(node, ErrorCollectResolution,
			"ambiguous collect call: both %s and %s are collects", first, second)
	case firstOK:
		c, key = firstCollect, second
	case secondOK:
		c, key = secondCollect, first
	default:
		return nil, newNodeError(node, ErrorCollectResolution,
			"trying to use collect on no collect types: %s.%s", first, second)
	}

	var matches []*Function
	for _, e := range c.Entries {
		if e.Key == key {
			matches = append(matches, e.Function)
		}
	}

	switch len(matches) {
	case 0:
		return nil, newNodeError(node, ErrorCollectResolution,
			"tried to call invalid function: collect %s has no entry %q", c.Name, key)
	case 1:
		return matches[0], nil
	}
	return nil, newNodeError(node, ErrorCollectResolution,
		"ambiguous function call: %d functions match %q in collect %s", len(matches), key, c.Name)
}
