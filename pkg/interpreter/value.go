package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/like/pkg/compiler/ast"
)

// ValueKind tags the variants of Value.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindString
	KindVariable
	KindFunction
	KindCollect
	KindUnit
)

var valueKindNames = map[ValueKind]string{
	KindNumber:   "number",
	KindString:   "string",
	KindVariable: "variable",
	KindFunction: "function",
	KindCollect:  "collect",
	KindUnit:     "unit",
}

func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is the closed set of runtime values. Only this package implements it.
type Value interface {
	Kind() ValueKind
	String() string
	value()
}

// Number is the only numeric type; every literal is a float64.
type Number float64

// String is a text value.
type String string

// Variable is a named binding produced by assignment or parameter binding.
// Its Value is never itself a Variable.
type Variable struct {
	Name  string
	Value Value
}

// Function is a named function whose body is kept unevaluated until called.
type Function struct {
	Name   string
	Params []string
	Body   ast.Node
}

// PatternKind tells which end of a collect pattern holds the wildcard.
type PatternKind int

const (
	// Prefix patterns look like `name_*`: the literal is a name prefix.
	Prefix PatternKind = iota
	// Postfix patterns look like `*_name`: the literal is a name suffix.
	Postfix
)

func (k PatternKind) String() string {
	if k == Postfix {
		return "postfix"
	}
	return "prefix"
}

// CollectEntry maps a dispatch key to one function.
type CollectEntry struct {
	Key      string
	Function *Function
}

// Collect is a dispatch table of functions whose names matched a pattern.
type Collect struct {
	Name    string
	Pattern string
	Form    PatternKind
	Entries []CollectEntry
}

// Unit is the value of print and of empty programs.
type Unit struct{}

func (Number) Kind() ValueKind    { return KindNumber }
func (String) Kind() ValueKind    { return KindString }
func (*Variable) Kind() ValueKind { return KindVariable }
func (*Function) Kind() ValueKind { return KindFunction }
func (*Collect) Kind() ValueKind  { return KindCollect }
func (Unit) Kind() ValueKind      { return KindUnit }

func (Number) value()    {}
func (String) value()    {}
func (*Variable) value() {}
func (*Function) value() {}
func (*Collect) value()  {}
func (Unit) value()      {}

// String formats the number in its shortest exact form: 5, 2.5, 1e+21, +Inf, NaN.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (s String) String() string { return string(s) }

func (v *Variable) String() string {
	return fmt.Sprintf("Variable<%s: %s>", v.Name, v.Value)
}

func (f *Function) String() string {
	return fmt.Sprintf("Function<%s: [%s]>", f.Name, strings.Join(f.Params, ", "))
}

func (c *Collect) String() string {
	keys := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		keys[i] = e.Key
	}
	return fmt.Sprintf("Collect<%s /%s/: [%s]>", c.Name, c.Pattern, strings.Join(keys, ", "))
}

func (Unit) String() string { return "unit" }

// Unwrap returns the value a Variable holds, or v itself for any other value.
func Unwrap(v Value) Value {
	for {
		variable, ok := v.(*Variable)
		if !ok {
			return v
		}
		v = variable.Value
	}
}
