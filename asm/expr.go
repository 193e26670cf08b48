package asm

import (
	"errors"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/a64sim/isa"
)

var errNotInteger = errors.New(f("not an integer"))

// Evaluator evaluates operand expressions to integers.
type Evaluator interface {
	Eval(expr string) (int64, error)
}

// Symbols evaluates expressions with Starlark, with the symbols and the
// condition code names predeclared.
type Symbols map[string]int64

var _ Evaluator = Symbols(nil)

// Eval evaluates the expression. Plain numbers, symbols and condition
// names are resolved without starting an interpreter.
func (sym Symbols) Eval(expr string) (value int64, err error) {
	value, err = strconv.ParseInt(expr, 0, 64)
	if err == nil {
		return
	}
	if v, ok := sym[expr]; ok {
		return v, nil
	}
	if cond, ok := isa.Cond(expr); ok {
		return int64(cond), nil
	}

	pred := starlark.StringDict{}
	for code, name := range isa.CondNames {
		pred[name] = starlark.MakeInt(code)
	}
	for name, v := range sym {
		pred[name] = starlark.MakeInt64(v)
	}

	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	result, err := starlark.EvalOptions(&opts, &thread, "expr", expr, pred)
	if err != nil {
		err = &ErrEval{Expr: expr, Err: err}
		return
	}

	st_int, ok := result.(starlark.Int)
	if !ok {
		err = &ErrEval{Expr: expr, Err: errNotInteger}
		return
	}
	if v, ok := st_int.Int64(); ok {
		value = v
		return
	}
	if v, ok := st_int.Uint64(); ok {
		value = int64(v)
		return
	}

	err = &ErrEval{Expr: expr, Err: errNotInteger}
	return
}
