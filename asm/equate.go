package asm

import (
	"errors"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var errEquateNotInteger = errors.New(f("not an integer"))

// evalEquate evaluates a compile-time integer expression. Earlier
// equates are visible as predeclared names.
func evalEquate(name string, expr string, equate map[string]int) (value int, err error) {
	defer func() {
		if err != nil {
			err = &ErrEquate{Name: name, Err: err}
		}
	}()

	thread := starlark.Thread{Name: name}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, value := range equate {
		pred[key] = starlark.MakeInt(value)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, name, prog, pred)
	if err != nil {
		return
	}

	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = errEquateNotInteger
		return
	}

	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < NUMBER_MIN || st_int64 > NUMBER_MAX {
		err = ErrInvalidNumber(st_int.String())
		return
	}

	value = int(st_int64)
	return
}
