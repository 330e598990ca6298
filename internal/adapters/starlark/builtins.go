package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// sum adds the elements of an iterable to start, which defaults to 0.
func sum(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		iterable starlark.Iterable
		start    starlark.Value = starlark.MakeInt(0)
	)
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &iterable, &start); err != nil {
		return nil, err
	}

	iter := iterable.Iterate()
	defer iter.Done()

	acc := start
	var x starlark.Value
	for iter.Next(&x) {
		v, err := starlark.Binary(syntax.PLUS, acc, x)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		acc = v
	}
	return acc, nil
}

var builtins = starlark.StringDict{
	"sum": starlark.NewBuiltin("sum", sum),
}

// predeclaredNames are bound for every module in addition to the universe.
var predeclaredNames = map[string]bool{
	"__name__": true,
	"__file__": true,
	"argv":     true,
	"sum":      true,
}

func isPredeclared(name string) bool {
	return predeclaredNames[name]
}
