package starlark

import (
	"bytes"
	"context"
	"errors"

	"go.starlark.net/starlark"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Program = (*Program)(nil)

// Program is a compiled Starlark module.
type Program struct {
	prog     *starlark.Program
	path     string
	dialect  domain.Dialect
	compiler *Compiler
}

// Dialect reports which compile produced the program.
func (p *Program) Dialect() domain.Dialect {
	return p.dialect
}

// Encode returns the artifact payload for the program.
func (p *Program) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.prog.Write(&buf); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to encode program"), "path", p.path)
	}
	env := envelope{
		Path:    p.path,
		Lenient: p.dialect == domain.DialectLenient,
		Program: buf.Bytes(),
	}
	env.seal()

	out, err := encMode.Marshal(&env)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to encode artifact envelope"), "path", p.path)
	}
	return out, nil
}

// Execute runs the module top level. The resulting globals are frozen and
// stored in mod.Globals so that other modules can load them.
func (p *Program) Execute(ctx context.Context, mod *domain.Module, imp ports.Importer) error {
	thread := &starlark.Thread{
		Name:  mod.ExecName(),
		Print: func(_ *starlark.Thread, msg string) { p.compiler.print(msg) },
		Load: func(_ *starlark.Thread, name string) (starlark.StringDict, error) {
			dep, err := imp.Import(ctx, name)
			if err != nil {
				return nil, err
			}
			globals, _ := dep.Globals.(starlark.StringDict)
			return globals, nil
		},
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	globals, err := p.prog.Init(thread, p.predeclared(mod))
	if err != nil {
		return p.executionError(mod, err)
	}
	globals.Freeze()
	mod.Globals = globals
	return nil
}

func (p *Program) predeclared(mod *domain.Module) starlark.StringDict {
	file := p.path
	if mod.Spec != nil {
		file = mod.Spec.Path
	}

	argv := make([]starlark.Value, 0, len(mod.Args)+1)
	argv = append(argv, starlark.String(file))
	for _, a := range mod.Args {
		argv = append(argv, starlark.String(a))
	}

	predeclared := starlark.StringDict{
		"__name__": starlark.String(mod.ExecName()),
		"__file__": starlark.String(file),
		"argv":     starlark.NewList(argv),
	}
	for name, v := range builtins {
		predeclared[name] = v
	}
	return predeclared
}

// executionError reports the innermost frame of this module's file.
func (p *Program) executionError(mod *domain.Module, err error) error {
	se := &domain.SourceError{
		Kind:   domain.ErrExecutionFailed,
		Module: mod.Name,
		Path:   p.path,
		Msg:    err.Error(),
		Err:    err,
	}

	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		se.Msg = evalErr.Msg
		for i := 0; i < len(evalErr.CallStack); i++ {
			fr := evalErr.CallStack.At(i)
			if fr.Pos.Filename() == p.path {
				se.Line, se.Col = int(fr.Pos.Line), int(fr.Pos.Col)
				break
			}
		}
	}
	return se
}
