// Package starlark binds the module loader to the go.starlark.net interpreter.
package starlark

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler implements ports.Compiler for Starlark.
type Compiler struct {
	identity domain.HostIdentity

	outMu  sync.Mutex
	stdout io.Writer
}

// NewCompiler creates a Compiler whose programs print to os.Stdout.
func NewCompiler() (*Compiler, error) {
	id, err := identify()
	if err != nil {
		return nil, err
	}
	return &Compiler{identity: id, stdout: os.Stdout}, nil
}

// SetOutput redirects the print builtin of every program to w.
func (c *Compiler) SetOutput(w io.Writer) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	c.stdout = w
}

func (c *Compiler) print(msg string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, _ = fmt.Fprintln(c.stdout, msg)
}

// Identity describes the running interpreter.
func (c *Compiler) Identity() domain.HostIdentity {
	return c.identity
}

// fileOptions returns the resolver options for a dialect.
// The lenient dialect accepts the statements strict Starlark forbids.
func fileOptions(d domain.Dialect) *syntax.FileOptions {
	if d == domain.DialectLenient {
		return &syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
			GlobalReassign:  true,
			Recursion:       true,
		}
	}
	return &syntax.FileOptions{Set: true}
}

// Compile parses, resolves and compiles host-native text.
func (c *Compiler) Compile(path, text string, dialect domain.Dialect) (ports.Program, error) {
	_, prog, err := starlark.SourceProgramOptions(fileOptions(dialect), path, text, isPredeclared)
	if err != nil {
		return nil, compileError(path, err)
	}
	return &Program{prog: prog, path: path, dialect: dialect, compiler: c}, nil
}

// Decode restores a program from an artifact payload.
func (c *Compiler) Decode(payload []byte, verify bool) (ports.Program, error) {
	var env envelope
	if err := decMode.Unmarshal(payload, &env); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrArtifactCorrupt, err), "failed to decode artifact envelope")
	}
	if verify && !env.intact() {
		return nil, zerr.With(zerr.Wrap(domain.ErrArtifactCorrupt, "checksum mismatch"), "path", env.Path)
	}

	prog, err := starlark.CompiledProgram(bytes.NewReader(env.Program))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrArtifactCorrupt, err), "failed to decode program"), "path", env.Path)
	}

	dialect := domain.DialectStrict
	if env.Lenient {
		dialect = domain.DialectLenient
	}
	return &Program{prog: prog, path: env.Path, dialect: dialect, compiler: c}, nil
}

// compileError converts scanner, parser and resolver errors into a SourceError.
func compileError(path string, err error) error {
	se := &domain.SourceError{Kind: domain.ErrCompileFailed, Path: path, Err: err}

	var synErr syntax.Error
	var resErrs resolve.ErrorList
	switch {
	case errors.As(err, &synErr):
		se.Line, se.Col, se.Msg = int(synErr.Pos.Line), int(synErr.Pos.Col), synErr.Msg
	case errors.As(err, &resErrs) && len(resErrs) > 0:
		first := resErrs[0]
		se.Line, se.Col, se.Msg = int(first.Pos.Line), int(first.Pos.Col), first.Msg
	default:
		se.Msg = err.Error()
	}
	return se
}
