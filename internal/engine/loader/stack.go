package loader

import (
	"context"
	"slices"
	"strings"
)

type stackKey struct{}

// importStack is the chain of modules currently executing on one call path.
type importStack []string

func stackFrom(ctx context.Context) importStack {
	s, _ := ctx.Value(stackKey{}).(importStack)
	return s
}

func withModule(ctx context.Context, name string) context.Context {
	s := stackFrom(ctx)
	next := make(importStack, len(s), len(s)+1)
	copy(next, s)
	return context.WithValue(ctx, stackKey{}, append(next, name))
}

func (s importStack) contains(name string) bool {
	return slices.Contains(s, name)
}

// cycle renders the path from the first occurrence of name back to name.
func (s importStack) cycle(name string) string {
	i := slices.Index(s, name)
	if i < 0 {
		return name
	}
	return strings.Join(append(slices.Clone(s[i:]), name), " -> ")
}
