package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportStack(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, stackFrom(ctx))

	a := withModule(ctx, "a")
	ab := withModule(a, "b")
	ac := withModule(a, "c")

	assert.Equal(t, importStack{"a"}, stackFrom(a))
	assert.Equal(t, importStack{"a", "b"}, stackFrom(ab))
	assert.Equal(t, importStack{"a", "c"}, stackFrom(ac), "siblings must not share backing arrays")

	s := stackFrom(ab)
	assert.True(t, s.contains("a"))
	assert.False(t, s.contains("c"))
	assert.Equal(t, "a -> b -> a", s.cycle("a"))
	assert.Equal(t, "b -> b", s.cycle("b"))
	assert.Equal(t, "z", s.cycle("z"))
}
