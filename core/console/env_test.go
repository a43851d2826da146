package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironSetGetUnset(t *testing.T) {
	env := NewEnviron()

	env.Set("FOO", "bar")
	assert.Equal(t, "bar", env.Get("FOO"))

	env.Set("FOO", "baz")
	assert.Equal(t, "baz", env.Get("FOO"))

	env.Unset("FOO")
	assert.Equal(t, "", env.Get("FOO"))
}

func TestEnvironLookupDistinguishesEmpty(t *testing.T) {
	env := NewEnviron()
	env.Set("EMPTY", "")

	_, ok := env.Lookup("MISSING")
	assert.False(t, ok)

	val, ok := env.Lookup("EMPTY")
	assert.True(t, ok)
	assert.Equal(t, "", val)
}

func TestEnvironFromList(t *testing.T) {
	env := NewEnvironFromList([]string{"A=1", "B=x=y", "C"})

	assert.Equal(t, "1", env.Get("A"))
	// Only the first "=" splits.
	assert.Equal(t, "x=y", env.Get("B"))
	// A pair without "=" becomes an empty-valued variable.
	val, ok := env.Lookup("C")
	assert.True(t, ok)
	assert.Equal(t, "", val)
}

func TestEnvironListSorted(t *testing.T) {
	env := NewEnvironFrom(map[string]string{"B": "2", "A": "1", "C": "3"})
	assert.Equal(t, []string{"A=1", "B=2", "C=3"}, env.List())
}

func TestEnvironCloneIsIndependent(t *testing.T) {
	env := NewEnvironFrom(map[string]string{"A": "1"})
	clone := env.Clone()

	clone.Set("A", "changed")
	clone.Set("B", "new")

	assert.Equal(t, "1", env.Get("A"))
	_, ok := env.Lookup("B")
	assert.False(t, ok)
}
