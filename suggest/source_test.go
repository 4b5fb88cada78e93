package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zephyrtronium/formula"
)

func TestDedupe(t *testing.T) {
	in := []formula.Suggestion{named("1", "a"), named("2", "b"), named("1", "c"), named("3", "d"), named("2", "e")}
	got := Dedupe(in)
	assert.Equal(t, []formula.Suggestion{named("1", "a"), named("2", "b"), named("3", "d")}, got)
	assert.Empty(t, Dedupe(nil))
}
