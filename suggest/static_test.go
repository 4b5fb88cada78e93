package suggest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/formula"
)

const catalogueYAML = `suggestions:
  - id: "1"
    name: price
    category: sales
    value: 12.5
  - id: "2"
    name: total
    value: price * 2
  - id: "3"
    name: Product Count
    category: stock
    value: 40
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStatic(t *testing.T) {
	src, err := LoadStatic(writeFile(t, "vars.yaml", catalogueYAML))
	require.NoError(t, err)
	all := src.All()
	require.Len(t, all, 3)
	assert.Equal(t, formula.Suggestion{ID: "1", Name: "price", Category: "sales", Value: formula.NumberValue("12.5")}, all[0])
	assert.Equal(t, formula.ExprValue("price * 2"), all[1].Value)
	assert.Equal(t, "stock", all[2].Category)
}

func TestLoadStaticErrors(t *testing.T) {
	_, err := LoadStatic(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadStatic(writeFile(t, "bad.yaml", "suggestions: [\n"))
	assert.Error(t, err)

	_, err = LoadStatic(writeFile(t, "noid.yaml", "suggestions:\n  - name: price\n    value: 1\n"))
	assert.ErrorContains(t, err, "entry 1")

	_, err = LoadStatic(writeFile(t, "badvalue.yaml", "suggestions:\n  - id: a\n    name: x\n    value: .nan\n"))
	assert.Error(t, err)
}

func TestStaticSearch(t *testing.T) {
	src, err := LoadStatic(writeFile(t, "vars.yaml", catalogueYAML))
	require.NoError(t, err)
	ctx := context.Background()
	names := func(q string) []string {
		r, err := src.Search(ctx, q)
		require.NoError(t, err)
		var n []string
		for _, s := range r {
			n = append(n, s.Name)
		}
		return n
	}
	assert.Equal(t, []string{"price", "Product Count"}, names("pr"))
	assert.Equal(t, []string{"price"}, names("PRI"))
	assert.Equal(t, []string{"Product Count"}, names("count"))
	assert.Equal(t, []string{"total"}, names("tl"))
	assert.Empty(t, names("xyz"))
	assert.Empty(t, names(""))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Search(canceled, "pr")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStaticCopies(t *testing.T) {
	list := []formula.Suggestion{named("1", "a")}
	src := NewStatic(list)
	list[0].Name = "changed"
	assert.Equal(t, "a", src.All()[0].Name)
}
