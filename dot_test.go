package incr

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Dot(t *testing.T) {
	g := New()
	v0 := Var[string](g, "foo")
	v1 := Var[string](g, "bar")
	m0 := Map2(g, v0, v1, func(a, b string) string { return a + b })
	m0.Node().SetLabel("concat")

	buf := new(bytes.Buffer)
	err := Dot(buf, m0)
	require.NoError(t, err)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "digraph incr {"))
	require.Contains(t, out, "concat")
	require.Contains(t, out, "->")
}
