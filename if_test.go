package incr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_If_SelectsBranch(t *testing.T) {
	ctx := context.Background()
	g := New()

	test := Var[bool](g, true)
	then_ := Var[string](g, "then")
	else_ := Var[string](g, "else")

	i := If[string](g, test, then_, else_)
	o, err := Observe(ctx, g, i)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "then", o.Value())

	test.Set(false)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "else", o.Value())

	// the unselected branch should not be a dependency anymore: changing
	// it must not force a recompute of the If node's own change count.
	changesBefore := NodeStats(i).Changes()
	then_.Set("then-again")
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, changesBefore, NodeStats(i).Changes())
	require.Equal(t, "else", o.Value())
}
