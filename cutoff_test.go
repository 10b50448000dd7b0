package incr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Cutoff_SuppressesPropagation(t *testing.T) {
	ctx := context.Background()
	g := New()

	v := Var[int](g, 10)
	rounded := Cutoff(g, v, func(prev, next int) bool {
		return prev/10 == next/10
	})
	downstream := Map1(g, rounded, func(x int) int { return x })
	o, err := Observe(ctx, g, downstream)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 10, o.Value())
	changesAfterFirst := NodeStats(downstream).Changes()

	v.Set(14)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 10, o.Value(), "cutoff should keep the old rounded value")
	require.Equal(t, changesAfterFirst, NodeStats(downstream).Changes(), "downstream should not have recomputed a changed value")

	v.Set(20)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 20, o.Value())
}

func Test_Freeze_StopsAfterPredicate(t *testing.T) {
	ctx := context.Background()
	g := New()

	v := Var[int](g, 1)
	frozen := Freeze(g, v, func(x int) bool { return x >= 5 })
	o, err := Observe(ctx, g, frozen)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 1, o.Value())

	v.Set(3)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 3, o.Value())

	v.Set(5)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 5, o.Value())

	v.Set(100)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 5, o.Value(), "frozen value must not change again")
}
