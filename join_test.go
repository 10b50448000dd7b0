package incr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Join_TracksCurrentInner(t *testing.T) {
	ctx := context.Background()
	g := New()

	a := Var[string](g, "a-value")
	b := Var[string](g, "b-value")

	mapA := Map1(g, a, func(v string) string { return v })
	mapB := Map1(g, b, func(v string) string { return v })

	selectA := Var[bool](g, true)
	outer := Map1[bool, Incr[string]](g, selectA, func(use bool) Incr[string] {
		if use {
			return mapA
		}
		return mapB
	})

	j := Join[string](g, outer)
	o, err := Observe(ctx, g, j)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "a-value", o.Value())

	a.Set("a-value-2")
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "a-value-2", o.Value())

	selectA.Set(false)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "b-value", o.Value())
}
