package incr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Bind_SwitchesOnLHSChange(t *testing.T) {
	ctx := context.Background()
	g := New()

	useFirst := Var[bool](g, true)
	first := Var[string](g, "first")
	second := Var[string](g, "second")

	b := Bind[bool, string](g, useFirst, func(s Scope, use bool) Incr[string] {
		if use {
			return Map1(s, first, func(v string) string { return v })
		}
		return Map1(s, second, func(v string) string { return v })
	})

	o, err := Observe(ctx, g, b)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "first", o.Value())

	first.Set("first-updated")
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "first-updated", o.Value())

	useFirst.Set(false)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "second", o.Value())

	// after switching away, changes to the no-longer-selected branch's
	// input must not affect the bind's value.
	first.Set("should not show up")
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "second", o.Value())
}

func Test_Bind_TearsDownOldScopeNodes(t *testing.T) {
	ctx := context.Background()
	g := New()

	var builtCount int
	use := Var[int](g, 0)
	b := Bind[int, int](g, use, func(s Scope, v int) Incr[int] {
		builtCount++
		return Map1(s, Const(s, v), func(x int) int { return x * 10 })
	})

	o, err := Observe(ctx, g, b)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 0, o.Value())
	require.Equal(t, 1, builtCount)

	use.Set(1)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 10, o.Value())
	require.Equal(t, 2, builtCount)
}
