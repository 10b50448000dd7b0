package incr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Observe_Unobserve(t *testing.T) {
	ctx := context.Background()
	g := New()

	v0 := Var[string](g, "hello 0")
	m0 := Map1(g, v0, func(s string) string { return s })

	v1 := Var[string](g, "hello 1")
	m1 := Map1(g, v1, func(s string) string { return s })

	o0, err := Observe(ctx, g, m0)
	require.NoError(t, err)
	o1, err := Observe(ctx, g, m1)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "hello 0", o0.Value())
	require.Equal(t, "hello 1", o1.Value())

	o1.Unobserve(ctx)
	require.True(t, o1.IsUnobserved())
	require.False(t, m1.Node().IsNecessary(), "m1 should become unnecessary once its only observer is gone")

	v0.Set("not hello 0")
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "not hello 0", o0.Value())
}

func Test_Observe_Unobserve_multipleObserversOnSameNode(t *testing.T) {
	ctx := context.Background()
	g := New()

	v := Var[int](g, 1)
	m := Map1(g, v, func(x int) int { return x })

	o0, err := Observe(ctx, g, m)
	require.NoError(t, err)
	o1, err := Observe(ctx, g, m)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 1, o0.Value())
	require.Equal(t, 1, o1.Value())

	o0.Unobserve(ctx)
	require.True(t, m.Node().IsNecessary(), "second observer should keep m necessary")

	v.Set(2)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 2, o1.Value())
}

func Test_Observer_Unobserve_reobserve(t *testing.T) {
	ctx := context.Background()
	g := New()

	v := Var[string](g, "hello")
	m := Map1(g, v, func(s string) string { return s })

	o0, err := Observe(ctx, g, m)
	require.NoError(t, err)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "hello", o0.Value())

	o0.Unobserve(ctx)
	require.False(t, m.Node().IsNecessary())

	o1, err := Observe(ctx, g, m)
	require.NoError(t, err)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "hello", o1.Value())
}
