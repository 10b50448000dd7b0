package incr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ArrayFold_SumsInputs(t *testing.T) {
	ctx := context.Background()
	g := New()

	a := Var[int](g, 1)
	b := Var[int](g, 2)
	c := Var[int](g, 3)

	sum := ArrayFold[int, int](g, []Incr[int]{a, b, c}, 0, func(acc, v int) int { return acc + v })
	o, err := Observe(ctx, g, sum)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 6, o.Value())

	a.Set(10)
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 19, o.Value())
}

func Test_ArrayFold_AddRemoveInput(t *testing.T) {
	ctx := context.Background()
	g := New()

	a := Var[int](g, 1)
	b := Var[int](g, 2)

	sum := ArrayFold[int, int](g, []Incr[int]{a, b}, 0, func(acc, v int) int { return acc + v }).(*arrayFoldIncr[int, int])
	o, err := Observe(ctx, g, sum)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 3, o.Value())

	c := Var[int](g, 100)
	require.NoError(t, sum.AddInput(ctx, c))
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 103, o.Value())

	sum.RemoveInput(a.Node().ID())
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 102, o.Value())
}
