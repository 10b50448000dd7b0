package incr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Var_SetStabilize(t *testing.T) {
	ctx := context.Background()
	g := New()

	v := Var[string](g, "hello")
	o, err := Observe(ctx, g, v)
	require.NoError(t, err)

	require.Equal(t, "hello", o.Value())

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "hello", o.Value())

	v.Set("goodbye")
	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, "goodbye", o.Value())
}

func Test_Var_SetDuringStabilization(t *testing.T) {
	ctx := context.Background()
	g := New()

	v := Var[int](g, 1)
	doubled := Map1(g, v, func(x int) int { return x * 2 })
	o, err := Observe(ctx, g, doubled)
	require.NoError(t, err)

	var sawDuringStabilize int
	doubled.Node().OnUpdate(func(context.Context, UpdateEvent, time.Time) {
		if sawDuringStabilize == 0 {
			v.Set(5)
		}
		sawDuringStabilize++
	})

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 2, o.Value())

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 10, o.Value())
}

func Test_Const_NeverRecomputes(t *testing.T) {
	ctx := context.Background()
	g := New()

	c := Const(g, 42)
	o, err := Observe(ctx, g, c)
	require.NoError(t, err)

	require.NoError(t, g.Stabilize(ctx))
	require.Equal(t, 42, o.Value())
	require.Equal(t, uint64(1), NodeStats(c).Recomputes())
}
