package incr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func detectCycleNode(g *Graph, label string) *arrayFoldIncr[any, any] {
	n := ArrayFold[any, any](g, nil, nil, func(acc, v any) any { return v }).(*arrayFoldIncr[any, any])
	n.Node().SetLabel(label)
	return n
}

func Test_DetectCycleIfLinked(t *testing.T) {
	ctx := context.Background()
	g := New()

	n0 := detectCycleNode(g, "n0")
	n01 := detectCycleNode(g, "n01")
	n02 := detectCycleNode(g, "n02")
	n13 := detectCycleNode(g, "n13")
	n1 := detectCycleNode(g, "n1")
	n11 := detectCycleNode(g, "n11")
	n12 := detectCycleNode(g, "n12")

	require.NoError(t, n01.AddInput(ctx, n0))
	require.NoError(t, n02.AddInput(ctx, n01))
	require.NoError(t, n1.AddInput(ctx, n02))
	require.NoError(t, n11.AddInput(ctx, n1))
	require.NoError(t, n12.AddInput(ctx, n11))

	require.NoError(t, DetectCycleIfLinked(n13, n12))
	require.Error(t, DetectCycleIfLinked(n1, n12))
}

func Test_DetectCycleIfLinked_complex(t *testing.T) {
	ctx := context.Background()
	g := New()

	n0 := detectCycleNode(g, "n0")
	n1 := detectCycleNode(g, "n1")
	n2 := detectCycleNode(g, "n2")
	require.NoError(t, n1.AddInput(ctx, n0))
	require.NoError(t, n2.AddInput(ctx, n1))

	n01 := detectCycleNode(g, "n01")
	n02 := detectCycleNode(g, "n02")
	require.NoError(t, n01.AddInput(ctx, n2))
	require.NoError(t, n02.AddInput(ctx, n01))

	n11 := detectCycleNode(g, "n11")
	n12 := detectCycleNode(g, "n12")
	n13 := detectCycleNode(g, "n13")
	require.NoError(t, n11.AddInput(ctx, n01))
	require.NoError(t, n12.AddInput(ctx, n11))
	require.NoError(t, n13.AddInput(ctx, n12))

	require.Error(t, DetectCycleIfLinked(n2, n02))
	require.Error(t, DetectCycleIfLinked(n2, n13))
	require.NoError(t, DetectCycleIfLinked(n02, n13), "this should _not_ cause a cycle")
	require.Error(t, DetectCycleIfLinked(n01, n13))
}

func Test_DetectCycleIfLinked_trivial(t *testing.T) {
	ctx := context.Background()
	g := New()

	n0 := detectCycleNode(g, "n0")
	n1 := detectCycleNode(g, "n1")
	n2 := detectCycleNode(g, "n2")

	require.Error(t, DetectCycleIfLinked(n0, n0))

	require.NoError(t, n1.AddInput(ctx, n0))
	require.NoError(t, DetectCycleIfLinked(n2, n1))

	require.NoError(t, n2.AddInput(ctx, n1))
	require.Error(t, DetectCycleIfLinked(n0, n2))
}

func Test_DetectCycleIfLinked_regression(t *testing.T) {
	g := New()

	table := Var[string](g, "table")
	columnDownload := Map1(g, table, func(s string) string { return s })
	lastDownload := Map1(g, columnDownload, func(s string) string { return s })
	targetUpload := Map1(g, lastDownload, func(s string) string { return s })

	columnUpload := Map1(g, table, func(s string) string { return s })
	lastUpload := Map1(g, columnUpload, func(s string) string { return s })

	require.NoError(t, DetectCycleIfLinked(lastUpload, targetUpload), "this should _not_ cause a cycle!")
}
