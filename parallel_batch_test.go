package incr

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_parallelBatch(t *testing.T) {
	var work []string
	for x := 0; x < runtime.NumCPU()<<1; x++ {
		work = append(work, fmt.Sprintf("work-%d", x))
	}

	seen := make(map[string]struct{})
	var seenMu sync.Mutex
	err := parallelBatch[string](context.Background(), func(_ context.Context, v string) error {
		seenMu.Lock()
		seen[v] = struct{}{}
		seenMu.Unlock()
		return nil
	}, work...)
	require.NoError(t, err)
	require.Equal(t, len(work), len(seen))

	for x := 0; x < runtime.NumCPU()<<1; x++ {
		_, hasKey := seen[fmt.Sprintf("work-%d", x)]
		require.True(t, hasKey)
	}
}

func Test_parallelBatch_error(t *testing.T) {
	var work []string
	for x := 0; x < runtime.NumCPU()<<1; x++ {
		work = append(work, fmt.Sprintf("work-%d", x))
	}

	var processedMu sync.Mutex
	var processed int
	err := parallelBatch[string](context.Background(), func(_ context.Context, v string) error {
		processedMu.Lock()
		processed++
		processedMu.Unlock()
		if v == "work-2" {
			return fmt.Errorf("this is only a test")
		}
		return nil
	}, work...)
	require.Error(t, err)
	require.Equal(t, len(work), processed)
}
