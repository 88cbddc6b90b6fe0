package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/futarchy-daemon/pkg/stats"
)

func TestReadMemoryStatistics(t *testing.T) {
	s := stats.ReadMemoryStatistics()
	require.Greater(t, s.TotalAllocatedMB, float64(0))
	require.GreaterOrEqual(t, s.TotalAllocatedMB, s.HeapAllocatedMB)
	require.Greater(t, s.NumGoroutines, 0)
}

func TestEnableMemoryStatistics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stats.EnableMemoryStatistics(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()
}
