package stats

import (
	"context"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
)

// Snapshot is the memory usage of the go process at some point in time.
type Snapshot struct {
	TotalAllocatedMB float64
	HeapAllocatedMB  float64
	Mallocs          uint64
	Frees            uint64
	NumGoroutines    int
}

// EnableMemoryStatistics starts a go routine that periodically logs memory
// usage and number of go routines of the process, until ctx is done.
func EnableMemoryStatistics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// ReadMemoryStatistics returns the current memory usage of the process.
func ReadMemoryStatistics() Snapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return Snapshot{
		TotalAllocatedMB: toMegabytes(memStats.TotalAlloc),
		HeapAllocatedMB:  toMegabytes(memStats.HeapAlloc),
		Mallocs:          memStats.Mallocs,
		Frees:            memStats.Frees,
		NumGoroutines:    runtime.NumGoroutine(),
	}
}

// PrintMemoryStatistics logs the current memory usage of the process.
func PrintMemoryStatistics() {
	s := ReadMemoryStatistics()
	log.WithFields(log.Fields{
		"total_alloc_mb": s.TotalAllocatedMB,
		"heap_alloc_mb":  s.HeapAllocatedMB,
		"mallocs":        s.Mallocs,
		"frees":          s.Frees,
		"goroutines":     s.NumGoroutines,
	}).Info("memory statistics")
}

func toMegabytes(bytes uint64) float64 {
	return float64(bytes) / MEGABYTE
}
