package debug

// Periodic runtime metrics logger, started only when config.Debug is true.
// Tracks goroutine count, heap and stack usage, plus the process RSS where
// the platform supports reading it. The vision pipeline allocates native
// OpenCV buffers on every tick; RSS next to heap stats shows whether a
// leak is Go-side or native.

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// StartRuntimeLogger launches a ticker that logs runtime stats at the given
// interval until the process exits.
func StartRuntimeLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for range t.C {
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []any{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("gc_cycles", uint64(ms.NumGC)),
			}
			if rss, ok := readRSS(); ok {
				attrs = append(attrs, slog.Uint64("rss", rss))
			}
			logger.Info("runtime-stats", attrs...)
		}
	}()
}
