package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck flags goroutine leaks: it fails once the live
// goroutine count passes the threshold.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("%d goroutines exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// GCMaxPauseCheck fails when any recorded stop-the-world pause exceeds the
// threshold, a sign the heap has grown past what the latency target allows.
func GCMaxPauseCheck(threshold time.Duration) CheckFunc {
	return func(context.Context) error {
		var st debug.GCStats
		debug.ReadGCStats(&st)
		for _, pause := range st.Pause {
			if pause > threshold {
				return errors.Errorf("gc pause %s exceeds threshold %s", pause, threshold)
			}
		}
		return nil
	}
}
