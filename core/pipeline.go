package core

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// NumBufferWindows is the sliding-prefix flush chunk size (spec.md §4.10).
const NumBufferWindows = 100

// PipelineRunner drives N AsyncWorkers over a pre-built window list and
// flushes the VariantStore as contiguous genome-ordered prefixes complete
// (spec.md §4.10).
type PipelineRunner struct {
	NumWorkers int
	Store      *VariantStore
	Logger     *zap.Logger
}

// RunStats summarizes one pipeline run for --runtime-stats reporting.
type RunStats struct {
	Results []Result
}

// Run processes every window, writes flushed VariantCalls to out as they
// become eligible, and returns per-window stats. The input queue is filled
// up front and sized to len(windows) so the producer never blocks
// (spec.md §5's backpressure note).
func (pr *PipelineRunner) Run(ctx context.Context, windows []Window, cfg WorkerConfig, out io.Writer, chromNames map[int]string, sampleOrder []string) (RunStats, error) {
	input := make(chan Window, len(windows))
	output := make(chan Result, len(windows))
	stopCh := make(chan struct{})

	for _, w := range windows {
		input <- w
	}
	close(input)

	var wg sync.WaitGroup
	for i := 0; i < pr.NumWorkers; i++ {
		worker := &AsyncWorker{ID: i, Cfg: cfg, Store: pr.Store}
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx, stopCh, input, output)
		}()
	}

	go func() {
		wg.Wait()
		close(output)
	}()

	done := make([]bool, len(windows))
	results := make([]Result, len(windows))
	doneUpTo := 0
	nextFlushIdx := 0
	var writeErr error

	for res := range output {
		idx := res.Window.GenomeIndex
		done[idx] = true
		results[idx] = res
		if pr.Logger != nil {
			pr.Logger.Debug("window done",
				zap.String("window", res.Window.String()),
				zap.String("status", res.Status.String()),
				zap.Duration("runtime", time.Duration(res.WallRuntime)))
		}

		for doneUpTo < len(windows) && done[doneUpTo] {
			doneUpTo++
		}
		if writeErr == nil && doneUpTo-nextFlushIdx >= NumBufferWindows {
			boundary := windows[doneUpTo-1]
			flushed := pr.Store.FlushBefore(boundary)
			if err := WriteVariants(out, flushed, chromNames, sampleOrder); err != nil {
				writeErr = err
			}
			nextFlushIdx = doneUpTo
		}
	}

	if writeErr != nil {
		return RunStats{Results: results}, writeErr
	}

	final := pr.Store.FlushAll()
	if err := WriteVariants(out, final, chromNames, sampleOrder); err != nil {
		return RunStats{Results: results}, err
	}

	return RunStats{Results: results}, nil
}

// StopAll closes the given stop channel, signaling every worker reading
// from it to finish its current window and exit (spec.md §4.10's
// cancellation contract).
func StopAll(stopCh chan struct{}) {
	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
}
