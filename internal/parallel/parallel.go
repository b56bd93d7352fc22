// Package parallel fans independent jobs out over a bounded errgroup.
package parallel

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msalah0e/lattice/internal/ui"
)

// Result holds the outcome of one task.
type Result[T any] struct {
	Name    string
	OK      bool
	Err     error
	Value   T
	Elapsed time.Duration
}

// Task is one unit of work.
type Task[T any] struct {
	Name string
	Fn   func(ctx context.Context) (T, error)
}

// Run executes tasks with at most concurrency in flight and returns results
// in submission order. A failing task never cancels the others. Progress
// lines go to w when it is non-nil.
func Run[T any](ctx context.Context, tasks []Task[T], concurrency int, w io.Writer) []Result[T] {
	if concurrency < 1 {
		concurrency = 4
	}

	results := make([]Result[T], len(tasks))
	var mu sync.Mutex
	progress := func(format string, args ...any) {
		if w == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result[T]{Name: task.Name, Err: err}
				return nil
			}
			start := time.Now()
			progress("  %s %s...\n", ui.Subtle.Sprint("⟳"), task.Name)

			v, err := task.Fn(gctx)
			elapsed := time.Since(start)

			results[i] = Result[T]{Name: task.Name, OK: err == nil, Err: err, Value: v, Elapsed: elapsed}
			if err != nil {
				progress("  %s %s %s\n", ui.StatusIcon(false), task.Name, ui.Bad.Sprintf("(%v)", err))
			} else {
				progress("  %s %s %s\n", ui.StatusIcon(true), task.Name, ui.Subtle.Sprintf("%.2fs", elapsed.Seconds()))
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Failed counts results that did not succeed.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}
