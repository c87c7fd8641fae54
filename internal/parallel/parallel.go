package parallel

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/msalah0e/tripgraph/internal/ui"
	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of a parallel task.
type Result struct {
	Name    string
	OK      bool
	Err     error
	Output  string
	Elapsed time.Duration
}

// Task is a function that runs in parallel.
type Task struct {
	Name string
	Fn   func(ctx context.Context) (string, error)
}

// Run executes tasks in parallel with the given concurrency limit, printing
// one line per finished task to w. Results are returned in submission order.
func Run(ctx context.Context, w io.Writer, tasks []Task, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 4
	}

	results := make([]Result, len(tasks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			start := time.Now()
			output, err := task.Fn(gctx)
			elapsed := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			results[i] = Result{Name: task.Name, OK: err == nil, Err: err, Output: output, Elapsed: elapsed}
			if err != nil {
				fmt.Fprintf(w, "  %s %-10s %s\n", ui.StatusIcon(false), task.Name, ui.Bad.Sprint(err))
				return nil
			}
			line := ui.Subtle.Sprintf("%dms", elapsed.Milliseconds())
			if output = strings.TrimSpace(output); output != "" {
				line = truncateLines(output, 1)[0] + "  " + line
			}
			fmt.Fprintf(w, "  %s %-10s %s\n", ui.StatusIcon(true), task.Name, line)
			return nil // collect results instead of failing the group
		})
	}

	_ = g.Wait()
	return results
}

// Failed counts the results that did not succeed.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}

// truncateLines splits text into lines and returns at most n lines.
func truncateLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return lines
	}
	out := lines[:n]
	out = append(out, fmt.Sprintf("... (%d more lines)", len(lines)-n))
	return out
}
