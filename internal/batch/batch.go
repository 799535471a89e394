// Package batch schedules several project files concurrently without
// touching the store.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/aristath/miniplan/internal/logging"
	"github.com/aristath/miniplan/internal/projectfile"
	"github.com/aristath/miniplan/internal/scheduler"
)

// FileResult is the outcome for one file. Exactly one of Result and Err is set.
type FileResult struct {
	Path       string
	Activities []*scheduler.Activity // Scheduled, in topological order
	Result     *scheduler.Result
	Err        error
}

// ScheduleFiles reads and schedules every path with at most limit files in
// flight (limit <= 0 means 4). Each file is its own network. Per-file errors
// are reported in the results, which follow the order of paths; the returned
// error is only set when ctx is cancelled.
func ScheduleFiles(ctx context.Context, paths []string, limit int) ([]FileResult, error) {
	if limit <= 0 {
		limit = 4
	}
	logger := logging.FromContext(ctx)

	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: fmt.Errorf("not scheduled: %w", err)}
				return err
			}

			results[i] = scheduleFile(path)
			if results[i].Err != nil {
				logger.Debug("file rejected", "path", path, "err", results[i].Err)
			} else {
				logger.Debug("file scheduled", "path", path, "duration", results[i].Result.Duration)
			}
			// Per-file failures never cancel the others.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func scheduleFile(path string) FileResult {
	acts, err := projectfile.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	network := make(scheduler.Activities, len(acts))
	for _, a := range acts {
		network[a.ID] = a
	}

	res, err := scheduler.Compute(network)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	res.Apply(network)

	ordered := make([]*scheduler.Activity, 0, len(res.Order))
	for _, id := range res.Order {
		ordered = append(ordered, network[id])
	}
	return FileResult{Path: path, Activities: ordered, Result: res}
}
