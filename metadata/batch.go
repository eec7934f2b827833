package metadata

import (
	"context"
	"iter"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/internal/options"
)

// Result is one item of an ExtractAll batch: the input path plus either
// its record or the error that stopped it.
type Result struct {
	Path   string
	Record *Record
	Err    error
}

// BatchOption configures ExtractAll.
type BatchOption = options.Option[*batchConfig]

type batchConfig struct {
	concurrency int
	fileTimeout time.Duration
}

func newBatchConfig() *batchConfig {
	return &batchConfig{concurrency: runtime.NumCPU()}
}

// WithConcurrency bounds how many files are processed at once. Values
// below one keep the default, runtime.NumCPU.
func WithConcurrency(n int) BatchOption {
	return options.NoError(func(cfg *batchConfig) {
		if n >= 1 {
			cfg.concurrency = n
		}
	})
}

// WithFileTimeout bounds the wall time spent on each file. An item whose
// extraction overruns surfaces context.DeadlineExceeded as its Err. The
// check is coarse: it runs between pipeline stages, never inside one.
func WithFileTimeout(d time.Duration) BatchOption {
	return options.NoError(func(cfg *batchConfig) {
		if d > 0 {
			cfg.fileTimeout = d
		}
	})
}

// ExtractAll extracts metadata from many files through a bounded worker
// pool and yields one Result per path, strictly in input order regardless
// of completion order.
//
// A failing file surfaces as a Result with Err set and never aborts the
// rest of the batch; cancelling ctx marks the remaining items failed with
// its error. Breaking out of the range cancels outstanding work. The
// sequence is restartable: each range call re-runs the whole batch.
//
// Parameters:
//   - ctx: cancellation scope for the whole batch
//   - paths: files to extract, one Result each
//   - opts: WithConcurrency, WithFileTimeout
//
// Returns:
//   - iter.Seq[Result]: results in input order
func ExtractAll(ctx context.Context, paths []string, opts ...BatchOption) iter.Seq[Result] {
	cfg := newBatchConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return func(yield func(Result) bool) {
			yield(Result{Err: err})
		}
	}

	return func(yield func(Result) bool) {
		// One buffered slot per path so workers never block on delivery
		// and completion order cannot disturb yield order.
		slots := make([]chan Result, len(paths))
		for i := range slots {
			slots[i] = make(chan Result, 1)
		}

		gctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(gctx)
		g.SetLimit(cfg.concurrency)

		// The scheduler fills every slot exactly once: through a pool
		// worker while the batch is live, or directly with the context
		// error once it is not. g.Go blocks when the pool is full, which
		// is what bounds the number of open files.
		go func() {
			for i, path := range paths {
				if err := gctx.Err(); err != nil {
					slots[i] <- Result{Path: path, Err: err}
					continue
				}

				g.Go(func() error {
					slots[i] <- extractOne(gctx, path, cfg.fileTimeout)
					return nil
				})
			}
		}()

		for i := range slots {
			if !yield(<-slots[i]) {
				return
			}
		}
	}
}

// extractOne runs the open-extract-close pipeline for one file. Deadline
// checks sit between stages; a stage itself is never interrupted.
func extractOne(ctx context.Context, path string, timeout time.Duration) Result {
	res := Result{Path: path}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	r, err := container.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() { _ = r.Close() }()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	rec, err := Extract(r)
	if err != nil {
		res.Err = err
		return res
	}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	res.Record = rec

	return res
}
