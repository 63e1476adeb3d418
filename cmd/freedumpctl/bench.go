package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ringvault/freedump/pooledalloc"
)

const defaultBenchIterations = 200_000

// cmdBench runs a concurrent stress pass modelled on spec.md §8
// scenario 6: four goroutines, each running alloc/free pairs through the
// same pooledalloc.Allocator, fanned out and joined with
// golang.org/x/sync/errgroup rather than a raw sync.WaitGroup.
func cmdBench(cfg Config, out, errOut io.Writer, args []string) int {
	iterations := defaultBenchIterations
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintln(errOut, "error: bench iterations must be a positive integer")
			return 2
		}
		iterations = n
	}

	logger := zerolog.Nop()
	if cfg.Verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: errOut}).With().Timestamp().Logger()
	}

	host := newSimHost()
	alloc := pooledalloc.New(cfg.Buckets, host.alloc, host.free, pooledalloc.WithLogger(logger))

	const workers = 4
	perWorker := iterations / workers

	var g errgroup.Group
	start := time.Now()

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				size := uintptr(1) << uint(i%cfg.Buckets)
				addr := alloc.Alloc(1, size)
				alloc.Free(addr)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	elapsed := time.Since(start)
	total := workers * perWorker
	fmt.Fprintf(out, "%d alloc/free pairs across %d goroutines in %s (%.0f ops/sec)\n",
		total, workers, elapsed, float64(total)/elapsed.Seconds())

	alloc.Clear()
	return 0
}
