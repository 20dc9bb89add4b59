package utils

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallelize splits the half-open range [0, n) into one chunk per CPU and
// runs work on each chunk concurrently, blocking until all chunks are done.
//
// Every chunk writes a disjoint output range, so callers do not need any
// additional synchronization as long as work touches only its own indices.
func Parallelize(n int, work func(start, end int)) {
	nbTasks := runtime.NumCPU()
	if nbTasks > n {
		nbTasks = n
	}
	if nbTasks <= 1 {
		work(0, n)
		return
	}

	var g errgroup.Group
	chunkSize := n / nbTasks
	extra := n - nbTasks*chunkSize

	start := 0
	for i := 0; i < nbTasks; i++ {
		end := start + chunkSize
		if i < extra {
			end++
		}
		s, e := start, end
		g.Go(func() error {
			work(s, e)
			return nil
		})
		start = end
	}
	// work funcs return no error; Wait only joins the goroutines
	_ = g.Wait()
}
