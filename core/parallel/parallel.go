// Package parallel provides the data-parallel loop driver used by training.
//
// A Loop splits the half-open index range [Start, Finish) into contiguous
// partitions of at most MaxIterationsPerThread indices, capped by a thread
// limit captured at construction. Every partition but the last runs on its
// own goroutine; the last runs on the calling goroutine. Run blocks until all
// partitions have finished, so each call is one phase with a join barrier.
//
// The driver owns no data. Callers must make sure that work for different
// indices touches disjoint memory; Slice hands out capacity-capped sub-slices
// so that a worker cannot grow into a neighbour's partition.
package parallel

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

// Range is one partition of a Loop: the indices [Start, End) owned by the
// goroutine with the given Index.
type Range struct {
	Index int
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Slice returns buf[r.Start:r.End] with its capacity capped at r.End.
func Slice[T any](buf []T, r Range) []T {
	return buf[r.Start:r.End:r.End]
}

// Loop is a parallel-for driver over [Start, Finish).
//
// Start, Finish and MaxIterationsPerThread may be changed between calls to
// retarget the same driver at another phase. The thread cap is fixed.
type Loop struct {
	Start                  int
	Finish                 int
	MaxIterationsPerThread int

	maxThreads int
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithMaxThreads sets the upper bound on concurrently running partitions.
// n <= 0 means runtime.NumCPU().
func WithMaxThreads(n int) LoopOption {
	return func(l *Loop) {
		l.maxThreads = n
	}
}

// NewLoop creates a driver for [start, finish) that hands at most
// maxIterationsPerThread indices to one goroutine. Bounds may be negative;
// only start > finish is rejected.
func NewLoop(start, finish, maxIterationsPerThread int, opts ...LoopOption) (*Loop, error) {
	l := &Loop{
		Start:                  start,
		Finish:                 finish,
		MaxIterationsPerThread: maxIterationsPerThread,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.maxThreads <= 0 {
		l.maxThreads = runtime.NumCPU()
	}
	if err := l.validate("parallel.NewLoop"); err != nil {
		return nil, err
	}
	return l, nil
}

// MaxThreads returns the thread cap captured at construction.
func (l *Loop) MaxThreads() int {
	return l.maxThreads
}

func (l *Loop) validate(op string) error {
	if l.Start > l.Finish {
		return errors.NewRangeError(op, l.Start, l.Finish)
	}
	if l.MaxIterationsPerThread < 1 {
		return errors.NewValidationError("maxIterationsPerThread", "must be at least 1", l.MaxIterationsPerThread)
	}
	return nil
}

// Partition computes the ranges Run would execute.
//
// The number of partitions is ceil(n / MaxIterationsPerThread) clamped to the
// thread cap. Sizes differ by at most one; the larger ones come first.
func (l *Loop) Partition() ([]Range, error) {
	if err := l.validate("parallel.Loop.Partition"); err != nil {
		return nil, err
	}

	n := l.Finish - l.Start
	if n == 0 {
		return nil, nil
	}

	needed := n / l.MaxIterationsPerThread
	if n%l.MaxIterationsPerThread != 0 {
		needed++
	}
	if needed > l.maxThreads {
		needed = l.maxThreads
	}

	portion := n / needed
	remainder := n % needed

	ranges := make([]Range, needed)
	cur := l.Start
	for k := range ranges {
		end := cur + portion
		if k < remainder {
			end++
		}
		ranges[k] = Range{Index: k, Start: cur, End: end}
		cur = end
	}
	return ranges, nil
}

// Run calls fn(i) exactly once for every i in [Start, Finish).
// Indices inside one partition are visited in increasing order.
//
// A panic inside fn is recovered and returned as *errors.PanicError after all
// partitions have finished. If several partitions panic, the one with the
// lowest index is reported.
func (l *Loop) Run(fn func(i int)) error {
	return l.RunRanges(func(r Range) {
		for i := r.Start; i < r.End; i++ {
			fn(i)
		}
	})
}

// RunRanges is like Run but hands each goroutine its whole partition.
func (l *Loop) RunRanges(fn func(r Range)) error {
	ranges, err := l.Partition()
	if err != nil {
		return err
	}
	return execute(ranges, fn)
}

// Reduce evaluates fn on every partition and sums the partial results in
// partition order, so the result only depends on the partition layout and
// not on goroutine scheduling.
func (l *Loop) Reduce(fn func(r Range) float64) (float64, error) {
	ranges, err := l.Partition()
	if err != nil {
		return 0, err
	}

	partials := make([]float64, len(ranges))
	if err := execute(ranges, func(r Range) {
		partials[r.Index] = fn(r)
	}); err != nil {
		return 0, err
	}

	var total float64
	for _, p := range partials {
		total += p
	}
	return total, nil
}

func execute(ranges []Range, fn func(r Range)) error {
	if len(ranges) == 0 {
		return nil
	}

	errs := make([]error, len(ranges))
	last := len(ranges) - 1

	var wg sync.WaitGroup
	for _, r := range ranges[:last] {
		wg.Add(1)
		go func(r Range) {
			defer wg.Done()
			errs[r.Index] = runRange(fn, r)
		}(r)
	}

	// The caller's goroutine takes the final partition.
	errs[last] = runRange(fn, ranges[last])
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func runRange(fn func(r Range), r Range) error {
	return errors.SafeExecute(fmt.Sprintf("parallel.Loop partition %d [%d, %d)", r.Index, r.Start, r.End), func() error {
		fn(r)
		return nil
	})
}

// Parallelize divides items across the available CPU cores and executes fn
// for each range (start, end) in parallel.
func Parallelize(items int, fn func(start, end int)) error {
	if items == 0 {
		return nil
	}

	numWorkers := runtime.NumCPU()
	chunkSize := (items + numWorkers - 1) / numWorkers

	l, err := NewLoop(0, items, chunkSize, WithMaxThreads(numWorkers))
	if err != nil {
		return err
	}
	return l.RunRanges(func(r Range) {
		fn(r.Start, r.End)
	})
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) error {
	if items <= threshold {
		return errors.SafeExecute("parallel.ParallelizeWithThreshold", func() error {
			fn(0, items)
			return nil
		})
	}
	return Parallelize(items, fn)
}
