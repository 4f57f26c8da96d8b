package lines

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// DistanceMatrix computes the pairwise N×N distance matrix for a batch of
// segments under the given method. Segments are canonicalized once up front;
// only the upper triangle is computed and the symmetric storage supplies the
// mirror. The diagonal stays zero. Returns nil for an empty batch.
func DistanceMatrix(segments []Segment, method Method, params DistanceParams) (*mat.SymDense, error) {
	return distanceMatrix(segments, method, params, 1)
}

// ParallelDistanceMatrix is DistanceMatrix with the upper-triangle fill
// spread over the given number of worker goroutines. Cells are written to
// independent matrix elements so no synchronization is needed beyond the
// final join. workers < 2 degrades to the sequential path. The result is
// identical to DistanceMatrix.
func ParallelDistanceMatrix(segments []Segment, method Method, params DistanceParams, workers int) (*mat.SymDense, error) {
	return distanceMatrix(segments, method, params, workers)
}

func distanceMatrix(segments []Segment, method Method, params DistanceParams, workers int) (*mat.SymDense, error) {
	n := len(segments)
	if n == 0 {
		return nil, nil
	}

	canonical := make([]CanonicalLine, n)
	for i, s := range segments {
		canonical[i] = Canonical(s)
	}

	m := mat.NewSymDense(n, nil)

	// Methods that ignore the raw points are passed nil so they can never
	// trip a missing-points error.
	pointArg := func(i int) *Segment {
		if !method.NeedsPoints() {
			return nil
		}
		return &segments[i]
	}

	fillRow := func(i int) error {
		for j := i + 1; j < n; j++ {
			d, err := LineDistance(canonical[i], canonical[j], pointArg(i), pointArg(j), method, params)
			if err != nil {
				return fmt.Errorf("distance(%d,%d): %w", i, j, err)
			}
			m.SetSym(i, j, d)
		}
		return nil
	}

	if workers < 2 || n < 3 {
		for i := 0; i < n; i++ {
			if err := fillRow(i); err != nil {
				return nil, err
			}
		}
		return m, nil
	}

	if workers > n {
		workers = n
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	rows := make(chan int, n)
	for i := 0; i < n; i++ {
		rows <- i
	}
	close(rows)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				if err := fillRow(i); err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}
