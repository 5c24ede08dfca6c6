package scoring

import "sync"

// forEachIndex calls fn for every index in [0, n), spreading contiguous
// chunks over at most workers goroutines. fn must only write to state owned
// by its index.
func forEachIndex(n, workers int, fn func(i int)) {
	if workers <= 1 || n < 2 {
		for i := range n {
			fn(i)
		}
		return
	}

	workers = min(workers, n)
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
