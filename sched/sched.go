// Package sched provides the data-parallel iterator the conversion kernels
// use for elementwise passes over flat tensor storage, plus heap-driven GC
// pacing for runs over large tensors. Inter-party communication stays
// strictly synchronous; only the CPU-bound work between barriers fans out
// across threads.
package sched

import (
	"runtime"
	"sync"

	"github.com/raulk/go-watchdog"
	"go.dedis.ch/onet/v3/log"
)

// minChunk keeps tiny tensors on the calling goroutine; spawning workers
// for a handful of elements costs more than the loop itself.
const minChunk = 4096

// For runs fn over the index range [0, n) split into contiguous chunks, one
// chunk per worker. fn must be safe to call concurrently on disjoint
// ranges. Small ranges run inline on the caller.
func For(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// Init installs the heap-driven watchdog so the GC keeps pace with the
// large intermediate tensors the prefix-adder levels allocate between
// barriers. memoryLimit is in bytes; zero disables the watchdog. The
// returned stop function tears the policy down.
func Init(memoryLimit uint64) func() {
	if memoryLimit == 0 {
		return func() {}
	}
	err, stopFn := watchdog.HeapDriven(memoryLimit, 40, watchdog.NewAdaptivePolicy(0.5))
	if err != nil {
		log.Error("sched: watchdog init failed:", err)
		return func() {}
	}
	return stopFn
}
