package ibl

import (
	"runtime"
	"sync"
)

// Dispatcher runs all jobs and returns once every one of them has finished.
type Dispatcher func(jobs []func())

func Sequential(jobs []func()) {
	for _, job := range jobs {
		job()
	}
}

// Concurrent returns a dispatcher that runs up to workers jobs at once.
func Concurrent(workers int) Dispatcher {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return func(jobs []func()) {
		var wg sync.WaitGroup
		queue := make(chan func())
		for w := 0; w < workers && w < len(jobs); w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for job := range queue {
					job()
				}
			}()
		}
		for _, job := range jobs {
			queue <- job
		}
		close(queue)
		wg.Wait()
	}
}
