package envpool

import (
	"iblcache/ibl"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// workerDispatcher runs prefilter and lut jobs on a shared worker pool.
// Jobs must not dispatch themselves.
type workerDispatcher struct {
	pool worker.DynamicWorkerPool

	// held for reading while jobs are queued, stop takes it for writing
	mu      sync.RWMutex
	stopped bool

	idMu sync.Mutex
	ids  int
}

func newDispatcher(workers int) *workerDispatcher {
	return &workerDispatcher{
		pool: worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
}

func (d *workerDispatcher) nextIds(n int) int {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	first := d.ids
	d.ids += n
	return first
}

// Dispatch blocks until all jobs ran. Once stopped, jobs run on the calling goroutine.
func (d *workerDispatcher) Dispatch(jobs []func()) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		ibl.Sequential(jobs)
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(jobs))
	first := d.nextIds(len(jobs))
	for i, job := range jobs {
		d.pool.SubmitTask(worker.Task{
			ID: first + i,
			Do: func() (any, error) {
				defer wg.Done()
				job()
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// Stop waits for running dispatches and stops the workers.
func (d *workerDispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.pool.Stop()
}
