package dispatch

import (
	"sync"

	"github.com/scttfrdmn/awsmp/pkg/matrix"
)

// Future is the handle of one submitted task.
type Future struct {
	params matrix.Params
	done   chan struct{}
	value  any
	err    error
}

func newFuture(p matrix.Params) *Future {
	return &Future{params: p, done: make(chan struct{})}
}

func (f *Future) resolve(v any, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Params returns the parameter set the task was submitted with.
func (f *Future) Params() matrix.Params { return f.params }

// Done is closed once the task has finished.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result blocks until the task has finished and returns its outcome.
func (f *Future) Result() (any, error) {
	<-f.done
	return f.value, f.err
}

// AsCompleted yields futures as they finish, not in submission order. The
// channel is closed after the last one.
func AsCompleted(futures []*Future) <-chan *Future {
	out := make(chan *Future, len(futures))

	var wg sync.WaitGroup
	wg.Add(len(futures))
	for _, f := range futures {
		go func(f *Future) {
			defer wg.Done()
			<-f.done
			out <- f
		}(f)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Handles returns the completion channels of futures, in order.
func Handles(futures []*Future) []<-chan struct{} {
	handles := make([]<-chan struct{}, len(futures))
	for i, f := range futures {
		handles[i] = f.done
	}
	return handles
}
