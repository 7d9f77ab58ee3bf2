package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/scttfrdmn/awsmp/pkg/matrix"
)

// Func is the caller-supplied function fanned out over the matrix. It
// receives exactly one parameter set per call.
type Func func(ctx context.Context, p matrix.Params) (any, error)

// Task names a Func. The name is what a child process uses to find the
// function again, so tasks run with UseProcesses must be registered.
type Task struct {
	Name string
	Func Func
}

// TaskError captures the failure of one task.
type TaskError struct {
	Task   string
	Params matrix.Params
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed for %s: %v", e.Task, e.Params, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// PanicError is returned in place of a panic raised by a task function.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// callSafely runs fn, turning a panic into a *PanicError.
func callSafely(ctx context.Context, fn Func, p matrix.Params) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &PanicError{Value: r}
		}
	}()
	return fn(ctx, p)
}

// protect wraps fn so that panics and errors come back as *TaskError.
func protect(name string, fn Func) Func {
	return func(ctx context.Context, p matrix.Params) (any, error) {
		v, err := callSafely(ctx, fn, p)
		if err != nil {
			return nil, &TaskError{Task: name, Params: p, Err: err}
		}
		return v, nil
	}
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Task)
)

// Register makes a task available by name, which process workers need.
// It panics if the name is empty, the function is nil, or the name is
// already taken.
func Register(task Task) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if task.Name == "" {
		panic("dispatch: Register with empty task name")
	}
	if task.Func == nil {
		panic("dispatch: Register task " + task.Name + " with nil func")
	}
	if _, dup := registry[task.Name]; dup {
		panic("dispatch: Register called twice for task " + task.Name)
	}
	registry[task.Name] = task
}

// Lookup returns the registered task called name.
func Lookup(name string) (Task, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	task, ok := registry[name]
	return task, ok
}

// Registered returns the sorted names of all registered tasks.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
