package mock

import "github.com/fwojciec/shelf"

var _ shelf.Executor = (*Executor)(nil)

// Executor is a mock implementation of shelf.Executor.
type Executor struct {
	SubmitFn func(task func())
}

func (e *Executor) Submit(task func()) {
	e.SubmitFn(task)
}

// InlineExecutor returns an Executor that runs each task on the caller.
func InlineExecutor() *Executor {
	return &Executor{SubmitFn: func(task func()) { task() }}
}
