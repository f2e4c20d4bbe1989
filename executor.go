package shelf

// Executor runs tasks on a bounded set of workers.
type Executor interface {
	// Submit schedules task. When no worker or queue slot is free the task
	// runs on the calling goroutine before Submit returns, so a submitted
	// task is never dropped.
	Submit(task func())
}
