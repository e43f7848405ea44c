package scheduler

import "errors"

var (
	// ErrSchedulerAlreadyRunning is returned when Start is called on a running scheduler
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")
)
