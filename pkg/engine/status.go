package engine

// Status is the lifecycle state of a task.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	if s < StatusPending || s > StatusCancelled {
		return "Unknown"
	}
	return [...]string{"Pending", "Running", "Completed", "Failed", "Cancelled"}[s]
}

// Terminal reports whether the task can no longer change state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}
