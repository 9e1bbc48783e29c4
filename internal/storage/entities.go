package storage

// TaskListFilter narrows ListTasks. Zero values match everything.
type TaskListFilter struct {
	Date      string
	Completed *bool
}
