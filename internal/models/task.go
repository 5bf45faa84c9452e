package models

import "time"

type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateTaskRequest struct {
	Title string `json:"title"`
}

// UpdateTaskRequest carries the new completion state. Completed is a
// pointer so a missing field can be told apart from false.
type UpdateTaskRequest struct {
	Completed *bool `json:"completed"`
}
