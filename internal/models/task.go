package models

import "lookate/internal/manager"

// CreateTaskRequest - тело POST /tasks. Клиент передает только заголовок.
type CreateTaskRequest struct {
	Title string `json:"title"`
}

type TaskResponse struct {
	Task manager.Task `json:"task"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
