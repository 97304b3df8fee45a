package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lookate/internal/logger"
	"lookate/internal/manager"
	"lookate/internal/models"
)

func listTasksHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tm.Snapshot())
	}
}

func addTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req models.CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		task, ok := tm.AddTask(req.Title)
		if !ok {
			// Пустой заголовок - не ошибка, список просто не меняется
			logger.Debug(r.Context(), "Пустой заголовок, задача не добавлена")
			writeJSON(w, http.StatusOK, tm.Snapshot())
			return
		}

		logger.Info(r.Context(), "Задача добавлена", "taskID", task.ID)
		writeJSON(w, http.StatusCreated, models.TaskResponse{Task: task})
	}
}

func toggleTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "task id must be an integer")
			return
		}

		tm.ToggleTask(id)
		writeJSON(w, http.StatusOK, tm.Snapshot())
	}
}

func progressHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tm.Progress())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(context.Background(), err, "Ошибка записи ответа")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
