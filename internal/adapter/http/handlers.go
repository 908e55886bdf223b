// Package http provides the REST API handlers and middleware for Dayplan.
package http

import (
	"net/http"
	"strings"

	"github.com/dayplanhq/dayplan/internal/domain/task"
	"github.com/dayplanhq/dayplan/internal/middleware"
	"github.com/dayplanhq/dayplan/internal/service"
)

// Handlers bundles the services exposed over HTTP.
type Handlers struct {
	Auth     *service.AuthService
	Tasks    *service.TaskService
	Commands *service.CommandService
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(auth *service.AuthService, tasks *service.TaskService, commands *service.CommandService) *Handlers {
	return &Handlers{Auth: auth, Tasks: tasks, Commands: commands}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateTask handles POST /api/v1/tasks
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	req, ok := readJSON[task.CreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tasks.Create(r.Context(), req, u.ID)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListTasks handles GET /api/v1/tasks with an optional ?state= filter.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	var state *task.State
	if raw := r.URL.Query().Get("state"); raw != "" {
		parsed, err := task.ParseState(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		state = &parsed
	}

	tasks, err := h.Tasks.List(r.Context(), u.ID, state)
	if err != nil {
		writeDomainError(w, err, "tasks not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/tasks/{id}
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	t, err := h.Tasks.Get(r.Context(), urlParam(r, "id"), u.ID)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTask handles PUT /api/v1/tasks/{id}
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	req, ok := readJSON[task.UpdateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tasks.Update(r.Context(), urlParam(r, "id"), req, u.ID)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/v1/tasks/{id}
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	if err := h.Tasks.Delete(r.Context(), urlParam(r, "id"), u.ID); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commandRequest struct {
	Command string `json:"command"`
}

// RunCommand handles POST /api/v1/tasks/ai-command
//
// The command pipeline never fails outright; failures come back as an
// unsuccessful result, so this endpoint always returns 200.
func (h *Handlers) RunCommand(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	req, ok := readJSON[commandRequest](w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}

	result := h.Commands.Process(r.Context(), req.Command, u.ID)
	writeJSON(w, http.StatusOK, result)
}

type transitionsResponse struct {
	States      []task.State                `json:"states"`
	Transitions map[task.State][]task.State `json:"transitions"`
	Rules       []string                    `json:"rules"`
}

// StateTransitions handles GET /api/v1/tasks/states/transitions
func (h *Handlers) StateTransitions(w http.ResponseWriter, _ *http.Request) {
	transitions := make(map[task.State][]task.State)
	for _, s := range task.States() {
		transitions[s] = s.ValidTransitions()
	}

	writeJSON(w, http.StatusOK, transitionsResponse{
		States:      task.States(),
		Transitions: transitions,
		Rules: []string{
			"Tasks start in 'Not Started'",
			"'Not Started' can only transition to 'In Progress'",
			"'In Progress' can only transition to 'Completed'",
			"'Completed' is final - no further transitions allowed",
		},
	})
}
