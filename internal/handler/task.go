package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/priority"
	"github.com/dukerupert/planner/internal/state"
)

type TaskHandler struct {
	planner Planner
	logger  *slog.Logger
}

func NewTaskHandler(p Planner, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{planner: p, logger: logger}
}

type taskRequest struct {
	Title          string          `json:"title"`
	Course         string          `json:"course"`
	DueDate        string          `json:"due_date"`
	DueTime        string          `json:"due_time"`
	Type           model.TaskType  `json:"type"`
	Description    string          `json:"description"`
	ManualPriority *model.Priority `json:"manual_priority"`
}

var validTaskTypes = map[model.TaskType]bool{
	"":                   true,
	model.TaskAssignment: true,
	model.TaskProject:    true,
	model.TaskExam:       true,
}

func (req *taskRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	switch {
	case req.Title == "":
		return "title is required"
	case !validDate(req.DueDate, false):
		return "due_date must be YYYY-MM-DD"
	case !validClock(req.DueTime):
		return "due_time must be HH:MM"
	case !validTaskTypes[req.Type]:
		return "type must be assignment, project, or exam"
	case req.ManualPriority != nil && !req.ManualPriority.Valid():
		return "manual_priority must be high, medium, or low"
	}
	return ""
}

func (req taskRequest) task() model.Task {
	return model.Task{
		Title:          req.Title,
		Course:         req.Course,
		DueDate:        req.DueDate,
		DueTime:        req.DueTime,
		Type:           req.Type,
		Description:    req.Description,
		ManualPriority: req.ManualPriority,
	}
}

func findTask(tasks []model.Task, id int64) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// List handles GET /api/tasks. Tasks come back in urgency order unless
// ?sort=created; ?status=pending or ?status=completed filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.planner.Snapshot()
	tasks := snap.Tasks
	if r.URL.Query().Get("sort") != "created" {
		tasks = priority.Sort(tasks, h.planner.Now())
	}

	status := r.URL.Query().Get("status")
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		switch {
		case status == "pending" && t.Completed:
			continue
		case status == "completed" && !t.Completed:
			continue
		}
		out = append(out, t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	t, ok := findTask(h.planner.Snapshot().Tasks, id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	snap, ok := dispatch(w, h.planner, h.logger, state.AddTask{Task: req.task()}, "create task")
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, snap.Tasks[len(snap.Tasks)-1])
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t := req.task()
	t.ID = id
	snap, ok := dispatch(w, h.planner, h.logger, state.UpdateTask{Task: t}, "update task")
	if !ok {
		return
	}
	if req.ManualPriority != nil {
		if snap, ok = dispatch(w, h.planner, h.logger, state.LockPriority{ID: id, Level: *req.ManualPriority}, "lock priority"); !ok {
			return
		}
	}
	updated, _ := findTask(snap.Tasks, id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if _, ok := dispatch(w, h.planner, h.logger, state.DeleteTask{ID: id}, "delete task"); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id int64) state.Action { return state.ToggleTask{ID: id} }, "toggle task")
}

type lockRequest struct {
	Priority model.Priority `json:"priority"`
}

// Lock handles PUT /api/tasks/{id}/priority.
func (h *TaskHandler) Lock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "priority must be high, medium, or low")
		return
	}
	h.mutate(w, r, func(id int64) state.Action { return state.LockPriority{ID: id, Level: req.Priority} }, "lock priority")
}

// Unlock handles DELETE /api/tasks/{id}/priority.
func (h *TaskHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id int64) state.Action { return state.UnlockPriority{ID: id} }, "unlock priority")
}

// mutate applies an id-addressed action and responds with the task.
func (h *TaskHandler) mutate(w http.ResponseWriter, r *http.Request, action func(int64) state.Action, what string) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	snap, ok := dispatch(w, h.planner, h.logger, action(id), what)
	if !ok {
		return
	}
	t, _ := findTask(snap.Tasks, id)
	writeJSON(w, http.StatusOK, t)
}

type subtaskRequest struct {
	Title string `json:"title"`
}

func (h *TaskHandler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	var req subtaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	snap, ok := dispatch(w, h.planner, h.logger, state.AddSubtask{TaskID: id, Title: req.Title}, "create subtask")
	if !ok {
		return
	}
	t, _ := findTask(snap.Tasks, id)
	writeJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	var req subtaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	h.mutateSubtask(w, r, func(taskID, subID int64) state.Action {
		return state.UpdateSubtask{TaskID: taskID, SubtaskID: subID, Title: req.Title}
	}, "update subtask")
}

func (h *TaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	h.mutateSubtask(w, r, func(taskID, subID int64) state.Action {
		return state.DeleteSubtask{TaskID: taskID, SubtaskID: subID}
	}, "delete subtask")
}

func (h *TaskHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	h.mutateSubtask(w, r, func(taskID, subID int64) state.Action {
		return state.ToggleSubtask{TaskID: taskID, SubtaskID: subID}
	}, "toggle subtask")
}

func (h *TaskHandler) mutateSubtask(w http.ResponseWriter, r *http.Request, action func(taskID, subID int64) state.Action, what string) {
	taskID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	subID, err := parsePathInt(r, "subtask_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subtask id")
		return
	}
	snap, ok := dispatch(w, h.planner, h.logger, action(taskID, subID), what)
	if !ok {
		return
	}
	t, _ := findTask(snap.Tasks, taskID)
	writeJSON(w, http.StatusOK, t)
}
