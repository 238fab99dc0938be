package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/models"
	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

type TaskHandler struct {
	responder
	tasks    *services.TaskService
	comments *services.CommentService
}

func NewTaskHandler(tasks *services.TaskService, comments *services.CommentService, development bool) *TaskHandler {
	return &TaskHandler{responder: responder{development: development}, tasks: tasks, comments: comments}
}

// List serves GET /tasks with optional status, priority, type, project_id and q filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.TaskFilter{
		Status:    models.TaskStatus(q.Get("status")),
		Priority:  models.Priority(q.Get("priority")),
		TaskType:  models.TaskType(q.Get("type")),
		ProjectID: strings.TrimSpace(q.Get("project_id")),
		Query:     q.Get("q"),
	}
	if f.TaskType == "" {
		f.TaskType = models.TaskType(q.Get("task_type"))
	}
	if f.ProjectID != "" {
		if _, err := uuid.Parse(f.ProjectID); err != nil {
			h.writeError(w, r, models.ValidationError("Invalid project_id"))
			return
		}
	}

	tasks, err := h.tasks.ListVisibleTasks(r.Context(), currentUser(r).ID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, tasks)
}

func (h *TaskHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListMyTasks(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := req.newTask()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), currentUser(r).ID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Task")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	task, err := h.tasks.GetTask(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Task")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req taskRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Status != "" {
		h.writeError(w, r, models.ValidationError("Use PATCH /tasks/{id}/status to change the status"))
		return
	}
	patch, err := req.patch()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), id, currentUser(r).ID, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, task)
}

func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Task")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	task, err := h.tasks.ChangeStatus(r.Context(), id, currentUser(r).ID, req.Status, req.Version)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Task")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), id, currentUser(r).ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Task deleted")
}

func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Task")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	comments, err := h.comments.ListComments(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, comments)
}

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Task")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.comments.AddComment(r.Context(), id, currentUser(r).ID, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, comment)
}
