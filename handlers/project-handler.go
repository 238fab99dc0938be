package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/models"
	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

type ProjectHandler struct {
	responder
	projects *services.ProjectService
	tasks    *services.TaskService
	activity *services.ActivityService
}

func NewProjectHandler(projects *services.ProjectService, tasks *services.TaskService, activity *services.ActivityService, development bool) *ProjectHandler {
	return &ProjectHandler{
		responder: responder{development: development},
		projects:  projects,
		tasks:     tasks,
		activity:  activity,
	}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.projects.ListProjectsForUser(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, list)
}

type projectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var name, description string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}

	project, err := h.projects.CreateProject(r.Context(), currentUser(r).ID, name, description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Project")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	project, err := h.projects.GetProject(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Project")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req projectRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	patch := models.ProjectPatch{Name: req.Name, Description: req.Description, IsActive: req.IsActive}
	project, err := h.projects.UpdateProject(r.Context(), id, currentUser(r).ID, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, project)
}

func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Project")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	members, err := h.projects.ListMembers(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, members)
}

type addMemberRequest struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Project")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req addMemberRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	actor := currentUser(r).ID
	var member models.Member
	switch {
	case req.UserID != "":
		if _, perr := uuid.Parse(req.UserID); perr != nil {
			h.writeError(w, r, models.NotFoundError("User not found"))
			return
		}
		member, err = h.projects.AddMember(r.Context(), id, actor, req.UserID, req.Role)
	case strings.TrimSpace(req.Email) != "":
		member, err = h.projects.AddMemberByEmail(r.Context(), id, actor, req.Email, req.Role)
	default:
		err = models.ValidationError("user_id or email is required")
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.Envelope{Success: true, Data: member, Message: "Member invited"})
}

func (h *ProjectHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Project")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	membership, err := h.projects.AcceptInvitation(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, membership)
}

func (h *ProjectHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Project")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tasks, err := h.tasks.ListProjectTasks(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, tasks)
}

func (h *ProjectHandler) Activity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Project")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, r, models.ValidationError("limit must be a non-negative integer"))
			return
		}
	}

	feed, err := h.activity.ListForProject(r.Context(), id, currentUser(r).ID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, feed)
}
