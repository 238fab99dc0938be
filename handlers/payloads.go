package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/models"
)

// taskRequest is the body of POST /tasks and PATCH /tasks/{id}. The web
// client sends "" for cleared optional fields, so "" and null both clear.
type taskRequest struct {
	Title          *string                         `json:"title"`
	Description    *string                         `json:"description"`
	ProjectID      string                          `json:"project_id"`
	Status         models.TaskStatus               `json:"status"`
	Priority       *models.Priority                `json:"priority"`
	TaskType       *models.TaskType                `json:"task_type"`
	AssigneeID     models.Nullable[string]         `json:"assignee_id"`
	DueDate        models.Nullable[string]         `json:"due_date"`
	EstimatedHours models.Nullable[json.RawMessage] `json:"estimated_hours"`
	Version        int64                           `json:"version"`
}

func (req taskRequest) assignee() (models.Nullable[string], error) {
	if !req.AssigneeID.Set {
		return models.Nullable[string]{}, nil
	}
	id := strings.TrimSpace(req.AssigneeID.Value)
	if !req.AssigneeID.Valid || id == "" {
		return models.Null[string](), nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return models.Nullable[string]{}, models.ValidationError("Assignee must be a member of the project")
	}
	return models.Some(id), nil
}

func (req taskRequest) dueDate() (models.Nullable[time.Time], error) {
	if !req.DueDate.Set {
		return models.Nullable[time.Time]{}, nil
	}
	raw := strings.TrimSpace(req.DueDate.Value)
	if !req.DueDate.Valid || raw == "" {
		return models.Null[time.Time](), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.Some(t.UTC()), nil
		}
	}
	return models.Nullable[time.Time]{}, models.ValidationError("Invalid due_date %q, expected RFC 3339 or YYYY-MM-DD", raw)
}

// estimatedHours accepts a number or a numeric string.
func (req taskRequest) estimatedHours() (models.Nullable[float64], error) {
	if !req.EstimatedHours.Set {
		return models.Nullable[float64]{}, nil
	}
	raw := bytes.TrimSpace(req.EstimatedHours.Value)
	if !req.EstimatedHours.Valid || len(raw) == 0 {
		return models.Null[float64](), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return models.Null[float64](), nil
		}
		raw = []byte(s)
	}
	hours, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return models.Nullable[float64]{}, models.ValidationError("estimated_hours must be a number")
	}
	return models.Some(hours), nil
}

func (req taskRequest) newTask() (models.NewTask, error) {
	in := models.NewTask{ProjectID: strings.TrimSpace(req.ProjectID), Status: req.Status}
	if in.ProjectID != "" {
		if _, err := uuid.Parse(in.ProjectID); err != nil {
			return in, models.ValidationError("Invalid project_id")
		}
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}
	if req.TaskType != nil {
		in.TaskType = *req.TaskType
	}

	assignee, err := req.assignee()
	if err != nil {
		return in, err
	}
	due, err := req.dueDate()
	if err != nil {
		return in, err
	}
	hours, err := req.estimatedHours()
	if err != nil {
		return in, err
	}
	in.AssigneeID = assignee.Ptr()
	in.DueDate = due.Ptr()
	in.EstimatedHours = hours.Ptr()
	return in, nil
}

func (req taskRequest) patch() (models.TaskPatch, error) {
	p := models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		TaskType:    req.TaskType,
		Version:     req.Version,
	}
	var err error
	if p.AssigneeID, err = req.assignee(); err != nil {
		return p, err
	}
	if p.DueDate, err = req.dueDate(); err != nil {
		return p, err
	}
	if p.EstimatedHours, err = req.estimatedHours(); err != nil {
		return p, err
	}
	return p, nil
}

type statusRequest struct {
	Status  models.TaskStatus `json:"status"`
	Version int64             `json:"version"`
}

type commentRequest struct {
	Content string `json:"content"`
}
