package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/models"
)

type TaskService struct {
	tasks         TaskStore
	projects      ProjectStore
	notifications *NotificationService
	activity      *ActivityService
}

func NewTaskService(tasks TaskStore, projects ProjectStore, notifications *NotificationService, activity *ActivityService) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, notifications: notifications, activity: activity}
}

func (s *TaskService) CreateTask(ctx context.Context, actorID string, in models.NewTask) (models.TaskView, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return models.TaskView{}, models.ValidationError("Task title is required")
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return models.TaskView{}, models.ValidationError("Project ID is required")
	}
	if in.Status == "" {
		in.Status = models.StatusNew
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if in.TaskType == "" {
		in.TaskType = models.TypeTask
	}
	if err := validateTaskEnums(&in.Status, &in.Priority, &in.TaskType); err != nil {
		return models.TaskView{}, err
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return models.TaskView{}, models.ValidationError("Estimated hours cannot be negative")
	}

	if _, err := requireMember(ctx, s.projects, in.ProjectID, actorID); err != nil {
		return models.TaskView{}, err
	}
	if in.AssigneeID != nil {
		if err := s.requireAssignable(ctx, in.ProjectID, *in.AssigneeID); err != nil {
			return models.TaskView{}, err
		}
	}

	ts := nowUTC()
	task := models.Task{
		ID:             uuid.NewString(),
		ProjectID:      in.ProjectID,
		Title:          in.Title,
		Description:    strings.TrimSpace(in.Description),
		Status:         in.Status,
		Priority:       in.Priority,
		TaskType:       in.TaskType,
		AssigneeID:     in.AssigneeID,
		CreatedByID:    actorID,
		DueDate:        utcPtr(in.DueDate),
		EstimatedHours: in.EstimatedHours,
		Version:        1,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if task.Status == models.StatusDone {
		task.CompletedAt = &ts
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return models.TaskView{}, fmt.Errorf("create task: %w", err)
	}

	view, err := s.tasks.GetView(ctx, task.ID)
	if err != nil {
		return models.TaskView{}, fmt.Errorf("load task: %w", err)
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created in project %s", task.ID, task.ProjectID)
	s.notifications.notifyTaskAssigned(ctx, view)
	s.activity.Record(ctx, view.ProjectID, actorID, models.ActivityCreateTask, &view.ID, view.Title)
	return view, nil
}

func validateTaskEnums(status *models.TaskStatus, priority *models.Priority, typ *models.TaskType) error {
	if status != nil && !status.Valid() {
		return models.ValidationError("Invalid status %q", *status)
	}
	if priority != nil && !priority.Valid() {
		return models.ValidationError("Invalid priority %q", *priority)
	}
	if typ != nil && !typ.Valid() {
		return models.ValidationError("Invalid task type %q", *typ)
	}
	return nil
}

func (s *TaskService) requireAssignable(ctx context.Context, projectID, userID string) error {
	if _, err := s.projects.GetMembership(ctx, projectID, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ValidationError("Assignee must be a member of the project")
		}
		return err
	}
	return nil
}

// loadForMember fetches a task and the caller's membership in its project.
func (s *TaskService) loadForMember(ctx context.Context, taskID, userID string) (models.Task, models.Membership, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Task{}, models.Membership{}, models.NotFoundError("Task not found")
		}
		return models.Task{}, models.Membership{}, fmt.Errorf("get task: %w", err)
	}
	m, err := requireMember(ctx, s.projects, task.ProjectID, userID)
	if err != nil {
		return models.Task{}, models.Membership{}, err
	}
	return task, m, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID, userID string) (models.TaskView, error) {
	if _, _, err := s.loadForMember(ctx, taskID, userID); err != nil {
		return models.TaskView{}, err
	}
	return s.tasks.GetView(ctx, taskID)
}

// UpdateTask applies a partial update. Status is changed only through ChangeStatus.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID string, patch models.TaskPatch) (models.TaskView, error) {
	if patch.Empty() {
		return models.TaskView{}, models.ValidationError("No fields to update")
	}
	if err := validateTaskEnums(nil, patch.Priority, patch.TaskType); err != nil {
		return models.TaskView{}, err
	}

	task, _, err := s.loadForMember(ctx, taskID, actorID)
	if err != nil {
		return models.TaskView{}, err
	}
	if patch.Version != 0 && patch.Version != task.Version {
		return models.TaskView{}, models.ConflictError("Task was modified by someone else, reload and try again")
	}
	expected := task.Version
	previousAssignee := task.AssigneeID

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.TaskView{}, models.ValidationError("Task title cannot be empty")
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.TaskType != nil {
		task.TaskType = *patch.TaskType
	}
	if patch.DueDate.Set {
		task.DueDate = utcPtr(patch.DueDate.Ptr())
	}
	if patch.EstimatedHours.Set {
		if patch.EstimatedHours.Valid && patch.EstimatedHours.Value < 0 {
			return models.TaskView{}, models.ValidationError("Estimated hours cannot be negative")
		}
		task.EstimatedHours = patch.EstimatedHours.Ptr()
	}
	if patch.AssigneeID.Set {
		if patch.AssigneeID.Valid {
			if err := s.requireAssignable(ctx, task.ProjectID, patch.AssigneeID.Value); err != nil {
				return models.TaskView{}, err
			}
		}
		task.AssigneeID = patch.AssigneeID.Ptr()
	}

	if _, err := s.save(ctx, task, expected); err != nil {
		return models.TaskView{}, err
	}

	view, err := s.tasks.GetView(ctx, taskID)
	if err != nil {
		return models.TaskView{}, fmt.Errorf("load task: %w", err)
	}
	if assigneeChanged(previousAssignee, view.AssigneeID) {
		s.notifications.notifyTaskAssigned(ctx, view)
	}
	return view, nil
}

func assigneeChanged(before, after *string) bool {
	if after == nil {
		return false
	}
	return before == nil || *before != *after
}

// ChangeStatus moves a task to any status. Repeating the current status is a
// no-op with no side effects.
func (s *TaskService) ChangeStatus(ctx context.Context, taskID, actorID string, status models.TaskStatus, version int64) (models.TaskView, error) {
	if !status.Valid() {
		return models.TaskView{}, models.ValidationError("Invalid status %q", status)
	}

	task, _, err := s.loadForMember(ctx, taskID, actorID)
	if err != nil {
		return models.TaskView{}, err
	}
	if version != 0 && version != task.Version {
		return models.TaskView{}, models.ConflictError("Task was modified by someone else, reload and try again")
	}
	if task.Status == status {
		return s.tasks.GetView(ctx, taskID)
	}

	previous := task.Status
	task.Status = status
	if status == models.StatusDone {
		completed := nowUTC()
		task.CompletedAt = &completed
	} else {
		task.CompletedAt = nil
	}

	if _, err := s.save(ctx, task, task.Version); err != nil {
		return models.TaskView{}, err
	}

	view, err := s.tasks.GetView(ctx, taskID)
	if err != nil {
		return models.TaskView{}, fmt.Errorf("load task: %w", err)
	}

	logging.Logger.Infof("Event ID: TASK_STATUS_CHANGED, Description: Task %s moved from %s to %s", taskID, previous, status)
	if status == models.StatusDone {
		s.notifications.notifyTaskCompleted(ctx, view, actorID)
	}
	s.activity.Record(ctx, view.ProjectID, actorID, models.ActivityChangeTaskStatus, &view.ID,
		fmt.Sprintf("%s: %s -> %s", view.Title, previous, status))
	return view, nil
}

func (s *TaskService) save(ctx context.Context, task models.Task, expected int64) (models.Task, error) {
	saved, err := s.tasks.Update(ctx, task, expected)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			return models.Task{}, models.ConflictError("Task was modified by someone else, reload and try again")
		case errors.Is(err, models.ErrNotFound):
			return models.Task{}, models.NotFoundError("Task not found")
		}
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return saved, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID string) error {
	task, m, err := s.loadForMember(ctx, taskID, actorID)
	if err != nil {
		return err
	}
	if !m.Role.CanManage() && task.CreatedByID != actorID {
		return models.ForbiddenError("Only the project owner, a manager or the task creator can delete this task")
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NotFoundError("Task not found")
		}
		return fmt.Errorf("delete task: %w", err)
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by %s", taskID, actorID)
	s.activity.Record(ctx, task.ProjectID, actorID, models.ActivityDeleteTask, &task.ID, task.Title)
	return nil
}

func (s *TaskService) ListMyTasks(ctx context.Context, userID string) ([]models.TaskView, error) {
	return s.tasks.ListAssigned(ctx, userID)
}

func (s *TaskService) ListProjectTasks(ctx context.Context, projectID, userID string) ([]models.TaskView, error) {
	if _, err := requireMember(ctx, s.projects, projectID, userID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) ListVisibleTasks(ctx context.Context, userID string, f models.TaskFilter) ([]models.TaskView, error) {
	var status *models.TaskStatus
	if f.Status != "" {
		status = &f.Status
	}
	var priority *models.Priority
	if f.Priority != "" {
		priority = &f.Priority
	}
	var typ *models.TaskType
	if f.TaskType != "" {
		typ = &f.TaskType
	}
	if err := validateTaskEnums(status, priority, typ); err != nil {
		return nil, err
	}
	return s.tasks.ListVisible(ctx, userID, f)
}
