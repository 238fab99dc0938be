package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LepeyevaEmiliya/projects/models"
)

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `t.id, t.project_id, t.title, t.description, t.status, t.priority, t.task_type,
	t.assignee_id, t.created_by_id, t.due_date, t.estimated_hours, t.completed_at, t.version,
	t.created_at, t.updated_at`

const taskViewSelect = `SELECT ` + taskColumns + `,
	p.name AS project_name, a.name AS assignee_name, c.name AS created_by_name
FROM tasks t
JOIN projects p ON p.id = t.project_id
LEFT JOIN users a ON a.id = t.assignee_id
JOIN users c ON c.id = t.created_by_id`

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	q := r.db.conn.Rebind(`
		INSERT INTO tasks (id, project_id, title, description, status, priority, task_type, assignee_id,
			created_by_id, due_date, estimated_hours, completed_at, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.conn.ExecContext(ctx, q,
		t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.TaskType, t.AssigneeID,
		t.CreatedByID, t.DueDate, t.EstimatedHours, t.CompletedAt, t.Version, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.ErrNotFound
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	q := r.db.conn.Rebind(`SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = ?`)
	if err := r.db.conn.GetContext(ctx, &t, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, models.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) GetView(ctx context.Context, id string) (models.TaskView, error) {
	var t models.TaskView
	if err := r.db.conn.GetContext(ctx, &t, r.db.conn.Rebind(taskViewSelect+` WHERE t.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TaskView{}, models.ErrNotFound
		}
		return models.TaskView{}, fmt.Errorf("get task view: %w", err)
	}
	return t, nil
}

// Update writes every mutable column of t, provided the stored version still
// equals expectedVersion. A lost race returns models.ErrConflict.
func (r *TaskRepository) Update(ctx context.Context, t models.Task, expectedVersion int64) (models.Task, error) {
	t.UpdatedAt = now()
	q := r.db.conn.Rebind(`
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, task_type = ?, assignee_id = ?,
		    due_date = ?, estimated_hours = ?, completed_at = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`)

	res, err := r.db.conn.ExecContext(ctx, q,
		t.Title, t.Description, t.Status, t.Priority, t.TaskType, t.AssigneeID,
		t.DueDate, t.EstimatedHours, t.CompletedAt, t.UpdatedAt, t.ID, expectedVersion)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Task{}, models.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}

	if affected(res) == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return models.Task{}, err
		}
		return models.Task{}, models.ErrConflict
	}

	t.Version = expectedVersion + 1
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, r.db.conn.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected(res) == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]models.TaskView, error) {
	return r.list(ctx, taskViewSelect+` WHERE t.project_id = ? ORDER BY t.created_at DESC`, projectID)
}

// ListAssigned returns the user's assigned tasks in projects they still belong to.
func (r *TaskRepository) ListAssigned(ctx context.Context, userID string) ([]models.TaskView, error) {
	return r.list(ctx, taskViewSelect+`
		WHERE t.assignee_id = ?
		  AND EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = t.project_id AND m.user_id = t.assignee_id)
		ORDER BY t.created_at DESC`, userID)
}

func (r *TaskRepository) ListVisible(ctx context.Context, userID string, f models.TaskFilter) ([]models.TaskView, error) {
	var sb strings.Builder
	args := []any{userID}

	sb.WriteString(taskViewSelect)
	sb.WriteString(` WHERE t.project_id IN (SELECT m.project_id FROM project_members m WHERE m.user_id = ?)`)

	if f.Status != "" {
		sb.WriteString(` AND t.status = ?`)
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		sb.WriteString(` AND t.priority = ?`)
		args = append(args, f.Priority)
	}
	if f.TaskType != "" {
		sb.WriteString(` AND t.task_type = ?`)
		args = append(args, f.TaskType)
	}
	if f.ProjectID != "" {
		sb.WriteString(` AND t.project_id = ?`)
		args = append(args, f.ProjectID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		sb.WriteString(` AND (LOWER(t.title) LIKE ? OR LOWER(t.description) LIKE ?)`)
		args = append(args, like, like)
	}
	sb.WriteString(` ORDER BY t.created_at DESC`)

	return r.list(ctx, sb.String(), args...)
}

// ListDueBefore returns unfinished, assigned tasks whose due date is at or before the given time.
func (r *TaskRepository) ListDueBefore(ctx context.Context, before time.Time) ([]models.TaskView, error) {
	return r.list(ctx, taskViewSelect+`
		WHERE t.status <> 'done'
		  AND t.assignee_id IS NOT NULL
		  AND t.due_date IS NOT NULL
		  AND t.due_date <= ?
		ORDER BY t.due_date`, before.UTC())
}

func (r *TaskRepository) list(ctx context.Context, q string, args ...any) ([]models.TaskView, error) {
	out := []models.TaskView{}
	if err := r.db.conn.SelectContext(ctx, &out, r.db.conn.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}
