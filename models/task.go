package models

import "time"

type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type TaskType string

const (
	TypeTask        TaskType = "task"
	TypeBug         TaskType = "bug"
	TypeImprovement TaskType = "improvement"
	TypeResearch    TaskType = "research"
)

func (t TaskType) Valid() bool {
	switch t {
	case TypeTask, TypeBug, TypeImprovement, TypeResearch:
		return true
	}
	return false
}

type Task struct {
	ID             string     `db:"id" json:"id"`
	ProjectID      string     `db:"project_id" json:"project_id"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	Status         TaskStatus `db:"status" json:"status"`
	Priority       Priority   `db:"priority" json:"priority"`
	TaskType       TaskType   `db:"task_type" json:"task_type"`
	AssigneeID     *string    `db:"assignee_id" json:"assignee_id"`
	CreatedByID    string     `db:"created_by_id" json:"created_by_id"`
	DueDate        *time.Time `db:"due_date" json:"due_date"`
	EstimatedHours *float64   `db:"estimated_hours" json:"estimated_hours"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at"`
	Version        int64      `db:"version" json:"version"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskView is a task joined with the names a listing needs.
type TaskView struct {
	Task
	ProjectName   string  `db:"project_name" json:"project_name"`
	AssigneeName  *string `db:"assignee_name" json:"assignee_name"`
	CreatedByName string  `db:"created_by_name" json:"created_by_name"`
}

// NewTask holds the caller-supplied fields of a task being created.
type NewTask struct {
	ProjectID      string
	Title          string
	Description    string
	Status         TaskStatus
	Priority       Priority
	TaskType       TaskType
	AssigneeID     *string
	DueDate        *time.Time
	EstimatedHours *float64
}

// TaskPatch is a partial update. Unset fields are left alone; a set-but-null
// Nullable clears the column.
type TaskPatch struct {
	Title          *string
	Description    *string
	Priority       *Priority
	TaskType       *TaskType
	AssigneeID     Nullable[string]
	DueDate        Nullable[time.Time]
	EstimatedHours Nullable[float64]
	// Version, when non-zero, must match the stored version.
	Version int64
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.TaskType == nil &&
		!p.AssigneeID.Set && !p.DueDate.Set && !p.EstimatedHours.Set
}

// TaskFilter narrows listVisibleTasks. Zero values mean no filter.
type TaskFilter struct {
	Status    TaskStatus
	Priority  Priority
	TaskType  TaskType
	ProjectID string
	Query     string
}
