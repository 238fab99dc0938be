package services

import (
	"context"
	"errors"
	"time"

	"github.com/LepeyevaEmiliya/projects/models"
)

// Store interfaces are satisfied by the repositories package. Repositories
// report missing rows as models.ErrNotFound and unique violations as
// models.ErrConflict; services turn those into client-facing errors.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateProfile(ctx context.Context, id, name, email string) error
	SetActive(ctx context.Context, email string, active bool) error
}

type ProjectStore interface {
	CreateWithOwner(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error)
	ListForUser(ctx context.Context, userID string) ([]models.ProjectSummary, error)
	GetMembership(ctx context.Context, projectID, userID string) (models.Membership, error)
	AddMember(ctx context.Context, m models.Membership) error
	AcceptInvitation(ctx context.Context, projectID, userID string) (models.Membership, error)
	ListMembers(ctx context.Context, projectID string) ([]models.Member, error)
}

type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id string) (models.Task, error)
	GetView(ctx context.Context, id string) (models.TaskView, error)
	Update(ctx context.Context, t models.Task, expectedVersion int64) (models.Task, error)
	Delete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]models.TaskView, error)
	ListAssigned(ctx context.Context, userID string) ([]models.TaskView, error)
	ListVisible(ctx context.Context, userID string, f models.TaskFilter) ([]models.TaskView, error)
	ListDueBefore(ctx context.Context, before time.Time) ([]models.TaskView, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	ListByTask(ctx context.Context, taskID string) ([]models.Comment, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, n models.Notification) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, n models.Notification) error
	ExistsForTask(ctx context.Context, userID, taskID string, typ models.NotificationType) (bool, error)
}

type ActivityStore interface {
	Record(ctx context.Context, a models.ProjectActivity) error
	ListByProject(ctx context.Context, projectID string, limit int) ([]models.ProjectActivity, error)
}

// requireMember resolves the caller's membership, distinguishing a missing
// project (not found) from a project the caller does not belong to (forbidden).
func requireMember(ctx context.Context, projects ProjectStore, projectID, userID string) (models.Membership, error) {
	if _, err := projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Membership{}, models.NotFoundError("Project not found")
		}
		return models.Membership{}, err
	}

	m, err := projects.GetMembership(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Membership{}, models.ForbiddenError("You are not a member of this project")
		}
		return models.Membership{}, err
	}
	return m, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
