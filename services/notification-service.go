package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/models"
)

type NotificationService struct {
	store NotificationStore
	tasks TaskStore
}

func NewNotificationService(store NotificationStore, tasks TaskStore) *NotificationService {
	return &NotificationService{store: store, tasks: tasks}
}

// Notify stores a notification. The action that triggered it has already
// been committed, so a failure is logged rather than returned.
func (s *NotificationService) Notify(ctx context.Context, n models.Notification) {
	n.IsRead = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = nowUTC()
	}
	if err := s.store.Create(ctx, &n); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_CREATE_FAILED, Description: Could not notify user %s (%s): %v", n.UserID, n.Type, err)
		return
	}
	logging.Logger.Debugf("Event ID: NOTIFICATION_CREATED, Description: %s notification %s for user %s", n.Type, n.ID, n.UserID)
}

func (s *NotificationService) notifyTaskAssigned(ctx context.Context, task models.TaskView) {
	if task.AssigneeID == nil {
		return
	}
	s.Notify(ctx, models.Notification{
		UserID:           *task.AssigneeID,
		Type:             models.NotificationTaskAssigned,
		Title:            "New task assigned",
		Message:          fmt.Sprintf("You have been assigned to \"%s\" in %s", task.Title, task.ProjectName),
		RelatedTaskID:    &task.ID,
		RelatedProjectID: &task.ProjectID,
	})
}

func (s *NotificationService) notifyTaskCompleted(ctx context.Context, task models.TaskView, actorID string) {
	if task.CreatedByID == actorID {
		return
	}
	s.Notify(ctx, models.Notification{
		UserID:           task.CreatedByID,
		Type:             models.NotificationTaskCompleted,
		Title:            "Task completed",
		Message:          fmt.Sprintf("\"%s\" in %s was marked as done", task.Title, task.ProjectName),
		RelatedTaskID:    &task.ID,
		RelatedProjectID: &task.ProjectID,
	})
}

func (s *NotificationService) notifyMention(ctx context.Context, recipientID, authorName string, task models.TaskView) {
	s.Notify(ctx, models.Notification{
		UserID:           recipientID,
		Type:             models.NotificationCommentMention,
		Title:            "You were mentioned",
		Message:          fmt.Sprintf("%s mentioned you on \"%s\"", authorName, task.Title),
		RelatedTaskID:    &task.ID,
		RelatedProjectID: &task.ProjectID,
	})
}

func (s *NotificationService) List(ctx context.Context, userID string) (models.NotificationList, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return models.NotificationList{}, err
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return models.NotificationList{}, err
	}
	return models.NotificationList{Notifications: list, Unread: unread}, nil
}

// owned loads a notification and checks it belongs to userID.
func (s *NotificationService) owned(ctx context.Context, id, userID string) (models.Notification, error) {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Notification{}, models.NotFoundError("Notification not found")
		}
		return models.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	if n.UserID != userID {
		return models.Notification{}, models.ForbiddenError("You cannot access this notification")
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (models.Notification, error) {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return models.Notification{}, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.store.MarkRead(ctx, n); err != nil {
		return models.Notification{}, fmt.Errorf("mark read: %w", err)
	}
	n.IsRead = true
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, n); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NotFoundError("Notification not found")
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// SendDeadlineReminders notifies assignees of unfinished tasks due within the
// window. Each task and assignee pair is reminded at most once.
func (s *NotificationService) SendDeadlineReminders(ctx context.Context, within time.Duration) (int, error) {
	if within <= 0 {
		return 0, models.ValidationError("Reminder window must be positive")
	}

	tasks, err := s.tasks.ListDueBefore(ctx, nowUTC().Add(within))
	if err != nil {
		return 0, fmt.Errorf("list due tasks: %w", err)
	}

	sent := 0
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		assignee := *task.AssigneeID
		exists, err := s.store.ExistsForTask(ctx, assignee, task.ID, models.NotificationDeadlineReminder)
		if err != nil {
			return sent, fmt.Errorf("check reminder: %w", err)
		}
		if exists {
			continue
		}

		s.Notify(ctx, models.Notification{
			UserID:           assignee,
			Type:             models.NotificationDeadlineReminder,
			Title:            "Deadline approaching",
			Message:          fmt.Sprintf("\"%s\" in %s is due %s", task.Title, task.ProjectName, task.DueDate.UTC().Format(time.RFC1123)),
			RelatedTaskID:    &task.ID,
			RelatedProjectID: &task.ProjectID,
		})
		sent++
	}

	logging.Logger.Infof("Event ID: DEADLINE_REMINDERS_SENT, Description: Sent %d deadline reminders", sent)
	return sent, nil
}
