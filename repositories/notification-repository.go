package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/models"
)

// NotificationRepository is the relational notification store, the default backend.
type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, related_task_id, related_project_id, is_read, created_at`

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	q := r.db.conn.Rebind(`INSERT INTO notifications (` + notificationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.conn.ExecContext(ctx, q,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedTaskID, n.RelatedProjectID, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (models.Notification, error) {
	var n models.Notification
	q := r.db.conn.Rebind(`SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`)
	if err := r.db.conn.GetContext(ctx, &n, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, models.ErrNotFound
		}
		return models.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	q := r.db.conn.Rebind(`SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`)
	out := []models.Notification{}
	if err := r.db.conn.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	q := r.db.conn.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`)
	if err := r.db.conn.GetContext(ctx, &n, q, userID, false); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, n models.Notification) error {
	res, err := r.db.conn.ExecContext(ctx, r.db.conn.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ?`), true, n.ID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if affected(res) == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	q := r.db.conn.Rebind(`UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`)
	res, err := r.db.conn.ExecContext(ctx, q, true, userID, false)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return affected(res), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, n models.Notification) error {
	res, err := r.db.conn.ExecContext(ctx, r.db.conn.Rebind(`DELETE FROM notifications WHERE id = ?`), n.ID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if affected(res) == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ExistsForTask reports whether the user already has a notification of this type about the task.
func (r *NotificationRepository) ExistsForTask(ctx context.Context, userID, taskID string, typ models.NotificationType) (bool, error) {
	var n int
	q := r.db.conn.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND related_task_id = ? AND type = ?`)
	if err := r.db.conn.GetContext(ctx, &n, q, userID, taskID, typ); err != nil {
		return false, fmt.Errorf("check notification: %w", err)
	}
	return n > 0, nil
}
