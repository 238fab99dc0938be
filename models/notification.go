package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned     NotificationType = "task_assigned"
	NotificationCommentMention   NotificationType = "comment_mention"
	NotificationDeadlineReminder NotificationType = "deadline_reminder"
	NotificationTaskCompleted    NotificationType = "task_completed"
)

type Notification struct {
	ID               string           `db:"id" json:"id"`
	UserID           string           `db:"user_id" json:"user_id"`
	Type             NotificationType `db:"type" json:"type"`
	Title            string           `db:"title" json:"title"`
	Message          string           `db:"message" json:"message"`
	RelatedTaskID    *string          `db:"related_task_id" json:"related_task_id"`
	RelatedProjectID *string          `db:"related_project_id" json:"related_project_id"`
	IsRead           bool             `db:"is_read" json:"is_read"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// NotificationList is the body of GET /notifications.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}
