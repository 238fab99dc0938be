package models

import "time"

type ActivityType string

const (
	ActivityCreateTask       ActivityType = "create_task"
	ActivityDeleteTask       ActivityType = "delete_task"
	ActivityChangeTaskStatus ActivityType = "change_task_status"
	ActivityAddMember        ActivityType = "add_member"
	ActivityAddComment       ActivityType = "add_comment"
)

type ProjectActivity struct {
	ID           string       `json:"id" bson:"_id"`
	ProjectID    string       `json:"project_id" bson:"projectId"`
	ActivityType ActivityType `json:"activity_type" bson:"activityType"`
	TaskID       *string      `json:"task_id,omitempty" bson:"taskId,omitempty"`
	ActorID      string       `json:"actor_id" bson:"actorId"`
	Timestamp    time.Time    `json:"timestamp" bson:"timestamp"`
	Details      string       `json:"details" bson:"details"`
}
