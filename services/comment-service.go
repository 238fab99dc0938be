package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/models"
)

const maxCommentLength = 10000

type CommentService struct {
	comments      CommentStore
	tasks         *TaskService
	projects      ProjectStore
	users         UserStore
	notifications *NotificationService
	activity      *ActivityService
}

func NewCommentService(comments CommentStore, tasks *TaskService, projects ProjectStore, users UserStore, notifications *NotificationService, activity *ActivityService) *CommentService {
	return &CommentService{
		comments:      comments,
		tasks:         tasks,
		projects:      projects,
		users:         users,
		notifications: notifications,
		activity:      activity,
	}
}

// AddComment stores the comment and notifies every distinct member it
// mentions, except the author.
func (s *CommentService) AddComment(ctx context.Context, taskID, authorID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, models.ValidationError("Comment text is required")
	}
	if len(content) > maxCommentLength {
		return models.Comment{}, models.ValidationError("Comment must be at most %d characters", maxCommentLength)
	}

	task, err := s.tasks.GetTask(ctx, taskID, authorID)
	if err != nil {
		return models.Comment{}, err
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("get author: %w", err)
	}
	members, err := s.projects.ListMembers(ctx, task.ProjectID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("list members: %w", err)
	}

	var recipients []string
	for _, m := range ExtractMentions(content, members) {
		if m.ID != authorID {
			recipients = append(recipients, m.ID)
		}
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    authorID,
		UserName:  author.Name,
		Content:   content,
		Mentions:  recipients,
		CreatedAt: nowUTC(),
	}
	if err := s.comments.Create(ctx, &comment); err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if comment.Mentions == nil {
		comment.Mentions = []string{}
	}

	logging.Logger.Infof("Event ID: COMMENT_ADDED, Description: Comment %s on task %s with %d mentions", comment.ID, taskID, len(recipients))
	for _, userID := range recipients {
		s.notifications.notifyMention(ctx, userID, author.Name, task)
	}
	s.activity.Record(ctx, task.ProjectID, authorID, models.ActivityAddComment, &task.ID, task.Title)
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, taskID, userID string) ([]models.Comment, error) {
	if _, err := s.tasks.GetTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.comments.ListByTask(ctx, taskID)
}
