package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/LepeyevaEmiliya/projects/models"
)

type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create stores the comment and its resolved mentions in one transaction.
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	return r.db.withTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO comments (id, task_id, user_id, content, created_at) VALUES (?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q, c.ID, c.TaskID, c.UserID, c.Content, c.CreatedAt); err != nil {
			if isForeignKeyViolation(err) {
				return models.ErrNotFound
			}
			return fmt.Errorf("insert comment: %w", err)
		}

		mq := tx.Rebind(`INSERT INTO comment_mentions (comment_id, user_id) VALUES (?, ?)`)
		for _, userID := range c.Mentions {
			if _, err := tx.ExecContext(ctx, mq, c.ID, userID); err != nil {
				return fmt.Errorf("insert mention: %w", err)
			}
		}
		return nil
	})
}

// ListByTask returns the task's comments oldest first, each with its mentions.
func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]models.Comment, error) {
	q := r.db.conn.Rebind(`
		SELECT c.id, c.task_id, c.user_id, u.name AS user_name, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.task_id = ?
		ORDER BY c.created_at, c.id`)

	out := []models.Comment{}
	if err := r.db.conn.SelectContext(ctx, &out, q, taskID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	var mentions []struct {
		CommentID string `db:"comment_id"`
		UserID    string `db:"user_id"`
	}
	mq := r.db.conn.Rebind(`
		SELECT cm.comment_id, cm.user_id
		FROM comment_mentions cm
		JOIN comments c ON c.id = cm.comment_id
		WHERE c.task_id = ?`)
	if err := r.db.conn.SelectContext(ctx, &mentions, mq, taskID); err != nil {
		return nil, fmt.Errorf("list mentions: %w", err)
	}

	byComment := make(map[string][]string, len(out))
	for _, m := range mentions {
		byComment[m.CommentID] = append(byComment[m.CommentID], m.UserID)
	}
	for i := range out {
		out[i].Mentions = byComment[out[i].ID]
		if out[i].Mentions == nil {
			out[i].Mentions = []string{}
		}
	}
	return out, nil
}
