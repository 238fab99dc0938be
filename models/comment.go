package models

import "time"

type Comment struct {
	ID        string    `db:"id" json:"id"`
	TaskID    string    `db:"task_id" json:"task_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	Content   string    `db:"content" json:"content"`
	Mentions  []string  `db:"-" json:"mentions"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
