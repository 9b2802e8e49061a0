package entity

import "time"

type Comment struct {
	ID          string       `json:"id"`
	TaskID      string       `json:"task_id"`
	AuthorID    string       `json:"user_id"`
	AuthorName  string       `json:"user_name"`
	AuthorImage string       `json:"user_image,omitempty"`
	Content     string       `json:"content"`
	Images      []Attachment `json:"images"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
