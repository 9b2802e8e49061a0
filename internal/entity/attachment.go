package entity

import "time"

type Attachment struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	CommentID   string    `json:"comment_id,omitempty"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
	ImageType   string    `json:"image_type,omitempty"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// UploadResult - ответ коллаборатора на загрузку одного файла
type UploadResult struct {
	Success    bool        `json:"success"`
	Attachment *Attachment `json:"image,omitempty"`
	Message    string      `json:"message"`
}
