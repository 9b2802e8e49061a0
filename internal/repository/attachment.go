package repository

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const attachmentColumns = `id, task_id, COALESCE(comment_id, ''), storage_key, url, file_name, file_size,
	content_type, image_type, uploaded_by, uploaded_at`

type AttachmentRepository struct {
	db *pgxpool.Pool
}

func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{
		db: db,
	}
}

// Create - сохраняет метаданные загруженного файла
func (r *AttachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) (*entity.Attachment, error) {
	query := `
	INSERT INTO attachments (task_id, comment_id, storage_key, url, file_name, file_size,
	                         content_type, image_type, uploaded_by)
	VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
	RETURNING ` + attachmentColumns

	return scanAttachment(r.db.QueryRow(ctx, query,
		attachment.TaskID,
		attachment.CommentID,
		attachment.Key,
		attachment.URL,
		attachment.FileName,
		attachment.FileSize,
		attachment.ContentType,
		attachment.ImageType,
		attachment.UploadedBy,
	))
}

func (r *AttachmentRepository) GetByID(ctx context.Context, taskID, attachmentID string) (*entity.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1 AND task_id = $2`

	attachment, err := scanAttachment(r.db.QueryRow(ctx, query, attachmentID, taskID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return attachment, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, taskID, attachmentID string) error {
	query := `DELETE FROM attachments WHERE id = $1 AND task_id = $2`
	result, err := r.db.Exec(ctx, query, attachmentID, taskID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByTasks - все файлы задач одним запросом, в порядке загрузки
func (r *AttachmentRepository) ListByTasks(ctx context.Context, taskIDs []string) ([]entity.Attachment, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE task_id = ANY($1) ORDER BY uploaded_at, id`
	rows, err := r.db.Query(ctx, query, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []entity.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, *a)
	}
	return attachments, rows.Err()
}

func scanAttachment(row rowScanner) (*entity.Attachment, error) {
	var a entity.Attachment
	err := row.Scan(
		&a.ID,
		&a.TaskID,
		&a.CommentID,
		&a.Key,
		&a.URL,
		&a.FileName,
		&a.FileSize,
		&a.ContentType,
		&a.ImageType,
		&a.UploadedBy,
		&a.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
