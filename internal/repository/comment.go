package repository

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = `id, task_id, author_id, author_name, author_image, content, created_at, updated_at`

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{
		db: db,
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) (*entity.Comment, error) {
	query := `
	INSERT INTO comments (task_id, author_id, author_name, author_image, content)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + commentColumns

	return scanComment(r.db.QueryRow(ctx, query,
		comment.TaskID,
		comment.AuthorID,
		comment.AuthorName,
		comment.AuthorImage,
		comment.Content,
	))
}

func (r *CommentRepository) GetByID(ctx context.Context, taskID, commentID string) (*entity.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1 AND task_id = $2`

	comment, err := scanComment(r.db.QueryRow(ctx, query, commentID, taskID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return comment, nil
}

// Update - меняет текст комментария
func (r *CommentRepository) Update(ctx context.Context, taskID, commentID, content string) (*entity.Comment, error) {
	query := `
	UPDATE comments
	SET content = $1, updated_at = CURRENT_TIMESTAMP
	WHERE id = $2 AND task_id = $3
	RETURNING ` + commentColumns

	comment, err := scanComment(r.db.QueryRow(ctx, query, content, commentID, taskID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, taskID, commentID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND task_id = $2`, commentID, taskID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]entity.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE task_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []entity.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}

	return comments, rows.Err()
}

func scanComment(row rowScanner) (*entity.Comment, error) {
	var c entity.Comment
	err := row.Scan(
		&c.ID,
		&c.TaskID,
		&c.AuthorID,
		&c.AuthorName,
		&c.AuthorImage,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
