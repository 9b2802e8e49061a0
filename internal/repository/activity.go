package repository

import (
	"context"
	"encoding/json"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{
		db: db,
	}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	query := `
	INSERT INTO task_activity (task_id, type, field, old_value, new_value, author_id, author_name,
	                           author_image, description, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::timestamptz, CURRENT_TIMESTAMP))
	RETURNING id, created_at
	`

	var createdAt any
	if !activity.CreatedAt.IsZero() {
		createdAt = activity.CreatedAt
	}

	oldValue, err := jsonValue(activity.OldValue)
	if err != nil {
		return err
	}
	newValue, err := jsonValue(activity.NewValue)
	if err != nil {
		return err
	}

	return r.db.QueryRow(
		ctx,
		query,
		activity.TaskID,
		string(activity.Type),
		activity.Field,
		oldValue,
		newValue,
		activity.AuthorID,
		activity.AuthorName,
		activity.AuthorImage,
		activity.Description,
		createdAt,
	).Scan(&activity.ID, &activity.CreatedAt)
}

// ListByTask - события задачи в порядке возникновения
func (r *ActivityRepository) ListByTask(ctx context.Context, taskID string) ([]entity.Activity, error) {
	query := `
	SELECT id, task_id, type, field, old_value, new_value, author_id, author_name, author_image,
	       description, created_at
	FROM task_activity
	WHERE task_id = $1
	ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []entity.Activity
	for rows.Next() {
		var a entity.Activity
		var activityType string
		err := rows.Scan(
			&a.ID,
			&a.TaskID,
			&activityType,
			&a.Field,
			&a.OldValue,
			&a.NewValue,
			&a.AuthorID,
			&a.AuthorName,
			&a.AuthorImage,
			&a.Description,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		a.Type = entity.ActivityType(activityType)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// jsonValue кодирует значение для jsonb колонки; nil остается NULL.
// Строку pgx передал бы как готовый JSON, поэтому кодируем сами.
func jsonValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
