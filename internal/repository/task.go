package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// колонки задачи вместе с таймером (LEFT JOIN task_timers tt)
const taskColumns = `
	t.id, t.workspace_id, t.board_id, t.column_id, t.title, t.description, t.priority, t.position,
	t.start_date, t.due_date, t.assigned_members, t.tags, t.checklist, t.created_by, t.created_at, t.updated_at,
	tt.total_seconds, tt.is_running, tt.current_start_time, tt.hourly_rate, tt.rounding_option,
	tt.started_by_id, tt.started_by_name, tt.started_by_image
`

// поля, которые можно менять через Update
var updatableTaskFields = map[string]bool{
	"title":            true,
	"description":      true,
	"priority":         true,
	"start_date":       true,
	"due_date":         true,
	"assigned_members": true,
	"tags":             true,
	"checklist":        true,
}

type rowScanner interface {
	Scan(dest ...any) error
}

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, workspaceID string, task *entity.CreateTaskInput, createdBy string) (*entity.Task, error) {
	query := `
	INSERT INTO tasks (workspace_id, board_id, column_id, title, description, priority, position,
	                   start_date, due_date, assigned_members, tags, checklist, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING id
	`

	members := task.AssignedMembers
	if members == nil {
		members = []string{}
	}
	tags := task.Tags
	if tags == nil {
		tags = []entity.Tag{}
	}
	checklist := task.Checklist
	if checklist == nil {
		checklist = []entity.ChecklistItem{}
	}

	var id string
	err := r.db.QueryRow(ctx, query,
		workspaceID,
		task.BoardID,
		task.ColumnID,
		task.Title,
		task.Description,
		string(task.Priority),
		task.Position,
		task.StartDate,
		task.DueDate,
		members,
		tags,
		checklist,
		createdBy,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, workspaceID, id)
}

func (r *TaskRepository) GetByID(ctx context.Context, workspaceID, taskID string) (*entity.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks t
	LEFT JOIN task_timers tt ON tt.task_id = t.id
	WHERE t.id = $1 AND t.workspace_id = $2
	`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskID, workspaceID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return task, nil
}

// ListByBoard - задачи доски в порядке колонок, внутри колонки по позиции
func (r *TaskRepository) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]entity.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks t
	JOIN board_columns c ON c.id = t.column_id
	LEFT JOIN task_timers tt ON tt.task_id = t.id
	WHERE t.workspace_id = $1 AND t.board_id = $2
	ORDER BY c.position, t.position, t.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, workspaceID, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []entity.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// Update - частичное обновление задачи
func (r *TaskRepository) Update(ctx context.Context, workspaceID, taskID string, updates map[string]any) (*entity.Task, error) {
	fields := make([]string, 0, len(updates))
	for field := range updates {
		if !updatableTaskFields[field] {
			return nil, fmt.Errorf("field %q cannot be updated", field)
		}
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}
	sort.Strings(fields)

	// Динамически строим SET часть запроса
	setClause := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for i, field := range fields {
		setClause = append(setClause, field+" = $"+strconv.Itoa(i+1))
		args = append(args, updates[field])
	}
	setClause = append(setClause, "updated_at = CURRENT_TIMESTAMP")

	argIndex := len(fields) + 1
	query := `
	UPDATE tasks
	SET ` + strings.Join(setClause, ", ") + `
	WHERE id = $` + strconv.Itoa(argIndex) + ` AND workspace_id = $` + strconv.Itoa(argIndex+1) + `
	RETURNING id
	`
	args = append(args, taskID, workspaceID)

	var id string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return r.GetByID(ctx, workspaceID, id)
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, workspaceID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.Exec(ctx, query, taskID, workspaceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Move переносит задачу в колонку на позицию position, сдвигая остальные задачи колонки
func (r *TaskRepository) Move(ctx context.Context, workspaceID, taskID, columnID string, position int) (*entity.Task, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	shift := `
	UPDATE tasks
	SET position = position + 1
	WHERE column_id = $1 AND workspace_id = $2 AND position >= $3 AND id <> $4
	`
	if _, err := tx.Exec(ctx, shift, columnID, workspaceID, position, taskID); err != nil {
		return nil, err
	}

	move := `
	UPDATE tasks
	SET column_id = $1, position = $2, updated_at = CURRENT_TIMESTAMP
	WHERE id = $3 AND workspace_id = $4
	`
	result, err := tx.Exec(ctx, move, columnID, position, taskID, workspaceID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, workspaceID, taskID)
}

func scanTask(row rowScanner) (*entity.Task, error) {
	var (
		task        entity.Task
		priority    string
		total       *int64
		running     *bool
		rounding    *string
		startedByID *string
		startedName *string
		startedImg  *string
	)

	err := row.Scan(
		&task.ID,
		&task.WorkspaceID,
		&task.BoardID,
		&task.ColumnID,
		&task.Title,
		&task.Description,
		&priority,
		&task.Position,
		&task.StartDate,
		&task.DueDate,
		&task.AssignedMembers,
		&task.Tags,
		&task.Checklist,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
		&total,
		&running,
		&task.TimeTracking.CurrentStartTime,
		&task.TimeTracking.HourlyRate,
		&rounding,
		&startedByID,
		&startedName,
		&startedImg,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = entity.Priority(priority)
	fillTimeTracking(&task.TimeTracking, total, running, rounding, startedByID, startedName, startedImg)

	return &task, nil
}

// fillTimeTracking собирает таймер из nullable колонок; задача без записи таймера - остановленный ноль
func fillTimeTracking(tt *entity.TimeTracking, total *int64, running *bool, rounding, startedByID, startedName, startedImg *string) {
	if total != nil {
		tt.TotalSeconds = *total
	}
	if running != nil {
		tt.IsRunning = *running
	}
	tt.Rounding = entity.RoundingNone
	if rounding != nil && *rounding != "" {
		tt.Rounding = entity.RoundingPolicy(*rounding)
	}
	if startedByID != nil && *startedByID != "" {
		tt.StartedBy = &entity.Member{ID: *startedByID}
		if startedName != nil {
			tt.StartedBy.Name = *startedName
		}
		if startedImg != nil {
			tt.StartedBy.Image = *startedImg
		}
	}
}
