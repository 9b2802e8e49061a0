package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BoardRepository struct {
	db *pgxpool.Pool
}

func NewBoardRepository(db *pgxpool.Pool) *BoardRepository {
	return &BoardRepository{
		db: db,
	}
}

// GetByID - доска с колонками и участниками workspace
func (r *BoardRepository) GetByID(ctx context.Context, workspaceID, boardID string) (*entity.Board, error) {
	query := `
	SELECT id, workspace_id, title, description, created_at, updated_at
	FROM boards
	WHERE id = $1 AND workspace_id = $2
	`

	var board entity.Board
	err := r.db.QueryRow(ctx, query, boardID, workspaceID).Scan(
		&board.ID,
		&board.WorkspaceID,
		&board.Title,
		&board.Description,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	columns, err := r.listColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}
	board.Columns = columns

	members, err := r.listMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	board.Members = members

	return &board, nil
}

// List - доски организации без колонок и участников
func (r *BoardRepository) List(ctx context.Context, workspaceID string) ([]entity.Board, error) {
	query := `
	SELECT id, workspace_id, title, description, created_at, updated_at
	FROM boards
	WHERE workspace_id = $1
	ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []entity.Board
	for rows.Next() {
		var b entity.Board
		if err := rows.Scan(&b.ID, &b.WorkspaceID, &b.Title, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}

	return boards, rows.Err()
}

// Create создает доску вместе с начальными колонками в одной транзакции
func (r *BoardRepository) Create(ctx context.Context, workspaceID string, input *entity.CreateBoardInput, columns []entity.ColumnInput) (*entity.Board, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx,
		`INSERT INTO boards (workspace_id, title, description) VALUES ($1, $2, $3) RETURNING id`,
		workspaceID, input.Title, input.Description,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	for i, c := range columns {
		_, err := tx.Exec(ctx,
			`INSERT INTO board_columns (board_id, title, color, position) VALUES ($1, $2, $3, $4)`,
			id, c.Title, c.Color, i,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, workspaceID, id)
}

// Update - частичное обновление названия и описания
func (r *BoardRepository) Update(ctx context.Context, workspaceID, boardID string, input *entity.UpdateBoardInput) (*entity.Board, error) {
	updates := make(map[string]any)
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	setClause, args := buildSet(updates)
	setClause = append(setClause, "updated_at = CURRENT_TIMESTAMP")
	argIndex := len(args) + 1
	query := `
	UPDATE boards
	SET ` + strings.Join(setClause, ", ") + `
	WHERE id = $` + strconv.Itoa(argIndex) + ` AND workspace_id = $` + strconv.Itoa(argIndex+1) + `
	RETURNING id
	`
	args = append(args, boardID, workspaceID)

	var id string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return r.GetByID(ctx, workspaceID, id)
}

// Delete - доска уходит вместе с колонками и задачами (ON DELETE CASCADE)
func (r *BoardRepository) Delete(ctx context.Context, workspaceID, boardID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM boards WHERE id = $1 AND workspace_id = $2`, boardID, workspaceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateColumn добавляет колонку в конец доски
func (r *BoardRepository) CreateColumn(ctx context.Context, boardID string, input *entity.ColumnInput) (*entity.Column, error) {
	query := `
	INSERT INTO board_columns (board_id, title, color, position)
	VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position) + 1, 0) FROM board_columns WHERE board_id = $1))
	RETURNING id, board_id, title, color, position
	`

	var c entity.Column
	err := r.db.QueryRow(ctx, query, boardID, input.Title, input.Color).Scan(
		&c.ID, &c.BoardID, &c.Title, &c.Color, &c.Position,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BoardRepository) UpdateColumn(ctx context.Context, boardID, columnID string, input *entity.UpdateColumnInput) (*entity.Column, error) {
	updates := make(map[string]any)
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	setClause, args := buildSet(updates)
	argIndex := len(args) + 1
	query := `
	UPDATE board_columns
	SET ` + strings.Join(setClause, ", ") + `
	WHERE id = $` + strconv.Itoa(argIndex) + ` AND board_id = $` + strconv.Itoa(argIndex+1) + `
	RETURNING id, board_id, title, color, position
	`
	args = append(args, columnID, boardID)

	var c entity.Column
	err := r.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.BoardID, &c.Title, &c.Color, &c.Position)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// DeleteColumn удаляет колонку. Если moveTo не пустой, задачи колонки сначала
// переезжают в конец moveTo, все в одной транзакции.
func (r *BoardRepository) DeleteColumn(ctx context.Context, boardID, columnID, moveTo string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if moveTo != "" {
		relocate := `
		UPDATE tasks
		SET column_id = $1,
		    position = position + (SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE column_id = $1),
		    updated_at = CURRENT_TIMESTAMP
		WHERE column_id = $2 AND board_id = $3
		`
		if _, err := tx.Exec(ctx, relocate, moveTo, columnID, boardID); err != nil {
			return err
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM board_columns WHERE id = $1 AND board_id = $2`, columnID, boardID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// ReorderColumns выставляет позиции по порядку id в order
func (r *BoardRepository) ReorderColumns(ctx context.Context, boardID string, order []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, id := range order {
		if _, err := tx.Exec(ctx, `UPDATE board_columns SET position = $1 WHERE id = $2 AND board_id = $3`, i, id, boardID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// buildSet - SET часть запроса в стабильном порядке полей
func buildSet(updates map[string]any) ([]string, []any) {
	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	setClause := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for i, field := range fields {
		setClause = append(setClause, field+" = $"+strconv.Itoa(i+1))
		args = append(args, updates[field])
	}
	return setClause, args
}

func (r *BoardRepository) listColumns(ctx context.Context, boardID string) ([]entity.Column, error) {
	query := `
	SELECT id, board_id, title, color, position
	FROM board_columns
	WHERE board_id = $1
	ORDER BY position, id
	`

	rows, err := r.db.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []entity.Column
	for rows.Next() {
		var c entity.Column
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Title, &c.Color, &c.Position); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}

	return columns, rows.Err()
}

func (r *BoardRepository) listMembers(ctx context.Context, workspaceID string) ([]entity.Member, error) {
	rows, err := r.db.Query(ctx, memberSelect+` WHERE workspace_id = $1 ORDER BY name`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMembers(rows)
}
