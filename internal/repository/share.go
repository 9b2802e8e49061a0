package repository

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shareSelect = `
	SELECT id, board_id, workspace_id, name, token, is_active, created_by, created_at
	FROM board_shares
`

type ShareRepository struct {
	db *pgxpool.Pool
}

func NewShareRepository(db *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{
		db: db,
	}
}

func (r *ShareRepository) Create(ctx context.Context, share *entity.BoardShare) (*entity.BoardShare, error) {
	query := `
	INSERT INTO board_shares (board_id, workspace_id, name, token, is_active, created_by)
	VALUES ($1, $2, $3, $4, TRUE, $5)
	RETURNING id, board_id, workspace_id, name, token, is_active, created_by, created_at
	`

	row := r.db.QueryRow(ctx, query, share.BoardID, share.WorkspaceID, share.Name, share.Token, share.CreatedBy)
	return scanShare(row)
}

// ListByBoard - все ссылки доски, отозванные тоже
func (r *ShareRepository) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]entity.BoardShare, error) {
	rows, err := r.db.Query(ctx, shareSelect+` WHERE workspace_id = $1 AND board_id = $2 ORDER BY created_at DESC`, workspaceID, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []entity.BoardShare
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, *share)
	}

	return shares, rows.Err()
}

func (r *ShareRepository) GetByID(ctx context.Context, workspaceID, shareID string) (*entity.BoardShare, error) {
	share, err := scanShare(r.db.QueryRow(ctx, shareSelect+` WHERE id = $1 AND workspace_id = $2`, shareID, workspaceID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return share, err
}

// GetByToken - поиск без организации, по токену из публичной ссылки
func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*entity.BoardShare, error) {
	share, err := scanShare(r.db.QueryRow(ctx, shareSelect+` WHERE token = $1`, token))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return share, err
}

func (r *ShareRepository) SetActive(ctx context.Context, workspaceID, shareID string, active bool) (*entity.BoardShare, error) {
	query := `
	UPDATE board_shares SET is_active = $1
	WHERE id = $2 AND workspace_id = $3
	RETURNING id, board_id, workspace_id, name, token, is_active, created_by, created_at
	`
	share, err := scanShare(r.db.QueryRow(ctx, query, active, shareID, workspaceID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return share, err
}

func (r *ShareRepository) Delete(ctx context.Context, workspaceID, shareID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM board_shares WHERE id = $1 AND workspace_id = $2`, shareID, workspaceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanShare(row rowScanner) (*entity.BoardShare, error) {
	var s entity.BoardShare
	err := row.Scan(
		&s.ID,
		&s.BoardID,
		&s.WorkspaceID,
		&s.Name,
		&s.Token,
		&s.IsActive,
		&s.CreatedBy,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
