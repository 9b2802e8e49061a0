package repository

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memberSelect = `
	SELECT id, workspace_id, name, email, image, created_at
	FROM members
`

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{
		db: db,
	}
}

// GetByIDs - профили по списку id, неизвестные id пропускаются
func (r *MemberRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, memberSelect+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMembers(rows)
}

// ListByWorkspace - состав организации
func (r *MemberRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]entity.Member, error) {
	rows, err := r.db.Query(ctx, memberSelect+` WHERE workspace_id = $1 ORDER BY name`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMembers(rows)
}

// IsMember - состоит ли участник в организации
func (r *MemberRepository) IsMember(ctx context.Context, workspaceID, memberID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM members WHERE id = $1 AND workspace_id = $2)`,
		memberID, workspaceID,
	).Scan(&ok)
	return ok, err
}

func scanMembers(rows pgx.Rows) ([]entity.Member, error) {
	var members []entity.Member
	for rows.Next() {
		var m entity.Member
		err := rows.Scan(
			&m.ID,
			&m.WorkspaceID,
			&m.Name,
			&m.Email,
			&m.Image,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}
