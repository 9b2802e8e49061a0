package entity

import "time"

// BoardShare - публичная ссылка на доску только для чтения.
// Отозванная ссылка остается в списке, но по токену больше не открывается.
type BoardShare struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"board_id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Token       string    `json:"token"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url,omitempty"`
}

type CreateShareInput struct {
	Name string `json:"name" validate:"max=255"`
}

// PublicBoard - то, что видит гость по ссылке: без email участников и истории
type PublicBoard struct {
	ShareName string `json:"share_name"`
	Board     Board  `json:"board"`
	Tasks     []Task `json:"tasks"`
}
