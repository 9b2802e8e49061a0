package entity

import "time"

// Member - участник организации, как его отдает каталог
type Member struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionUser - текущий пользователь сессии (из токена провайдера авторизации)
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

// DisplayName - имя для отображения, email если имени нет
func (u SessionUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// JWT Claims
type SessionClaims struct {
	UserID      string `json:"sub"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Picture     string `json:"picture"`
	WorkspaceID string `json:"workspace_id"`
}
